// Package unsplash is a search tier provider backed by the Unsplash photo search API.
package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/davidbz/imgresolve/internal/domain"
)

const (
	providerName   = "unsplash"
	megapixel      = 1e6
	likesPerPoint  = 1000.0
	defaultPerPage = 5
	errBodyLimit   = 512
)

// Provider implements domain.ImageProvider for Unsplash.
type Provider struct {
	cfg        Config
	httpClient *http.Client
}

// NewProvider creates an Unsplash provider. A missing access key is allowed;
// the provider then reports itself as unconfigured and is never queried.
func NewProvider(cfg Config) *Provider {
	if cfg.PerPage <= 0 {
		cfg.PerPage = defaultPerPage
	}
	return &Provider{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

func (p *Provider) Name() string      { return providerName }
func (p *Provider) Tier() domain.Tier { return domain.TierSearch }
func (p *Provider) Configured() bool  { return p.cfg.AccessKey != "" }

// Accepts requires a free-text query.
func (p *Provider) Accepts(ref domain.ImageReference) bool {
	return ref.Query() != ""
}

type searchResponse struct {
	Total   int `json:"total"`
	Results []struct {
		ID          string `json:"id"`
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		Likes       int    `json:"likes"`
		Description string `json:"description"`
		URLs        struct {
			Raw     string `json:"raw"`
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// Find runs one search and returns hits ranked by resolution in megapixels
// plus likes per thousand. Ties keep the API's relevance order.
func (p *Provider) Find(ctx context.Context, ref domain.ImageReference) ([]domain.Candidate, error) {
	q := url.Values{}
	q.Set("query", ref.Query())
	q.Set("per_page", strconv.Itoa(p.cfg.PerPage))
	q.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/search/photos?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+p.cfg.AccessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unsplash request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return nil, fmt.Errorf("unsplash returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode unsplash response: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.URLs.Regular == "" {
			continue
		}
		candidates = append(candidates, domain.Candidate{
			Source: providerName,
			URL:    r.URLs.Regular,
			Tier:   domain.TierSearch,
			Score:  float64(r.Width*r.Height)/megapixel + float64(r.Likes)/likesPerPoint,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates, nil
}
