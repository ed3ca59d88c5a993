// Package pexels is an alternate tier provider backed by the Pexels search API.
package pexels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/davidbz/imgresolve/internal/domain"
)

const (
	providerName   = "pexels"
	defaultPerPage = 5
	errBodyLimit   = 512
)

// Provider implements domain.ImageProvider for Pexels.
type Provider struct {
	cfg        Config
	httpClient *http.Client
}

// NewProvider creates a Pexels provider.
func NewProvider(cfg Config) *Provider {
	if cfg.PerPage <= 0 {
		cfg.PerPage = defaultPerPage
	}
	return &Provider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
	}
}

func (p *Provider) Name() string      { return providerName }
func (p *Provider) Tier() domain.Tier { return domain.TierAlternate }
func (p *Provider) Configured() bool  { return p.cfg.APIKey != "" }

func (p *Provider) Accepts(ref domain.ImageReference) bool {
	return searchText(ref) != ""
}

// searchText is the query, or the reference name split into words.
func searchText(ref domain.ImageReference) string {
	if q := ref.Query(); q != "" {
		return q
	}
	name := ref.Name()
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	}), " ")
}

type searchResponse struct {
	TotalResults int `json:"total_results"`
	Photos       []struct {
		ID           int    `json:"id"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		Photographer string `json:"photographer"`
		Src          struct {
			Original string `json:"original"`
			Large    string `json:"large"`
		} `json:"src"`
	} `json:"photos"`
}

// Find runs one search. The large rendition is used; the original is only a
// fallback when Pexels omits it.
func (p *Provider) Find(ctx context.Context, ref domain.ImageReference) ([]domain.Candidate, error) {
	q := url.Values{}
	q.Set("query", searchText(ref))
	q.Set("per_page", strconv.Itoa(p.cfg.PerPage))
	q.Set("orientation", "landscape")
	q.Set("size", "large")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", p.cfg.APIKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return nil, fmt.Errorf("pexels returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode pexels response: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(parsed.Photos))
	for i, photo := range parsed.Photos {
		u := photo.Src.Large
		if u == "" {
			u = photo.Src.Original
		}
		if u == "" {
			continue
		}
		candidates = append(candidates, domain.Candidate{
			Source: providerName,
			URL:    u,
			Tier:   domain.TierAlternate,
			Score:  1 / float64(i+1),
		})
	}
	return candidates, nil
}
