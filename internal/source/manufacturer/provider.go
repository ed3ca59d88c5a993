// Package manufacturer provides an offline alternate tier provider that maps
// product references onto manufacturer press-kit images. No remote API is
// called while finding candidates; the URLs are probed by the resolver like
// any other candidate.
package manufacturer

import (
	"context"
	"strings"

	"github.com/davidbz/imgresolve/internal/catalog"
	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/observability"
)

const providerName = "manufacturer"

// Provider implements domain.ImageProvider from the catalog's press-kit tables.
type Provider struct {
	manufacturers []catalog.Manufacturer
}

// NewProvider creates a new manufacturer provider.
func NewProvider(cat *catalog.Catalog) *Provider {
	return &Provider{manufacturers: cat.Manufacturers()}
}

func (p *Provider) Name() string      { return providerName }
func (p *Provider) Tier() domain.Tier { return domain.TierAlternate }

// Configured is true whenever at least one press kit is known.
func (p *Provider) Configured() bool { return len(p.manufacturers) > 0 }

// Accepts reports whether any manufacturer keyword occurs in the reference.
func (p *Provider) Accepts(ref domain.ImageReference) bool {
	text := referenceText(ref)
	for _, m := range p.manufacturers {
		if matchesAny(text, m.Keywords) {
			return true
		}
	}
	return false
}

// Find returns press images whose match token occurs in the reference, in
// table order.
func (p *Provider) Find(ctx context.Context, ref domain.ImageReference) ([]domain.Candidate, error) {
	text := referenceText(ref)

	var out []domain.Candidate
	for _, m := range p.manufacturers {
		if !matchesAny(text, m.Keywords) {
			continue
		}
		for _, asset := range m.Assets {
			if asset.Match == "" || !strings.Contains(text, strings.ToLower(asset.Match)) {
				continue
			}
			out = append(out, domain.Candidate{
				Source: providerName,
				URL:    joinURL(m.PressKit, asset.Path),
				Tier:   domain.TierAlternate,
			})
		}
	}

	observability.FromContext(ctx).Debug("press kit lookup",
		observability.Int("matches", len(out)))

	return out, nil
}

// referenceText folds name and query into one lowercase, hyphenated string so
// "iPhone 16 Pro" and "iphone-16-pro" match the same asset.
func referenceText(ref domain.ImageReference) string {
	text := strings.ToLower(ref.Name() + " " + ref.Query())
	return strings.Join(strings.Fields(strings.ReplaceAll(text, "_", " ")), "-")
}

func matchesAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(text, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func joinURL(base, p string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p, "/")
}
