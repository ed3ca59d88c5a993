// Package source turns an image reference into ordered, validated candidates:
// the reference URL itself, the curated table, search providers, alternate
// providers and finally a deterministic per-category fallback.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/davidbz/imgresolve/internal/catalog"
	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/observability"
)

const (
	directSource   = "direct"
	curatedSource  = "curated"
	fallbackSource = "fallback"
)

var errStopWalk = errors.New("walk stopped")

// Resolver implements domain.SourceResolver.
type Resolver struct {
	catalog  *catalog.Catalog
	registry domain.ProviderRegistry
	limiter  domain.RateLimiter
	prober   domain.Prober
}

// NewResolver creates a resolver (DI constructor).
func NewResolver(
	cat *catalog.Catalog,
	registry domain.ProviderRegistry,
	limiter domain.RateLimiter,
	prober domain.Prober,
) *Resolver {
	return &Resolver{
		catalog:  cat,
		registry: registry,
		limiter:  limiter,
		prober:   prober,
	}
}

// walkState carries one Walk call.
type walkState struct {
	ref      domain.ImageReference
	visit    func(domain.Candidate) bool
	priority int
	rejected map[string]bool
}

// ResolveCandidates lists the plan without touching the network. Remote tiers
// appear as deferred candidates named after their provider.
func (r *Resolver) ResolveCandidates(ctx context.Context, ref domain.ImageReference) ([]domain.Candidate, error) {
	var plan []domain.Candidate
	add := func(c domain.Candidate) {
		c.Priority = len(plan)
		plan = append(plan, c)
	}

	if ref.Kind() == domain.KindURL {
		add(domain.Candidate{Source: directSource, URL: ref.Raw(), Tier: domain.TierDirect})
	}

	if entry, err := r.catalog.LookupCurated(ref.Name()); err == nil {
		for _, u := range entry.URLs() {
			add(domain.Candidate{Source: curatedSource, URL: r.hint(u, ref), Tier: domain.TierCurated})
		}
	}

	for _, tier := range []domain.Tier{domain.TierSearch, domain.TierAlternate} {
		for _, p := range r.providers(ctx, tier) {
			if p.Configured() && p.Accepts(ref) {
				add(domain.Candidate{Source: p.Name(), Tier: tier, Deferred: true})
			}
		}
	}

	for _, u := range r.fallbackOrder(ref) {
		add(domain.Candidate{Source: fallbackSource, URL: r.hint(u, ref), Tier: domain.TierFallback})
	}

	if len(plan) == 0 {
		return nil, domain.ErrSourceUnavailable
	}
	return plan, nil
}

// Resolve returns the first validated candidate.
func (r *Resolver) Resolve(ctx context.Context, ref domain.ImageReference) (domain.Candidate, error) {
	var chosen domain.Candidate
	err := r.Walk(ctx, ref, func(c domain.Candidate) bool {
		chosen = c
		return true
	})
	if err != nil {
		return domain.Candidate{}, err
	}
	return chosen, nil
}

// Walk probes candidates tier by tier, strictly in order, and hands each valid
// one to visit until visit accepts it.
func (r *Resolver) Walk(ctx context.Context, ref domain.ImageReference, visit func(domain.Candidate) bool) error {
	state := &walkState{ref: ref, visit: visit, rejected: map[string]bool{}}

	tiers := []func(context.Context, *walkState) error{
		r.walkDirect,
		r.walkCurated,
		r.walkSearch,
		r.walkAlternates,
		r.walkFallback,
	}

	for _, tier := range tiers {
		err := tier(ctx, state)
		if errors.Is(err, errStopWalk) {
			return nil
		}
		if err != nil {
			return err
		}
	}

	observability.FromContext(ctx).Warn("no source available")
	return domain.ErrSourceUnavailable
}

// try probes one candidate. It returns errStopWalk once visit accepts.
func (r *Resolver) try(ctx context.Context, state *walkState, c domain.Candidate) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	if c.URL == "" || state.rejected[c.URL] {
		return nil
	}

	c.Priority = state.priority
	state.priority++

	result := r.prober.Probe(ctx, c.URL)
	if !result.OK {
		state.rejected[c.URL] = true
		observability.FromContext(ctx).Debug("candidate rejected",
			observability.String("candidate_source", c.Source),
			observability.String("url", c.URL),
			observability.String("reason", string(result.Reason)))
		return nil
	}

	if state.visit(c) {
		return errStopWalk
	}
	return nil
}

func (r *Resolver) walkDirect(ctx context.Context, state *walkState) error {
	if state.ref.Kind() != domain.KindURL {
		return nil
	}
	return r.try(ctx, state, domain.Candidate{Source: directSource, URL: state.ref.Raw(), Tier: domain.TierDirect})
}

func (r *Resolver) walkCurated(ctx context.Context, state *walkState) error {
	entry, err := r.catalog.LookupCurated(state.ref.Name())
	if err != nil {
		return nil
	}

	for _, u := range entry.URLs() {
		c := domain.Candidate{Source: curatedSource, URL: r.hint(u, state.ref), Tier: domain.TierCurated}
		if err := r.try(ctx, state, c); err != nil {
			return err
		}
	}
	return nil
}

// walkSearch only runs with a free-text query and uses each provider's top hit.
func (r *Resolver) walkSearch(ctx context.Context, state *walkState) error {
	if state.ref.Query() == "" {
		return nil
	}
	return r.walkProviders(ctx, state, domain.TierSearch, 1)
}

func (r *Resolver) walkAlternates(ctx context.Context, state *walkState) error {
	return r.walkProviders(ctx, state, domain.TierAlternate, 0)
}

// walkProviders queries each provider of a tier behind its rate limit. limit
// caps the candidates tried per provider; zero means all of them.
func (r *Resolver) walkProviders(ctx context.Context, state *walkState, tier domain.Tier, limit int) error {
	for _, p := range r.providers(ctx, tier) {
		if !p.Configured() || !p.Accepts(state.ref) {
			continue
		}

		pctx := observability.WithSource(ctx, p.Name())
		logger := observability.FromContext(pctx)

		if !r.limiter.Take(pctx, p.Name()) {
			logger.Info("provider skipped, rate limited")
			continue
		}

		candidates, err := p.Find(pctx, state.ref)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, ctx.Err())
			}
			logger.Warn("provider lookup failed", observability.Error(err))
			continue
		}
		if limit > 0 && len(candidates) > limit {
			candidates = candidates[:limit]
		}

		for _, c := range candidates {
			c.Tier = tier
			c.URL = r.hint(c.URL, state.ref)
			if err := r.try(ctx, state, c); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Resolver) walkFallback(ctx context.Context, state *walkState) error {
	for _, u := range r.fallbackOrder(state.ref) {
		c := domain.Candidate{Source: fallbackSource, URL: r.hint(u, state.ref), Tier: domain.TierFallback}
		if err := r.try(ctx, state, c); err != nil {
			return err
		}
	}
	return nil
}

// fallbackOrder rotates the category list so it starts at the hashed index.
// The first entry is what repeated requests always select while it stays valid.
func (r *Resolver) fallbackOrder(ref domain.ImageReference) []string {
	var (
		category catalog.FallbackCategory
		ok       bool
	)
	if pinned := ref.Category(); pinned != "" {
		category, ok = r.catalog.FallbackCategory(pinned)
	}
	if !ok {
		category, ok = r.catalog.InferCategory(ref.Name(), ref.Query())
	}
	if !ok || len(category.URLs) == 0 {
		return nil
	}

	n := len(category.URLs)
	start := FallbackIndex(ref.Name(), n)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, category.URLs[(start+i)%n])
	}
	return out
}

func (r *Resolver) providers(ctx context.Context, tier domain.Tier) []domain.ImageProvider {
	if r.registry == nil {
		return nil
	}
	return r.registry.ByTier(ctx, tier)
}

func (r *Resolver) hint(u string, ref domain.ImageReference) string {
	return WithSizeHints(u, ref.Variant(), r.catalog)
}
