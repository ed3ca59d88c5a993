package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/davidbz/imgresolve/internal/domain"
)

// Registry implements the ProviderRegistry interface.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]domain.ImageProvider
	// order preserves registration order, which is the fallback order within a tier.
	order []string
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		mu:        sync.RWMutex{},
		providers: make(map[string]domain.ImageProvider),
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(_ context.Context, provider domain.ImageProvider) error {
	if provider == nil {
		return errors.New("provider cannot be nil")
	}

	name := provider.Name()
	if name == "" {
		return errors.New("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}

	r.providers[name] = provider
	r.order = append(r.order, name)

	return nil
}

// Get retrieves a provider by name.
func (r *Registry) Get(_ context.Context, name string) (domain.ImageProvider, error) {
	if name == "" {
		return nil, errors.New("provider name cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("provider %s not found", name)
	}

	return provider, nil
}

// List returns provider names in registration order.
func (r *Registry) List(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)

	return names, nil
}

// ByTier returns the providers of a tier in registration order.
func (r *Registry) ByTier(_ context.Context, tier domain.Tier) []domain.ImageProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.ImageProvider
	for _, name := range r.order {
		if p := r.providers[name]; p.Tier() == tier {
			out = append(out, p)
		}
	}
	return out
}
