package llm

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/Rrens/aura-chat/internal/domain"
)

// Router manages LLM providers and routes replies to the default one
type Router struct {
	providers       map[string]Provider
	defaultProvider string
	mu              sync.RWMutex
}

// NewRouter creates a new LLM router
func NewRouter(defaultProvider string) *Router {
	return &Router{
		providers:       make(map[string]Provider),
		defaultProvider: defaultProvider,
	}
}

// RegisterProvider registers an LLM provider
func (r *Router) RegisterProvider(provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.Name()] = provider
}

// GetProvider returns a provider by name
func (r *Router) GetProvider(name string) (Provider, error) {
	if name == "" {
		name = r.defaultProvider
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: provider not registered: %s", domain.ErrUnavailable, name)
	}

	if !p.IsConfigured() {
		return nil, fmt.Errorf("%w: provider not configured: %s", domain.ErrUnavailable, name)
	}

	return p, nil
}

// ListProviders returns sorted names of configured providers
func (r *Router) ListProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var providers []string
	for name, p := range r.providers {
		if p.IsConfigured() {
			providers = append(providers, name)
		}
	}
	sort.Strings(providers)
	return providers
}

// DefaultProvider returns the default provider name
func (r *Router) DefaultProvider() string {
	return r.defaultProvider
}

// Available reports whether the default provider can serve requests
func (r *Router) Available() bool {
	_, err := r.GetProvider("")
	return err == nil
}

// Reply forwards the request to the default provider
func (r *Router) Reply(ctx context.Context, req Request) (*Response, error) {
	p, err := r.GetProvider("")
	if err != nil {
		return nil, err
	}
	return p.Reply(ctx, req)
}

// Close releases provider resources such as long-lived API clients
func (r *Router) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for _, p := range r.providers {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
