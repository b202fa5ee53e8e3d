package connectors

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven"
)

// Registration pairs a provider client with the codec for its state parameter.
type Registration struct {
	Client driven.OAuthClient
	State  driven.StateCodec
}

// Factory is the registry of configured providers.
type Factory struct {
	mu            sync.RWMutex
	registrations map[domain.ProviderType]Registration
}

// NewFactory creates an empty registry.
func NewFactory() *Factory {
	return &Factory{
		registrations: make(map[domain.ProviderType]Registration),
	}
}

// Register registers a client and its state codec under the client's provider.
func (f *Factory) Register(client driven.OAuthClient, state driven.StateCodec) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registrations[client.Provider()] = Registration{Client: client, State: state}
}

// Get returns the registration for a provider.
func (f *Factory) Get(provider domain.ProviderType) (Registration, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	reg, ok := f.registrations[provider]
	if !ok {
		return Registration{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, provider)
	}
	return reg, nil
}

// Client returns the OAuth client for a provider.
func (f *Factory) Client(provider domain.ProviderType) (driven.OAuthClient, error) {
	reg, err := f.Get(provider)
	if err != nil {
		return nil, err
	}
	return reg.Client, nil
}

// SupportedTypes returns the registered providers in a stable order.
func (f *Factory) SupportedTypes() []domain.ProviderType {
	f.mu.RLock()
	defer f.mu.RUnlock()
	types := make([]domain.ProviderType, 0, len(f.registrations))
	for t := range f.registrations {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
