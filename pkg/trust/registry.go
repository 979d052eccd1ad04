package trust

import (
	"fmt"
	"sync"
)

// Built-in policy names.
const (
	PolicyAllowlist = "allowlist"
	PolicyMockDID   = "did:mock"
)

// Factory constructs a trust provider.
type Factory func() (Provider, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a custom provider constructible by name through New.
// It replaces dynamic plugin loading: external policies register themselves
// at init time instead of being resolved by import path at runtime.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New builds the provider selected by name. An empty name selects the
// default allow-list policy trusting the sandbox's default merchant/agent.
func New(name string) (Provider, error) {
	switch name {
	case "", PolicyAllowlist:
		return NewAllowlistProvider(
			[]string{"merchant-default"},
			[]string{"agent-default"},
		), nil
	case PolicyMockDID:
		return NewMockDIDProvider(), nil
	}

	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown trust provider %q (register it with trust.Register)", name)
	}
	return factory()
}
