// Package trust answers advisory authorization checks for merchant/agent
// pairs. Verification never gates the pipeline: the boolean lands in artifact
// metadata and the simulation proceeds either way.
package trust

import (
	"context"
	"strings"
)

// Provider verifies a merchant/agent pair. Implementations must not fail:
// an unverifiable pair is simply untrusted.
type Provider interface {
	Verify(ctx context.Context, merchantID, agentID string) bool
}

// AllowlistProvider trusts exact members of two configured sets.
type AllowlistProvider struct {
	merchants map[string]struct{}
	agents    map[string]struct{}
}

// NewAllowlistProvider builds an allow-list provider from the given ids.
func NewAllowlistProvider(merchants, agents []string) *AllowlistProvider {
	p := &AllowlistProvider{
		merchants: make(map[string]struct{}, len(merchants)),
		agents:    make(map[string]struct{}, len(agents)),
	}
	for _, m := range merchants {
		p.merchants[m] = struct{}{}
	}
	for _, a := range agents {
		p.agents[a] = struct{}{}
	}
	return p
}

// Verify implements Provider.
func (p *AllowlistProvider) Verify(_ context.Context, merchantID, agentID string) bool {
	_, okM := p.merchants[merchantID]
	_, okA := p.agents[agentID]
	return okM && okA
}

// DefaultDIDPrefix is the mock identity prefix trusted by MockDIDProvider
// when none is configured.
const DefaultDIDPrefix = "did:web:trust.example/"

// MockDIDProvider trusts any pair whose ids both carry a configured
// DID prefix. It stands in for a real decentralized-identity resolver.
type MockDIDProvider struct {
	Prefix string
}

// NewMockDIDProvider returns a provider trusting the default prefix.
func NewMockDIDProvider() *MockDIDProvider {
	return &MockDIDProvider{Prefix: DefaultDIDPrefix}
}

// Verify implements Provider.
func (p *MockDIDProvider) Verify(_ context.Context, merchantID, agentID string) bool {
	prefix := p.Prefix
	if prefix == "" {
		prefix = DefaultDIDPrefix
	}
	return strings.HasPrefix(merchantID, prefix) && strings.HasPrefix(agentID, prefix)
}
