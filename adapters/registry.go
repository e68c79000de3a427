package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/brettbedarf/vfsh"
	"github.com/puzpuzpuz/xsync/v4"
)

// Registry maps source "type" keys to the providers that build adapters for them
type Registry struct {
	providers *xsync.Map[string, vfsh.AdapterProvider]
}

func NewRegistry() *Registry {
	return &Registry{providers: xsync.NewMap[string, vfsh.AdapterProvider]()}
}

// Register ties a provider to a "type" key. The first registration for a key wins.
func (r *Registry) Register(adapterType string, provider vfsh.AdapterProvider) {
	r.providers.LoadOrStore(adapterType, provider)
}

// GetProvider returns the provider registered for adapterType
func (r *Registry) GetProvider(adapterType string) (vfsh.AdapterProvider, error) {
	p, ok := r.providers.Load(adapterType)
	if !ok {
		return nil, fmt.Errorf("no provider for %q", adapterType)
	}
	return p, nil
}

// NewAdapter picks the provider based on the raw definition's "type" field
// and builds an adapter from it.
func (r *Registry) NewAdapter(raw []byte) (vfsh.FileAdapter, error) {
	var meta struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	if meta.Type == "" {
		return nil, fmt.Errorf("source definition has no type")
	}
	p, err := r.GetProvider(meta.Type)
	if err != nil {
		return nil, err
	}
	return p.NewAdapter(raw)
}
