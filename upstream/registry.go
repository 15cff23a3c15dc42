package upstream

import (
	"sort"

	"areadata.app/config"
)

// Registry maps upstream identifiers to their clients. Upstreams whose
// credentials are not configured are simply absent.
type Registry struct {
	upstreams map[string]Upstream
}

func NewRegistry(cfg *config.UpstreamsConfig) *Registry {
	r := &Registry{upstreams: make(map[string]Upstream)}

	if cfg.LaborAPIKey != "" {
		r.register(NewLaborClient(cfg.LaborAPIKey, cfg.LaborBaseURL))
	}
	if cfg.EconAPIKey != "" {
		r.register(NewEconClient(cfg.EconAPIKey, cfg.EconBaseURL))
	}
	if cfg.CrimeAPIKey != "" {
		r.register(NewCrimeClient(cfg.CrimeAPIKey, cfg.CrimeBaseURL))
	}
	if cfg.ClimateToken != "" {
		r.register(NewClimateClient(cfg.ClimateToken, cfg.ClimateBaseURL))
	}
	if cfg.PlacesToken != "" {
		r.register(NewPlacesClient(cfg.PlacesToken, cfg.PlacesBaseURL))
	}
	if cfg.DemoAPIKey != "" {
		r.register(NewDemographicsClient(cfg.DemoAPIKey, cfg.DemoBaseURL))
	}

	return r
}

// NewRegistryWith builds a registry from explicit upstreams, used by
// tests and the warm-metric refresher wiring.
func NewRegistryWith(upstreams ...Upstream) *Registry {
	r := &Registry{upstreams: make(map[string]Upstream)}
	for _, u := range upstreams {
		r.register(u)
	}
	return r
}

func (r *Registry) register(u Upstream) {
	r.upstreams[u.ID()] = u
}

// Lookup returns the upstream for an identifier.
func (r *Registry) Lookup(id string) (Upstream, bool) {
	u, ok := r.upstreams[id]
	return u, ok
}

// IDs returns the configured upstream identifiers, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.upstreams))
	for id := range r.upstreams {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
