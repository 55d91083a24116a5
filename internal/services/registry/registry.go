package registry

import (
	"slices"
	"strings"
	"sync"

	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var providersGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "fisherman_registry_providers",
	Help: "Providers in the current registry snapshot by component type.",
}, []string{"component"})

// Registry holds the provider snapshot of the current monitoring cycle.
// Readers get copies; writers swap the whole collection.
type Registry struct {
	mu        sync.RWMutex
	providers []provider.Provider
	users     map[string]provider.User
}

func New() *Registry {
	return &Registry{users: map[string]provider.User{}}
}

func (r *Registry) Snapshot() []provider.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.providers)
}

func (r *Registry) Replace(providers []provider.Provider, users []provider.User) {
	byID := make(map[string]provider.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	next := slices.Clone(providers)

	r.mu.Lock()
	r.providers = next
	r.users = byID
	r.mu.Unlock()

	observe(next)
}

// Exclude drops providers by id until the next Replace.
func (r *Registry) Exclude(ids ...string) {
	if len(ids) == 0 {
		return
	}
	r.mu.Lock()
	r.providers = slices.DeleteFunc(slices.Clone(r.providers), func(p provider.Provider) bool {
		return slices.Contains(ids, p.ID)
	})
	cur := r.providers
	r.mu.Unlock()

	observe(cur)
}

func (r *Registry) User(id string) (provider.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	return u, ok
}

func observe(providers []provider.Provider) {
	counts := map[provider.ComponentType]int{}
	for _, p := range providers {
		counts[p.ComponentType]++
	}
	for _, ct := range []provider.ComponentType{provider.Node, provider.Gateway, provider.DApi} {
		providersGauge.WithLabelValues(ct.String()).Set(float64(counts[ct]))
	}
}

// Filter keeps providers whose status matches and, when zone is set, whose
// zone matches case-insensitively. An empty status keeps every status.
func Filter(providers []provider.Provider, status, zone string) []provider.Provider {
	out := make([]provider.Provider, 0, len(providers))
	for _, p := range providers {
		if status != "" && !strings.EqualFold(p.Status, status) {
			continue
		}
		if zone != "" && !strings.EqualFold(p.Zone, zone) {
			continue
		}
		out = append(out, p)
	}
	return out
}
