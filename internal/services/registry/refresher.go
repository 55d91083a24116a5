package registry

import (
	"context"
	"time"

	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/NordCoder/Fisherman/internal/obs/retry"
	"go.uber.org/zap"
)

// Refresher periodically replaces the registry snapshot from the directory.
type Refresher struct {
	Log       *zap.Logger
	Directory provider.Directory
	Registry  *Registry
	Status    string
	Zone      string
	Interval  time.Duration
	Policy    retry.Policy
}

// Refresh performs one fetch-filter-swap. On failure the previous snapshot stays.
func (r *Refresher) Refresh(ctx context.Context) error {
	type fetched struct {
		providers []provider.Provider
		users     []provider.User
	}
	res, err := retry.DoValue(ctx, func() (fetched, error) {
		p, u, err := r.Directory.Fetch(ctx)
		return fetched{p, u}, err
	}, r.Policy)
	if err != nil {
		return err
	}

	providers := Filter(res.providers, r.Status, r.Zone)
	r.Registry.Replace(providers, res.users)
	r.Log.Info("provider list updated",
		zap.Int("fetched", len(res.providers)),
		zap.Int("kept", len(providers)),
		zap.Int("users", len(res.users)))
	return nil
}

func (r *Refresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
				r.Log.Warn("provider list refresh failed", zap.Error(err))
			}
		}
	}
}
