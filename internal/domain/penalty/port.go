package penalty

import (
	"context"

	"github.com/NordCoder/Fisherman/internal/domain/provider"
)

// Reporter submits a penalty for a provider. Implementations may fail; the
// caller decides whether to retry.
type Reporter interface {
	Submit(ctx context.Context, p provider.Provider, reason Reason) error
}

type Repo interface {
	Insert(ctx context.Context, r *Report) error
	ListByProvider(ctx context.Context, providerID string, limit int) ([]*Report, error)
}

// Events publishes stored reports to the chain reporter.
type Events interface {
	PublishReport(ctx context.Context, r *Report) error
}
