package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/NordCoder/Fisherman/internal/domain/outbox"
	"github.com/NordCoder/Fisherman/internal/domain/penalty"
	"github.com/NordCoder/Fisherman/internal/domain/provider"
	outboxsvc "github.com/NordCoder/Fisherman/internal/outbox"
	"github.com/google/uuid"
)

type Transactor interface {
	WithTx(ctx context.Context, function func(ctx context.Context) error) error
}

// StoreReporter stores a penalty and enqueues it for publication in one
// transaction. The outbox runner delivers it to the chain reporter.
type StoreReporter struct {
	Tx      Transactor
	Reports penalty.Repo
	Outbox  outbox.Repository
}

// ProviderIDLen is the byte length of a provider id the chain reporter accepts.
const ProviderIDLen = 36

var ErrBadProviderID = errors.New("provider id must be 36 bytes")

var _ penalty.Reporter = (*StoreReporter)(nil)

func (s *StoreReporter) Submit(ctx context.Context, p provider.Provider, reason penalty.Reason) error {
	if len(p.ID) != ProviderIDLen {
		return fmt.Errorf("submit report for %q: %w", p.ID, ErrBadProviderID)
	}
	return s.Tx.WithTx(ctx, func(ctx context.Context) error {
		r := &penalty.Report{
			ProviderID:    p.ID,
			ComponentType: p.ComponentType,
			Blockchain:    p.Blockchain,
			Network:       p.Network,
			Reason:        reason,
		}
		if err := s.Reports.Insert(ctx, r); err != nil {
			return fmt.Errorf("store report: %w", err)
		}
		data, err := outboxsvc.EncodeProviderReport(r)
		if err != nil {
			return err
		}
		if err := s.Outbox.Enqueue(ctx, uuid.NewString(), outbox.KindProviderReport, data); err != nil {
			return fmt.Errorf("enqueue report: %w", err)
		}
		return nil
	})
}
