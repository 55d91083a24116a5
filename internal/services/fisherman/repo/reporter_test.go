package repo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/NordCoder/Fisherman/internal/domain/outbox"
	"github.com/NordCoder/Fisherman/internal/domain/penalty"
	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inlineTx struct{ calls int }

func (t *inlineTx) WithTx(ctx context.Context, fn func(context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type memReports struct {
	rows []*penalty.Report
	err  error
}

func (m *memReports) Insert(_ context.Context, r *penalty.Report) error {
	if m.err != nil {
		return m.err
	}
	r.ID = int64(len(m.rows) + 1)
	r.CreatedAt = time.Unix(1700000000, 0).UTC()
	m.rows = append(m.rows, r)
	return nil
}

func (m *memReports) ListByProvider(context.Context, string, int) ([]*penalty.Report, error) {
	return m.rows, nil
}

type memOutbox struct {
	keys []string
	msgs []outbox.Message
}

func (m *memOutbox) Enqueue(_ context.Context, key string, kind outbox.Kind, data []byte) error {
	m.keys = append(m.keys, key)
	m.msgs = append(m.msgs, outbox.Message{IdempotencyKey: key, Kind: kind, Data: data})
	return nil
}
func (m *memOutbox) PickBatch(context.Context, int, time.Duration) ([]outbox.Message, error) {
	return nil, nil
}
func (m *memOutbox) MarkSuccess(context.Context, []string) error { return nil }

const (
	gatewayID = "6f1c2a9e-3b4d-4e5f-8a7b-9c0d1e2f3a4b"
	nodeID    = "0b7e6a1c-2d3f-4a5b-9c8d-7e6f5a4b3c2d"
)

func TestStoreReporter_Submit(t *testing.T) {
	tx := &inlineTx{}
	reports := &memReports{}
	ob := &memOutbox{}
	s := &StoreReporter{Tx: tx, Reports: reports, Outbox: ob}

	p := provider.Provider{ID: gatewayID, ComponentType: provider.Gateway, Blockchain: "eth", Network: "mainnet"}
	require.NoError(t, s.Submit(context.Background(), p, penalty.NewBadPerformance(10, 30, 0)))

	assert.Equal(t, 1, tx.calls)
	require.Len(t, reports.rows, 1)
	require.Len(t, ob.msgs, 1)
	assert.Equal(t, outbox.KindProviderReport, ob.msgs[0].Kind)
	_, err := uuid.Parse(ob.keys[0])
	assert.NoError(t, err)

	var got penalty.Report
	require.NoError(t, json.Unmarshal(ob.msgs[0].Data, &got))
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, gatewayID, got.ProviderID)
	assert.Equal(t, provider.Gateway, got.ComponentType)
	assert.Equal(t, penalty.BadPerformance, got.Reason.Kind)
	assert.Equal(t, uint32(30), got.Reason.SuccessPercent)
}

func TestStoreReporter_InsertFailureSkipsOutbox(t *testing.T) {
	ob := &memOutbox{}
	s := &StoreReporter{Tx: &inlineTx{}, Reports: &memReports{err: errors.New("db down")}, Outbox: ob}

	err := s.Submit(context.Background(), provider.Provider{ID: nodeID}, penalty.Reason{Kind: penalty.OutOfSync})
	require.Error(t, err)
	assert.Empty(t, ob.msgs)
}

func TestStoreReporter_RejectsMalformedProviderID(t *testing.T) {
	tx := &inlineTx{}
	reports := &memReports{}
	ob := &memOutbox{}
	s := &StoreReporter{Tx: tx, Reports: reports, Outbox: ob}

	for _, id := range []string{"", "gw-1", nodeID + "x"} {
		err := s.Submit(context.Background(), provider.Provider{ID: id}, penalty.Reason{Kind: penalty.OutOfSync})
		require.ErrorIs(t, err, ErrBadProviderID, id)
	}
	assert.Zero(t, tx.calls)
	assert.Empty(t, reports.rows)
	assert.Empty(t, ob.msgs)
}
