package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NordCoder/Fisherman/internal/domain/penalty"
	"github.com/NordCoder/Fisherman/internal/domain/provider"
	"github.com/jackc/pgx/v5"
)

var _ penalty.Repo = (*ProviderReportRepoImpl)(nil)

type ProviderReportRepoImpl struct {
	db *DB
}

func NewProviderReportRepo(db *DB) *ProviderReportRepoImpl { return &ProviderReportRepoImpl{db: db} }

const (
	qInsertReport = `
INSERT INTO provider_reports (provider_id, component_type, blockchain, network, reason)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at;`

	qListReportsByProvider = `
SELECT id, provider_id, component_type, blockchain, network, reason, created_at
FROM provider_reports
WHERE provider_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2;`
)

// Insert fills r.ID and r.CreatedAt.
func (r *ProviderReportRepoImpl) Insert(ctx context.Context, rep *penalty.Report) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	reason, err := json.Marshal(rep.Reason)
	if err != nil {
		return fmt.Errorf("encode reason: %w", err)
	}
	row := r.db.execQueryer(ctx).QueryRow(ctx, qInsertReport,
		rep.ProviderID, rep.ComponentType.String(), rep.Blockchain, rep.Network, reason)
	if err := row.Scan(&rep.ID, &rep.CreatedAt); err != nil {
		return fmt.Errorf("insert provider report: %w", mapErr(err))
	}
	return nil
}

func (r *ProviderReportRepoImpl) ListByProvider(ctx context.Context, providerID string, limit int) ([]*penalty.Report, error) {
	if limit <= 0 {
		limit = 50
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qListReportsByProvider, providerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list provider reports: %w", err)
	}
	defer rows.Close()

	var out []*penalty.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func scanReport(row pgx.Row) (*penalty.Report, error) {
	var (
		rep    penalty.Report
		ct     string
		reason []byte
	)
	if err := row.Scan(&rep.ID, &rep.ProviderID, &ct, &rep.Blockchain, &rep.Network, &reason, &rep.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan provider report: %w", err)
	}
	t, err := provider.ParseComponentType(ct)
	if err != nil {
		return nil, fmt.Errorf("scan provider report: %w", err)
	}
	rep.ComponentType = t
	if err := json.Unmarshal(reason, &rep.Reason); err != nil {
		return nil, fmt.Errorf("decode reason: %w", err)
	}
	return &rep, nil
}
