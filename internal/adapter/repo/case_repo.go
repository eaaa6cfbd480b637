package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/givehope/platform/internal/domain"
)

// CaseRepositoryPG implements CaseRepository using PostgreSQL.
type CaseRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewCaseRepository creates a new case repo.
func NewCaseRepository(pool *pgxpool.Pool) *CaseRepositoryPG {
	return &CaseRepositoryPG{pool: pool}
}

// GetByID loads a case by its identifier.
func (r *CaseRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	var c domain.Case
	err := r.pool.QueryRow(ctx, `
SELECT id, title, category, owner_id, owner_name, owner_email,
       total, donated, donations_count, status, completed_at, created_at
FROM cases
WHERE id = $1;
`, id).Scan(
		&c.ID, &c.Title, &c.Category, &c.OwnerID, &c.OwnerName, &c.OwnerEmail,
		&c.Total, &c.Donated, &c.DonationsCount, &c.Status, &c.CompletedAt, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load case: %w", err)
	}
	return &c, nil
}

// MarkFunded performs the approved-to-funded transition when the goal is
// reached. The status guard makes the transition idempotent: only the
// call that flips the row reports true.
func (r *CaseRepositoryPG) MarkFunded(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE cases
SET status = 'funded',
    completed_at = now()
WHERE id = $1
  AND status = 'approved'
  AND donated >= total;
`, id)
	if err != nil {
		return false, fmt.Errorf("mark case funded: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
