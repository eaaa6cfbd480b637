package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/givehope/platform/internal/domain"
)

const uniqueViolation = "23505"

// DonationRepositoryPG implements DonationRepository using PostgreSQL.
type DonationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(pool *pgxpool.Pool) *DonationRepositoryPG {
	return &DonationRepositoryPG{pool: pool}
}

// Record inserts the ledger entry and applies the case funding increment
// in a single transaction. The increment is one conditional UPDATE, so
// concurrent donations to the same case can neither lose updates nor
// push the donated total past the goal.
func (r *DonationRepositoryPG) Record(ctx context.Context, d *domain.Donation) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin donation tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
INSERT INTO donations (
	id, case_id, case_title, amount, original_amount, original_currency,
	currency, donor_name, donor_email, donor_phone, donor_idcard,
	anonymous, payment_method, transaction_reference, author_id,
	author_name, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
`,
		d.ID, d.CaseID, d.CaseTitle, d.Amount, d.OriginalAmount, d.OriginalCurrency,
		d.Currency, d.Donor.Name, d.Donor.Email, d.Donor.Phone, d.Donor.IDCardNumber,
		d.Donor.Anonymous, d.PaymentMethod, d.TransactionID, d.AuthorID,
		d.AuthorName, d.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateTransaction
		}
		return fmt.Errorf("insert donation: %w", err)
	}

	tag, err := tx.Exec(ctx, `
UPDATE cases
SET donated = donated + $1,
    donations_count = donations_count + 1
WHERE id = $2
  AND status = 'approved'
  AND donated + $1 <= total;
`, d.Amount, d.CaseID)
	if err != nil {
		return fmt.Errorf("apply case funding: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return r.explainRejectedFunding(ctx, tx, d.CaseID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit donation tx: %w", err)
	}
	return nil
}

// explainRejectedFunding turns a refused increment into the precise
// conflict the caller should surface.
func (r *DonationRepositoryPG) explainRejectedFunding(ctx context.Context, tx pgx.Tx, caseID string) error {
	var status string
	var total, donated decimal.Decimal
	err := tx.QueryRow(ctx, `
SELECT status, total, donated
FROM cases
WHERE id = $1;
`, caseID).Scan(&status, &total, &donated)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrCaseNotApproved
	}
	if err != nil {
		return fmt.Errorf("load case for rejection: %w", err)
	}

	remaining := total.Sub(donated)
	switch {
	case status == string(domain.CaseFunded) || !remaining.IsPositive():
		return domain.ErrCaseCompleted
	case status != string(domain.CaseApproved):
		return domain.ErrCaseNotApproved
	default:
		return &domain.OverfundingError{MaxAllowed: remaining.Round(2), Remaining: remaining}
	}
}

// TransactionIDExists reports whether a ledger entry already carries the
// externally supplied transaction reference.
func (r *DonationRepositoryPG) TransactionIDExists(ctx context.Context, txID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM donations WHERE transaction_reference = $1);
`, txID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check transaction reference: %w", err)
	}
	return exists, nil
}

const donationColumns = `
id, case_id, case_title, amount, original_amount, original_currency,
currency, donor_name, donor_email, donor_phone, donor_idcard,
anonymous, payment_method, transaction_reference, author_id,
author_name, created_at`

// ListRecent returns all donations, newest first.
func (r *DonationRepositoryPG) ListRecent(ctx context.Context) ([]domain.Donation, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+donationColumns+`
FROM donations
ORDER BY created_at DESC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDonations(rows)
}

// ListByCase returns donations targeting one case, newest first.
func (r *DonationRepositoryPG) ListByCase(ctx context.Context, caseID string) ([]domain.Donation, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+donationColumns+`
FROM donations
WHERE case_id = $1
ORDER BY created_at DESC;
`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDonations(rows)
}

// ListByUser returns donations made by one account, newest first.
func (r *DonationRepositoryPG) ListByUser(ctx context.Context, userID string) ([]domain.Donation, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+donationColumns+`
FROM donations
WHERE author_id = $1
ORDER BY created_at DESC;
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDonations(rows)
}

func scanDonations(rows pgx.Rows) ([]domain.Donation, error) {
	var items []domain.Donation
	for rows.Next() {
		var d domain.Donation
		if err := rows.Scan(
			&d.ID, &d.CaseID, &d.CaseTitle, &d.Amount, &d.OriginalAmount, &d.OriginalCurrency,
			&d.Currency, &d.Donor.Name, &d.Donor.Email, &d.Donor.Phone, &d.Donor.IDCardNumber,
			&d.Donor.Anonymous, &d.PaymentMethod, &d.TransactionID, &d.AuthorID,
			&d.AuthorName, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
