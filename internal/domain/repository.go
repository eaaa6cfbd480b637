package domain

import "context"

// CaseRepository defines access methods for fundraising cases.
type CaseRepository interface {
	GetByID(ctx context.Context, id string) (*Case, error)

	// MarkFunded transitions an approved case whose donated total has
	// reached its goal to funded, stamping the completion time. It
	// reports whether this call performed the transition, so completion
	// side effects fire exactly once no matter how many callers race.
	MarkFunded(ctx context.Context, id string) (bool, error)
}

// DonationRepository handles ledger persistence.
type DonationRepository interface {
	// Record writes the ledger entry and applies the case funding
	// increment as one atomic storage operation. It fails with
	// ErrDuplicateTransaction, ErrCaseNotApproved, ErrCaseCompleted or
	// *OverfundingError without leaving a ledger row behind.
	Record(ctx context.Context, d *Donation) error

	TransactionIDExists(ctx context.Context, txID string) (bool, error)
	ListRecent(ctx context.Context) ([]Donation, error)
	ListByCase(ctx context.Context, caseID string) ([]Donation, error)
	ListByUser(ctx context.Context, userID string) ([]Donation, error)
}

// NotificationRepository records notification requests for delivery.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
}
