package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CaseStatus tracks a fundraising case through its lifecycle. Only
// approved cases accept donations; the funded transition is performed by
// the donation pipeline when the goal is reached.
type CaseStatus string

const (
	CasePending  CaseStatus = "pending"
	CaseApproved CaseStatus = "approved"
	CaseFunded   CaseStatus = "funded"
	CaseRejected CaseStatus = "rejected"
)

// Case is a fundraising campaign with a goal and a cumulative total in
// the canonical currency. Donated and DonationsCount only ever grow.
type Case struct {
	ID             string
	Title          string
	Category       string
	OwnerID        string
	OwnerName      string
	OwnerEmail     string
	Total          decimal.Decimal
	Donated        decimal.Decimal
	DonationsCount int64
	Status         CaseStatus
	CompletedAt    *time.Time
	CreatedAt      time.Time
}

// Remaining returns how much funding the case still needs.
func (c *Case) Remaining() decimal.Decimal {
	return c.Total.Sub(c.Donated)
}
