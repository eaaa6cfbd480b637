package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Client-branchable error codes carried on RequestError.
const (
	CodeEmailMismatch        = "EMAIL_MISMATCH"
	CodeInvalidEmail         = "INVALID_EMAIL"
	CodeDuplicateTransaction = "DUPLICATE_TRANSACTION"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrCaseNotApproved      = errors.New("case not found or not approved")
	ErrCaseCompleted        = errors.New("case already fully funded")
	ErrDuplicateTransaction = errors.New("duplicate transaction reference")
)

// RequestError is a terminal, client-addressable validation or conflict
// failure. Code is set only for cases the client is expected to branch on.
type RequestError struct {
	Code    string
	Message string
	Details any
}

func (e *RequestError) Error() string {
	return e.Message
}

// OverfundingError rejects a donation that would push a case past its
// goal. MaxAllowed is surfaced so the client can offer the exact gap.
type OverfundingError struct {
	MaxAllowed decimal.Decimal
	Remaining  decimal.Decimal
}

func (e *OverfundingError) Error() string {
	return fmt.Sprintf("donation exceeds remaining case amount, maximum allowed is %s %s", e.MaxAllowed.StringFixed(2), CanonicalCurrency)
}
