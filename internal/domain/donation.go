package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CanonicalCurrency is the currency every stored amount is normalized to.
const CanonicalCurrency = "ILS"

// SupportedCurrencies lists the currencies a donation may be submitted in.
var SupportedCurrencies = []string{"ILS", "JOD", "USD", "AED"}

// CurrencySupported reports whether the given code is accepted for submissions.
func CurrencySupported(code string) bool {
	for _, c := range SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

// PaymentMethod tags how a donation was paid. Informational only; the
// platform never talks to a payment gateway itself.
type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "card"
	PaymentPayPal   PaymentMethod = "paypal"
	PaymentWallet   PaymentMethod = "wallet"
	PaymentTransfer PaymentMethod = "transfer"
)

// Valid reports whether the payment method is one of the accepted tags.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentPayPal, PaymentWallet, PaymentTransfer:
		return true
	}
	return false
}

// DonorInfo carries the donor's personal fields. In a persisted Donation
// every field except Anonymous holds ciphertext; the plaintext form only
// ever lives in memory for the notification fan-out.
type DonorInfo struct {
	Name         string
	Email        string
	Phone        string
	IDCardNumber string
	Anonymous    bool
}

// Donation is one immutable ledger entry: created exactly once on a
// successful submission, never updated, never deleted.
type Donation struct {
	ID               string
	CaseID           string
	CaseTitle        string
	Amount           decimal.Decimal // canonical currency
	OriginalAmount   decimal.Decimal
	OriginalCurrency string
	Currency         string
	Donor            DonorInfo
	PaymentMethod    PaymentMethod
	TransactionID    string
	AuthorID         string
	AuthorName       string
	CreatedAt        time.Time
}
