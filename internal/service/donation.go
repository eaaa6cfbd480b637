package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/givehope/platform/internal/domain"
	"github.com/givehope/platform/internal/notify"
	"github.com/givehope/platform/internal/security"
)

// Site-wide donation bounds, in the canonical currency.
const (
	MinDonation = 1
	MaxDonation = 10000
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RateConverter normalizes an amount into the target currency.
type RateConverter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}

// DonationRequest is one inbound donation submission.
type DonationRequest struct {
	CaseID        string
	Amount        decimal.Decimal
	Currency      string
	Donor         domain.DonorInfo
	PaymentMethod domain.PaymentMethod
	TransactionID string
	Anonymous     bool
	AuthorID      string // guest fallback when no identity is present
	AuthorName    string
	Locale        string
}

// DonationResult is the public outcome of an accepted donation.
type DonationResult struct {
	Donation          *domain.Donation
	ConvertedAmount   decimal.Decimal
	ReceiptEmail      string
	CaseOwnerNotified bool
	CaseFunded        bool
}

// UserDonations aggregates one account's donation history.
type UserDonations struct {
	UserID         string
	DonationsCount int
	TotalAmount    decimal.Decimal
	Donations      []domain.Donation
}

// DonationService orchestrates validation, currency normalization,
// ledger persistence and the notification fan-out for donations.
type DonationService struct {
	cases     domain.CaseRepository
	donations domain.DonationRepository
	notifier  notify.Gateway
	converter RateConverter
	codec     *security.Codec
	logger    zerolog.Logger
}

// NewDonationService wires the donation pipeline.
func NewDonationService(
	cases domain.CaseRepository,
	donations domain.DonationRepository,
	notifier notify.Gateway,
	converter RateConverter,
	codec *security.Codec,
	logger zerolog.Logger,
) *DonationService {
	return &DonationService{
		cases:     cases,
		donations: donations,
		notifier:  notifier,
		converter: converter,
		codec:     codec,
		logger:    logger,
	}
}

// CreateDonation runs the full submission pipeline. The donation is
// authoritative once the ledger write commits; everything after that
// point (funded transition, notifications) is best-effort and can only
// be logged, never fail the request.
func (s *DonationService) CreateDonation(ctx context.Context, identity domain.Identity, req DonationRequest) (*DonationResult, error) {
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = domain.CanonicalCurrency
	}

	if err := validateSubmission(identity, req, currency); err != nil {
		return nil, err
	}

	amountCanonical, err := s.converter.Convert(ctx, req.Amount, currency, domain.CanonicalCurrency)
	if err != nil {
		// Rate lookup failures are surfaced, never papered over with a
		// stale or guessed rate: misrecording money is worse than a 503.
		return nil, fmt.Errorf("convert donation amount: %w", err)
	}

	exists, err := s.donations.TransactionIDExists(ctx, req.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("check duplicate transaction: %w", err)
	}
	if exists {
		return nil, &domain.RequestError{
			Code:    domain.CodeDuplicateTransaction,
			Message: "transaction reference was already recorded, please retry with a new payment",
		}
	}

	caseData, err := s.cases.GetByID(ctx, req.CaseID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCaseNotApproved
		}
		return nil, fmt.Errorf("load case: %w", err)
	}
	if caseData.Status != domain.CaseApproved {
		if caseData.Status == domain.CaseFunded {
			return nil, domain.ErrCaseCompleted
		}
		return nil, domain.ErrCaseNotApproved
	}

	// Best-effort pre-check; the storage layer re-enforces this
	// atomically so concurrent donors cannot overshoot between here and
	// the commit.
	remaining := caseData.Remaining()
	if !remaining.IsPositive() {
		return nil, domain.ErrCaseCompleted
	}
	if amountCanonical.GreaterThan(remaining) {
		return nil, &domain.OverfundingError{MaxAllowed: remaining.Round(2), Remaining: remaining}
	}

	if amountCanonical.LessThan(decimal.NewFromInt(MinDonation)) ||
		amountCanonical.GreaterThan(decimal.NewFromInt(MaxDonation)) {
		return nil, &domain.RequestError{
			Message: fmt.Sprintf("donation amount must be between %d and %d %s", MinDonation, MaxDonation, domain.CanonicalCurrency),
		}
	}

	authorID := identity.ID
	authorName := identity.Name
	if authorID == "" {
		authorID = strings.TrimSpace(req.AuthorID)
	}
	if authorName == "" {
		authorName = strings.TrimSpace(req.AuthorName)
	}
	if authorID == "" || authorName == "" {
		return nil, &domain.RequestError{
			Message: "donor account id and name are missing",
			Details: "provide them in the request or authenticate first",
		}
	}

	// Plaintext snapshot for notifications only; what gets persisted is
	// ciphertext per field.
	plainDonor := req.Donor
	plainDonor.Anonymous = req.Anonymous

	encDonor, err := s.encryptDonor(plainDonor)
	if err != nil {
		return nil, fmt.Errorf("encrypt donor fields: %w", err)
	}

	donation := &domain.Donation{
		ID:               uuid.NewString(),
		CaseID:           caseData.ID,
		CaseTitle:        caseData.Title,
		Amount:           amountCanonical,
		OriginalAmount:   req.Amount,
		OriginalCurrency: currency,
		Currency:         domain.CanonicalCurrency,
		Donor:            encDonor,
		PaymentMethod:    req.PaymentMethod,
		TransactionID:    req.TransactionID,
		AuthorID:         authorID,
		AuthorName:       authorName,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.donations.Record(ctx, donation); err != nil {
		if errors.Is(err, domain.ErrDuplicateTransaction) {
			// Lost the race with a concurrent submission carrying the
			// same reference; same outcome as the pre-check.
			return nil, &domain.RequestError{
				Code:    domain.CodeDuplicateTransaction,
				Message: "transaction reference was already recorded, please retry with a new payment",
			}
		}
		return nil, err
	}

	s.logger.Info().
		Str("donation_id", donation.ID).
		Str("case_id", caseData.ID).
		Str("amount", amountCanonical.StringFixed(2)).
		Str("original", req.Amount.String()+" "+currency).
		Bool("anonymous", req.Anonymous).
		Msg("donation recorded")

	funded, err := s.cases.MarkFunded(ctx, caseData.ID)
	if err != nil {
		// The ledger entry is already durable; the next donation or
		// completion check will retry the transition.
		s.logger.Error().Err(err).Str("case_id", caseData.ID).Msg("funded transition check failed")
	}

	ownerNotified := s.fanOutNotifications(ctx, caseData, donation, plainDonor, req.Locale, funded)

	return &DonationResult{
		Donation:          donation,
		ConvertedAmount:   amountCanonical,
		ReceiptEmail:      plainDonor.Email,
		CaseOwnerNotified: ownerNotified,
		CaseFunded:        funded,
	}, nil
}

func validateSubmission(identity domain.Identity, req DonationRequest, currency string) error {
	if req.CaseID == "" || req.TransactionID == "" || !req.Amount.IsPositive() {
		return &domain.RequestError{Message: "donation payload is incomplete or the amount is invalid"}
	}
	if !req.PaymentMethod.Valid() {
		return &domain.RequestError{Message: "payment method is missing or not supported"}
	}
	if strings.TrimSpace(req.Donor.Name) == "" ||
		strings.TrimSpace(req.Donor.Phone) == "" ||
		strings.TrimSpace(req.Donor.IDCardNumber) == "" {
		return &domain.RequestError{Message: "donor name, phone and id card number are required"}
	}
	if !domain.CurrencySupported(currency) {
		return &domain.RequestError{Message: fmt.Sprintf("currency %s is not supported", currency)}
	}

	// An authenticated user must donate under their own registered
	// email. This is a distinct, branchable failure so the client can
	// prefill the right address instead of showing a generic error.
	if !identity.IsZero() && identity.Email != "" && req.Donor.Email != identity.Email {
		return &domain.RequestError{
			Code:    domain.CodeEmailMismatch,
			Message: "donor email does not match the registered account email",
			Details: map[string]string{
				"enteredEmail":    req.Donor.Email,
				"registeredEmail": identity.Email,
			},
		}
	}
	if !emailPattern.MatchString(req.Donor.Email) {
		return &domain.RequestError{
			Code:    domain.CodeInvalidEmail,
			Message: "donor email is not a valid address",
		}
	}
	return nil
}

func (s *DonationService) encryptDonor(plain domain.DonorInfo) (domain.DonorInfo, error) {
	name, err := s.codec.Encrypt(plain.Name)
	if err != nil {
		return domain.DonorInfo{}, err
	}
	email, err := s.codec.Encrypt(plain.Email)
	if err != nil {
		return domain.DonorInfo{}, err
	}
	phone, err := s.codec.Encrypt(plain.Phone)
	if err != nil {
		return domain.DonorInfo{}, err
	}
	idCard, err := s.codec.Encrypt(plain.IDCardNumber)
	if err != nil {
		return domain.DonorInfo{}, err
	}
	return domain.DonorInfo{
		Name:         name,
		Email:        email,
		Phone:        phone,
		IDCardNumber: idCard,
		Anonymous:    plain.Anonymous,
	}, nil
}

// fanOutNotifications dispatches the thank-you, owner alert and optional
// completion alert. Each dispatch is isolated: a failure is logged and
// the rest still go out.
func (s *DonationService) fanOutNotifications(
	ctx context.Context,
	caseData *domain.Case,
	donation *domain.Donation,
	plainDonor domain.DonorInfo,
	locale string,
	funded bool,
) bool {
	donorKey := notify.RecipientKey(donation.AuthorID, plainDonor.Email)
	ownerKey := notify.RecipientKey(caseData.OwnerID, caseData.OwnerEmail)

	s.dispatch(ctx, &domain.Notification{
		User:        donorKey,
		Title:       "Thank you for your donation!",
		Message:     fmt.Sprintf("Thank you for supporting %q with %s %s. A receipt will arrive by email.", caseData.Title, donation.Amount.StringFixed(2), donation.Currency),
		Type:        domain.NotificationDonationThanks,
		Channels:    []domain.NotificationChannel{domain.ChannelDashboard, domain.ChannelEmail},
		ReferenceID: caseData.ID,
		Metadata: map[string]any{
			"donationId":       donation.ID,
			"caseId":           caseData.ID,
			"caseTitle":        caseData.Title,
			"category":         caseData.Category,
			"amount":           donation.Amount,
			"originalAmount":   donation.OriginalAmount,
			"originalCurrency": donation.OriginalCurrency,
			"currency":         donation.Currency,
			"paymentMethod":    donation.PaymentMethod,
			"transactionId":    donation.TransactionID,
			"donorInfo":        donorSnapshot(plainDonor),
			"isAnonymous":      plainDonor.Anonymous,
			"locale":           locale,
		},
	})

	ownerNotified := false
	if caseData.OwnerEmail != "" && caseData.OwnerEmail != plainDonor.Email {
		ownerDonor := donorSnapshot(plainDonor)
		if plainDonor.Anonymous {
			// Identity is redacted for the owner only; the donor's own
			// receipt keeps the full snapshot.
			ownerDonor = map[string]string{"name": "anonymous", "email": "anonymous"}
		}
		s.dispatch(ctx, &domain.Notification{
			User:        ownerKey,
			Title:       "Your case received a new donation!",
			Message:     fmt.Sprintf("Someone donated %s %s to your case %q.", donation.Amount.StringFixed(2), donation.Currency, caseData.Title),
			Type:        domain.NotificationNewDonation,
			Channels:    []domain.NotificationChannel{domain.ChannelDashboard, domain.ChannelPush, domain.ChannelEmail},
			ReferenceID: caseData.ID,
			Link:        "/casedetails/" + caseData.ID,
			Metadata: map[string]any{
				"caseId":         caseData.ID,
				"caseTitle":      caseData.Title,
				"category":       caseData.Category,
				"caseOwnerEmail": caseData.OwnerEmail,
				"donationId":     donation.ID,
				"amount":         donation.Amount,
				"currency":       donation.Currency,
				"donorInfo":      ownerDonor,
				"isAnonymous":    plainDonor.Anonymous,
				"locale":         locale,
			},
		})
		ownerNotified = true
	}

	if funded && caseData.OwnerEmail != "" {
		s.dispatch(ctx, &domain.Notification{
			User:        ownerKey,
			Title:       "Your case is fully funded!",
			Message:     fmt.Sprintf("Congratulations, funding for your case %q is complete.", caseData.Title),
			Type:        domain.NotificationCaseCompleted,
			Channels:    []domain.NotificationChannel{domain.ChannelDashboard, domain.ChannelPush, domain.ChannelEmail},
			ReferenceID: caseData.ID,
			Link:        "/casedetails/" + caseData.ID,
			Metadata: map[string]any{
				"caseId":         caseData.ID,
				"caseTitle":      caseData.Title,
				"caseOwnerEmail": caseData.OwnerEmail,
				"donationId":     donation.ID,
				"amount":         donation.Amount,
				"locale":         locale,
			},
		})
	}

	return ownerNotified
}

func (s *DonationService) dispatch(ctx context.Context, n *domain.Notification) {
	if err := s.notifier.CreateNotification(ctx, n); err != nil {
		s.logger.Error().
			Err(err).
			Str("type", string(n.Type)).
			Str("recipient", n.User).
			Msg("notification dispatch failed")
	}
}

func donorSnapshot(d domain.DonorInfo) map[string]string {
	return map[string]string{
		"name":   d.Name,
		"email":  d.Email,
		"phone":  d.Phone,
		"idcard": d.IDCardNumber,
	}
}

// ListDonations returns every ledger entry; admin only.
func (s *DonationService) ListDonations(ctx context.Context, identity domain.Identity) ([]domain.Donation, error) {
	if identity.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return s.donations.ListRecent(ctx)
}

// ListByCase returns donations for one case. A needy account may only
// see donations to its own case; other authenticated roles pass through
// (authorization beyond that is enforced upstream).
func (s *DonationService) ListByCase(ctx context.Context, identity domain.Identity, caseID string) ([]domain.Donation, error) {
	caseData, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if identity.Role == domain.RoleNeedy && caseData.OwnerID != identity.ID {
		return nil, domain.ErrForbidden
	}
	return s.donations.ListByCase(ctx, caseID)
}

// ListByUser returns one account's donations plus count and total;
// restricted to the account itself or an admin.
func (s *DonationService) ListByUser(ctx context.Context, identity domain.Identity, userID string) (*UserDonations, error) {
	if identity.Role != domain.RoleAdmin && identity.ID != userID {
		return nil, domain.ErrForbidden
	}

	items, err := s.donations.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, d := range items {
		total = total.Add(d.Amount)
	}
	return &UserDonations{
		UserID:         userID,
		DonationsCount: len(items),
		TotalAmount:    total,
		Donations:      items,
	}, nil
}
