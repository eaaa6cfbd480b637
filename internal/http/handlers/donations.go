package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/givehope/platform/internal/domain"
	"github.com/givehope/platform/internal/middleware"
	"github.com/givehope/platform/internal/service"
)

type donorInfoPayload struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	IDCard string `json:"idcard"`
}

type donationPayload struct {
	CaseID        string           `json:"caseId"`
	Amount        decimal.Decimal  `json:"amount"`
	Currency      string           `json:"currency"`
	DonorInfo     donorInfoPayload `json:"donorInfo"`
	PaymentMethod string           `json:"paymentMethod"`
	TransactionID string           `json:"transactionId"`
	Anonymous     bool             `json:"anonymous"`
	Author        string           `json:"author"`
	AuthorName    string           `json:"authorName"`
}

type donationView struct {
	ID        string          `json:"id"`
	CaseID    string          `json:"caseId"`
	CaseTitle string          `json:"caseTitle,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Anonymous bool            `json:"anonymous"`
	CreatedAt time.Time       `json:"createdAt"`
}

// DonationsCreate handles POST /api/donations for users and guests.
func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	var payload donationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.json(w, http.StatusBadRequest, map[string]any{"message": "invalid donation payload"})
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	result, err := a.Donations.CreateDonation(r.Context(), identity, service.DonationRequest{
		CaseID:   payload.CaseID,
		Amount:   payload.Amount,
		Currency: payload.Currency,
		Donor: domain.DonorInfo{
			Name:         payload.DonorInfo.Name,
			Email:        payload.DonorInfo.Email,
			Phone:        payload.DonorInfo.Phone,
			IDCardNumber: payload.DonorInfo.IDCard,
		},
		PaymentMethod: domain.PaymentMethod(payload.PaymentMethod),
		TransactionID: payload.TransactionID,
		Anonymous:     payload.Anonymous,
		AuthorID:      payload.Author,
		AuthorName:    payload.AuthorName,
		Locale:        middleware.LocaleFromContext(r.Context()),
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.json(w, http.StatusCreated, map[string]any{
		"message": "donation recorded successfully",
		"donation": donationView{
			ID:        result.Donation.ID,
			CaseID:    result.Donation.CaseID,
			Amount:    result.Donation.Amount,
			Currency:  result.Donation.Currency,
			Anonymous: result.Donation.Donor.Anonymous,
			CreatedAt: result.Donation.CreatedAt,
		},
		"convertedAmount":   result.ConvertedAmount,
		"receiptEmail":      result.ReceiptEmail,
		"caseOwnerNotified": result.CaseOwnerNotified,
		"caseFunded":        result.CaseFunded,
	})
}

// DonationsList handles GET /api/donations (admin).
func (a *App) DonationsList(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	items, err := a.Donations.ListDonations(r.Context(), identity)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"donations": donationViews(items)})
}

// DonationsByCase handles GET /api/donations/case/{caseId}.
func (a *App) DonationsByCase(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	caseID := chi.URLParam(r, "caseId")
	items, err := a.Donations.ListByCase(r.Context(), identity, caseID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"caseId": caseID, "donations": donationViews(items)})
}

// DonationsByUser handles GET /api/donations/user/{userId}.
func (a *App) DonationsByUser(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	userID := chi.URLParam(r, "userId")
	summary, err := a.Donations.ListByUser(r.Context(), identity, userID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"userId":         summary.UserID,
		"donationsCount": summary.DonationsCount,
		"totalAmount":    summary.TotalAmount,
		"donations":      donationViews(summary.Donations),
	})
}

// donationViews projects ledger entries for list responses. Donor PII is
// never included: the stored fields are ciphertext and stay that way.
func donationViews(items []domain.Donation) []donationView {
	views := make([]donationView, 0, len(items))
	for _, d := range items {
		views = append(views, donationView{
			ID:        d.ID,
			CaseID:    d.CaseID,
			CaseTitle: d.CaseTitle,
			Amount:    d.Amount,
			Currency:  d.Currency,
			Anonymous: d.Donor.Anonymous,
			CreatedAt: d.CreatedAt,
		})
	}
	return views
}
