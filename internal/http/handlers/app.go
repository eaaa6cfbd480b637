package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/givehope/platform/internal/domain"
	"github.com/givehope/platform/internal/exchange"
	"github.com/givehope/platform/internal/service"
)

// DonationAPI is the surface the handlers need from the donation service.
type DonationAPI interface {
	CreateDonation(ctx context.Context, identity domain.Identity, req service.DonationRequest) (*service.DonationResult, error)
	ListDonations(ctx context.Context, identity domain.Identity) ([]domain.Donation, error)
	ListByCase(ctx context.Context, identity domain.Identity, caseID string) ([]domain.Donation, error)
	ListByUser(ctx context.Context, identity domain.Identity, userID string) (*service.UserDonations, error)
}

// App bundles handler dependencies.
type App struct {
	Donations DonationAPI
	Logger    zerolog.Logger
}

// NewApp creates the handler container.
func NewApp(donations DonationAPI, logger zerolog.Logger) *App {
	return &App{Donations: donations, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps pipeline errors onto the response envelope
// {message, code?, details?} plus endpoint-specific extras.
func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *domain.RequestError
	if errors.As(err, &reqErr) {
		body := map[string]any{"message": reqErr.Message}
		if reqErr.Code != "" {
			body["code"] = reqErr.Code
		}
		if reqErr.Details != nil {
			body["details"] = reqErr.Details
		}
		a.json(w, http.StatusBadRequest, body)
		return
	}

	var overErr *domain.OverfundingError
	if errors.As(err, &overErr) {
		a.json(w, http.StatusBadRequest, map[string]any{
			"message":         overErr.Error(),
			"maxAllowed":      overErr.MaxAllowed,
			"remainingAmount": overErr.Remaining,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrCaseCompleted):
		a.json(w, http.StatusBadRequest, map[string]any{
			"message": "this case has already been fully funded thanks to its donors",
			"status":  "completed",
		})
	case errors.Is(err, domain.ErrCaseNotApproved):
		a.json(w, http.StatusNotFound, map[string]any{"message": "case not found or not approved"})
	case errors.Is(err, domain.ErrNotFound):
		a.json(w, http.StatusNotFound, map[string]any{"message": "not found"})
	case errors.Is(err, domain.ErrForbidden):
		a.json(w, http.StatusForbidden, map[string]any{"message": "you are not allowed to access this resource"})
	case errors.Is(err, exchange.ErrRateUnavailable):
		a.json(w, http.StatusServiceUnavailable, map[string]any{
			"message": "exchange rate lookup failed, please try again later",
		})
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		a.json(w, http.StatusInternalServerError, map[string]any{"message": "internal error"})
	}
}
