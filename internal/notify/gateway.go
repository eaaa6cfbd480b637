package notify

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/givehope/platform/internal/domain"
)

// Gateway accepts structured notification requests. Delivery transport
// (push, email) is an external concern; the core only depends on this
// triggering contract.
type Gateway interface {
	CreateNotification(ctx context.Context, n *domain.Notification) error
}

// StoreGateway records notification requests through the repository
// layer, where the delivery worker picks them up.
type StoreGateway struct {
	repo   domain.NotificationRepository
	logger zerolog.Logger
}

// NewStoreGateway creates a repository-backed gateway.
func NewStoreGateway(repo domain.NotificationRepository, logger zerolog.Logger) *StoreGateway {
	return &StoreGateway{repo: repo, logger: logger}
}

// CreateNotification fills defaults and persists the request.
func (g *StoreGateway) CreateNotification(ctx context.Context, n *domain.Notification) error {
	if n.User == "" || n.Title == "" || n.Message == "" || n.Type == "" {
		return fmt.Errorf("notification is missing required fields")
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if len(n.Channels) == 0 {
		n.Channels = []domain.NotificationChannel{domain.ChannelDashboard}
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	if err := g.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}

	g.logger.Debug().
		Str("user", n.User).
		Str("type", string(n.Type)).
		Msg("notification recorded")
	return nil
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// RecipientKey maps whatever identity is known for a recipient onto a
// stable notification address. A non-blank account id wins; guests fall
// back to a sanitized email key so notifications stay addressable even
// for case owners without an account. Total over its inputs.
func RecipientKey(accountID, email string) string {
	if id := strings.TrimSpace(accountID); id != "" && id != "undefined" {
		return id
	}
	if e := strings.TrimSpace(email); e != "" {
		return "email_" + nonAlnum.ReplaceAllString(e, "_")
	}
	return "anonymous"
}
