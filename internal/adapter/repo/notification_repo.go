package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/givehope/platform/internal/domain"
)

// NotificationRepositoryPG implements NotificationRepository using PostgreSQL.
type NotificationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new notification repo.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepositoryPG {
	return &NotificationRepositoryPG{pool: pool}
}

// Create inserts a notification request for later delivery.
func (r *NotificationRepositoryPG) Create(ctx context.Context, n *domain.Notification) error {
	channels := make([]string, 0, len(n.Channels))
	for _, ch := range n.Channels {
		channels = append(channels, string(ch))
	}

	metadata, err := json.Marshal(n.Metadata)
	if err != nil {
		return fmt.Errorf("marshal notification metadata: %w", err)
	}
	delivery, err := json.Marshal(n.Delivery)
	if err != nil {
		return fmt.Errorf("marshal delivery status: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
INSERT INTO notifications (
	id, recipient, title, message, type, channels, reference_id, link,
	metadata, delivery_status, is_read, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
`,
		n.ID, n.User, n.Title, n.Message, n.Type, channels, n.ReferenceID, n.Link,
		metadata, delivery, n.IsRead, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
