package notification

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	// ListByUser returns the user's notifications newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	// MarkRead marks a single notification as read.
	MarkRead(ctx context.Context, id uuid.UUID) error
	// MarkAllRead marks every unread notification for the user as read.
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}
