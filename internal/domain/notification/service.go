package notification

import (
	"context"

	"github.com/google/uuid"
)

// Service exposes the recipient-facing notification operations.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the user's notifications newest first along with the total
// count for pagination.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// UnreadCount returns the number of unread notifications for the user.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// MarkRead marks a single notification as read.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id)
}

// MarkAllRead marks every unread notification for the user as read.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}
