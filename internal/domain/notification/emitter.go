package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wellbee/wellbee/internal/platform/websocket"
)

// Emitter creates notifications as a side effect of domain events. Emit is
// best effort: a failed insert or push must never fail the operation that
// triggered it, so errors are logged and swallowed here.
type Emitter struct {
	repo      Repository
	publisher websocket.EventPublisher
	logger    zerolog.Logger
}

// NewEmitter creates an Emitter. publisher may be nil when no real-time
// channel is wired.
func NewEmitter(repo Repository, publisher websocket.EventPublisher, logger zerolog.Logger) *Emitter {
	return &Emitter{repo: repo, publisher: publisher, logger: logger}
}

// Emit persists a notification for targetUserID and pushes it to any
// connected sessions. It never returns an error.
func (e *Emitter) Emit(ctx context.Context, targetUserID, fromUserID uuid.UUID, typ Type, message string, appointmentID *uuid.UUID) {
	n := &Notification{
		UserID:        targetUserID,
		FromUserID:    fromUserID,
		Type:          typ,
		AppointmentID: appointmentID,
		Message:       message,
	}

	if err := e.repo.Create(ctx, n); err != nil {
		e.logger.Error().Err(err).
			Str("user_id", targetUserID.String()).
			Str("type", string(typ)).
			Msg("notification create failed")
		return
	}

	if e.publisher == nil {
		return
	}

	data, err := json.Marshal(n)
	if err != nil {
		e.logger.Error().Err(err).Msg("notification encode failed")
		return
	}
	event := websocket.Event{
		Type:      "notification.created",
		Topic:     websocket.UserTopic(targetUserID.String()),
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Warn().Err(err).Msg("notification push failed")
	}
}
