package notification

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies the event a notification announces.
type Type string

const (
	TypeAppointment Type = "appointment"
	TypeVideo       Type = "video"
	TypeLike        Type = "like"
	TypeComment     Type = "comment"
	TypeMessage     Type = "message"
)

var validTypes = map[Type]bool{
	TypeAppointment: true, TypeVideo: true, TypeLike: true,
	TypeComment: true, TypeMessage: true,
}

// Valid reports whether t is a known notification type.
func (t Type) Valid() bool { return validTypes[t] }

// Notification maps to the notifications table. The read flag is mutated only
// by the recipient's client; the emitter never touches it.
type Notification struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        uuid.UUID  `db:"user_id" json:"user_id"`
	FromUserID    uuid.UUID  `db:"from_user_id" json:"from_user_id"`
	Type          Type       `db:"type" json:"type"`
	PostID        *uuid.UUID `db:"post_id" json:"post_id,omitempty"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	Message       string     `db:"message" json:"message"`
	Read          bool       `db:"read" json:"read"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}
