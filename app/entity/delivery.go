package entity

import (
	"database/sql"
	"time"
)

// MessageKind selects the notification template used for a dispatch.
type MessageKind string

const (
	KindWelcome                  MessageKind = "welcome"
	KindPasswordResetRequested   MessageKind = "password_reset_requested"
	KindPasswordChanged          MessageKind = "password_changed"
	KindRegistrationConfirmation MessageKind = "registration_confirmation"
	KindActivityNotice           MessageKind = "activity_notice"
)

// KnownKinds lists every message kind the dispatcher can render.
func KnownKinds() []MessageKind {
	return []MessageKind{
		KindWelcome,
		KindPasswordResetRequested,
		KindPasswordChanged,
		KindRegistrationConfirmation,
		KindActivityNotice,
	}
}

// DeliveryRecord is one row of the delivery audit trail. Rows are append-only:
// nothing in this service updates or deletes them.
type DeliveryRecord struct {
	ID          uint64
	AccountID   uint64
	Kind        MessageKind
	Succeeded   bool
	ErrorDetail sql.NullString
	SentAt      time.Time
}
