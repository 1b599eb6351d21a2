package entity

import (
	"database/sql"
	"time"
)

// Account is the authenticable identity record. A pending password reset is
// represented by a valid ResetToken; when ResetTokenExpiresAt has passed the
// token is treated as absent even if the columns still hold values.
type Account struct {
	ID                  uint64
	Username            string
	Email               string
	PasswordHash        string
	ResetToken          sql.NullString
	ResetTokenExpiresAt sql.NullTime
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasPendingReset reports whether a reset token is set and still valid at now.
func (a *Account) HasPendingReset(now time.Time) bool {
	return a.ResetToken.Valid && a.ResetTokenExpiresAt.Valid && now.Before(a.ResetTokenExpiresAt.Time)
}

// Profile is the dependent profile row owned by an Account. It shares the
// account's id and never carries account credential columns.
type Profile struct {
	AccountID uint64
	FullName  string
	School    string
	UpdatedAt time.Time
}
