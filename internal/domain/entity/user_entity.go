package entity

import (
	"time"
)

// User is the aggregate root for the account domain
// Passwords are stored as bcrypt hashes in PasswordHash
//
// VerificationCode stays on the record after it has been used;
// IsUserVerified is the only thing that changes on success.
type User struct {
	ID                     string
	Username               string
	Email                  string
	PasswordHash           string `json:"-"`
	VerificationCode       string `json:"-"`
	VerificationCodeExpiry time.Time
	IsUserVerified         bool
	IsAcceptingMessage     bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// CodeExpired reports whether the verification code is no longer usable at now.
// The code is invalid from the expiry instant onward.
func (u *User) CodeExpired(now time.Time) bool {
	return !now.Before(u.VerificationCodeExpiry)
}
