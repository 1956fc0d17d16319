package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shubhamprakash681/truefeed/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write collides with a unique index.
	ErrDuplicate = errors.New("duplicate")
	// ErrVerifiedConflict is returned by UpsertUnverified when the email belongs to a verified account.
	ErrVerifiedConflict = errors.New("email belongs to a verified account")
)

// PendingSignup carries everything written for an account awaiting verification.
type PendingSignup struct {
	Username               string
	Email                  string
	PasswordHash           string
	VerificationCode       string
	VerificationCodeExpiry time.Time
}

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// GetByID returns ErrNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByUsername prefers the verified holder of username, then the most recently updated record.
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	// ListByUsername returns every record holding username in GetByUsername's preference order.
	ListByUsername(ctx context.Context, username string) ([]*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByIdentifier matches username OR email.
	GetByIdentifier(ctx context.Context, identifier string) (*entity.User, error)
	ExistsVerifiedUsername(ctx context.Context, username string) (bool, error)

	// UpsertUnverified inserts a new record or refreshes the password and code of the unverified record
	// holding the same email in a single statement; that record keeps its username.
	// It returns ErrVerifiedConflict if that email is already verified.
	UpsertUnverified(ctx context.Context, p PendingSignup) (*entity.User, error)
	// MarkVerified returns ErrDuplicate if another verified account owns the username.
	MarkVerified(ctx context.Context, id string) error
	SetAcceptingMessage(ctx context.Context, id string, accept bool) (*entity.User, error)
}

// MessageRepository stores anonymous messages.
type MessageRepository interface {
	Create(ctx context.Context, m *entity.Message) error
	ListByUser(ctx context.Context, userID string) ([]entity.Message, error)
}
