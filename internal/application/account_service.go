package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/shubhamprakash681/truefeed/internal/domain/entity"
	repo "github.com/shubhamprakash681/truefeed/internal/domain/repository"
	"github.com/shubhamprakash681/truefeed/internal/metrics"
	"github.com/shubhamprakash681/truefeed/pkg/helpers"
	"github.com/shubhamprakash681/truefeed/pkg/mailer"
	"github.com/shubhamprakash681/truefeed/pkg/validation"
)

const verificationCodeLength = 6

// PasswordHasher is satisfied by helpers.BcryptHasher.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

type SignupInput struct {
	Username string `json:"username" validate:"required,min=2,max=20,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwd"`
}

type usernameInput struct {
	Username string `json:"username" validate:"required,min=2,max=20,username"`
}

// AccountService owns signup, email verification and username availability.
type AccountService struct {
	Repo    repo.UserRepository
	Hasher  PasswordHasher
	Mailer  mailer.Sender
	Metrics metrics.Recorder
	Logger  *logrus.Logger

	now     func() time.Time
	newCode func() (string, error)
}

func NewAccountService(users repo.UserRepository, hasher PasswordHasher, sender mailer.Sender, rec metrics.Recorder, logger *logrus.Logger) *AccountService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &AccountService{
		Repo:    users,
		Hasher:  hasher,
		Mailer:  sender,
		Metrics: rec,
		Logger:  logger,
		now:     time.Now,
		newCode: helpers.GenVerificationCode,
	}
}

// Signup creates or refreshes an unverified account and emails a fresh code.
// The record is written before the email is sent; a failed send is retried by signing up again.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*entity.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		s.Metrics.RecordSignup("invalid")
		return nil, validationError(validation.Message(err))
	}

	taken, err := s.Repo.ExistsVerifiedUsername(ctx, in.Username)
	if err != nil {
		return nil, s.signupFailed(err)
	}
	if taken {
		s.Metrics.RecordSignup("conflict")
		return nil, conflictError(MsgUsernameExists)
	}

	existing, err := s.Repo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil && existing.IsUserVerified:
		s.Metrics.RecordSignup("conflict")
		return nil, conflictError(MsgEmailExists)
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		return nil, s.signupFailed(err)
	}

	code, err := s.newCode()
	if err != nil {
		return nil, s.signupFailed(err)
	}
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, s.signupFailed(err)
	}
	expiry := s.now().Add(helpers.VerificationCodeTTL)

	u, err := s.Repo.UpsertUnverified(ctx, repo.PendingSignup{
		Username:               in.Username,
		Email:                  in.Email,
		PasswordHash:           hash,
		VerificationCode:       code,
		VerificationCodeExpiry: expiry,
	})
	if errors.Is(err, repo.ErrVerifiedConflict) || errors.Is(err, repo.ErrDuplicate) {
		// another request verified this email between the check and the write
		s.Metrics.RecordSignup("conflict")
		return nil, conflictError(MsgEmailExists)
	}
	if err != nil {
		return nil, s.signupFailed(err)
	}

	if err := s.Mailer.SendVerification(ctx, mailer.Verification{
		Username:  u.Username,
		Email:     u.Email,
		Code:      code,
		ExpiresAt: expiry,
	}); err != nil {
		s.Metrics.RecordSignup("email_failed")
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("verification email failed")
		return nil, dependencyError(MsgEmailSendFailed, err)
	}

	s.Metrics.RecordSignup("success")
	s.Logger.WithField("user_id", u.ID).Info("signup pending verification")
	return u, nil
}

func (s *AccountService) signupFailed(err error) error {
	s.Metrics.RecordSignup("error")
	s.Logger.WithError(err).Error("signup failed")
	return internalError(err)
}

// Verify marks the account as verified when code matches and has not expired.
// Mismatch and expiry are indistinguishable. Pending signups may share a username,
// so the code is checked against every record holding it.
func (s *AccountService) Verify(ctx context.Context, username, code string) error {
	username = strings.TrimSpace(username)
	code = strings.TrimSpace(code)
	if utf8.RuneCountInString(code) != verificationCodeLength {
		s.Metrics.RecordVerify("invalid")
		return validationError(MsgCodeLength)
	}

	candidates, err := s.Repo.ListByUsername(ctx, username)
	if err != nil {
		return s.verifyFailed(err)
	}
	if len(candidates) == 0 {
		s.Metrics.RecordVerify("not_found")
		return notFoundError(MsgUserNotFound)
	}

	u := matchCode(candidates, code, s.now())
	if u == nil {
		s.Metrics.RecordVerify("invalid_or_expired")
		return authError(ReasonInvalidOrExpired, MsgCodeInvalid)
	}

	err = s.Repo.MarkVerified(ctx, u.ID)
	switch {
	case errors.Is(err, repo.ErrDuplicate):
		s.Metrics.RecordVerify("conflict")
		return conflictError(MsgUsernameExists)
	case errors.Is(err, repo.ErrNotFound):
		s.Metrics.RecordVerify("not_found")
		return notFoundError(MsgUserNotFound)
	case err != nil:
		return s.verifyFailed(err)
	}

	s.Metrics.RecordVerify("success")
	s.Logger.WithField("user_id", u.ID).Info("account verified")
	return nil
}

// matchCode returns the first candidate whose unexpired code equals code.
func matchCode(candidates []*entity.User, code string, now time.Time) *entity.User {
	var found *entity.User
	for _, u := range candidates {
		ok := subtle.ConstantTimeCompare([]byte(u.VerificationCode), []byte(code)) == 1
		if ok && !u.CodeExpired(now) && found == nil {
			found = u
		}
	}
	return found
}

func (s *AccountService) verifyFailed(err error) error {
	s.Metrics.RecordVerify("error")
	s.Logger.WithError(err).Error("verification failed")
	return internalError(err)
}

// CheckUsername reports a KindConflict error when a verified account already holds username.
func (s *AccountService) CheckUsername(ctx context.Context, username string) error {
	in := usernameInput{Username: strings.TrimSpace(username)}
	if err := validation.Struct(in); err != nil {
		return validationError(validation.Message(err))
	}
	taken, err := s.Repo.ExistsVerifiedUsername(ctx, in.Username)
	if err != nil {
		s.Logger.WithError(err).Error("username check failed")
		return internalError(err)
	}
	if taken {
		return conflictError(MsgUsernameTaken)
	}
	return nil
}
