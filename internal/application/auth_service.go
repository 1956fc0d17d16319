package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shubhamprakash681/truefeed/internal/domain/entity"
	repo "github.com/shubhamprakash681/truefeed/internal/domain/repository"
	"github.com/shubhamprakash681/truefeed/internal/metrics"
)

// dummyPasswordHash is a well-formed cost-10 bcrypt hash that matches no password.
// Verifying against it costs the same as verifying a real account.
const dummyPasswordHash = "$2a$10$....................................................."

// TokenIssuer is satisfied by helpers.SessionTokenManager.
type TokenIssuer interface {
	Encode(p entity.Principal) (string, time.Time, error)
}

type LoginInput struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Session is the result of a successful login.
type Session struct {
	Principal entity.Principal
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	Repo    repo.UserRepository
	Hasher  PasswordHasher
	Tokens  TokenIssuer
	Metrics metrics.Recorder
	Logger  *logrus.Logger
}

func NewAuthService(users repo.UserRepository, hasher PasswordHasher, tokens TokenIssuer, rec metrics.Recorder, logger *logrus.Logger) *AuthService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &AuthService{Repo: users, Hasher: hasher, Tokens: tokens, Metrics: rec, Logger: logger}
}

// Authorize checks credentials. Unknown identifier and wrong password both read as
// "Invalid credentials"; only an unverified account gets a distinct message.
func (s *AuthService) Authorize(ctx context.Context, identifier, password string) (*entity.Principal, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || strings.TrimSpace(password) == "" {
		s.Metrics.RecordLogin("invalid_input")
		return nil, authError(ReasonInvalidInput, MsgCredentialsMissing)
	}

	u, err := s.Repo.GetByIdentifier(ctx, identifier)
	if errors.Is(err, repo.ErrNotFound) {
		s.Hasher.Verify(password, dummyPasswordHash)
		s.Metrics.RecordLogin("invalid_credentials")
		return nil, authError(ReasonNotFound, MsgInvalidCredentials)
	}
	if err != nil {
		s.Metrics.RecordLogin("error")
		s.Logger.WithError(err).Error("login lookup failed")
		return nil, internalError(err)
	}

	if !u.IsUserVerified {
		s.Hasher.Verify(password, dummyPasswordHash)
		s.Metrics.RecordLogin("not_verified")
		return nil, authError(ReasonNotVerified, MsgNotVerified)
	}
	if !s.Hasher.Verify(password, u.PasswordHash) {
		s.Metrics.RecordLogin("invalid_credentials")
		return nil, authError(ReasonInvalidCredentials, MsgInvalidCredentials)
	}

	p := u.Principal()
	return &p, nil
}

// Login authorizes and issues a session token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	p, err := s.Authorize(ctx, in.Identifier, in.Password)
	if err != nil {
		return nil, err
	}
	token, exp, err := s.Tokens.Encode(*p)
	if err != nil {
		s.Metrics.RecordLogin("error")
		s.Logger.WithError(err).WithField("user_id", p.ID).Error("issue session token failed")
		return nil, internalError(err)
	}
	s.Metrics.RecordLogin("success")
	s.Logger.WithField("user_id", p.ID).Info("user logged in")
	return &Session{Principal: *p, Token: token, ExpiresAt: exp}, nil
}
