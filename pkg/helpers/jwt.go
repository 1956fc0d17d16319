package helpers

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shubhamprakash681/truefeed/internal/domain/entity"
)

// SessionTokenManager signs and verifies stateless HS256 session tokens.
type SessionTokenManager struct {
	Secret []byte
	TTL    time.Duration
	now    func() time.Time
}

func NewSessionTokenManager(secret string, ttl time.Duration) *SessionTokenManager {
	return &SessionTokenManager{Secret: []byte(secret), TTL: ttl, now: time.Now}
}

type Claims struct {
	Username           string `json:"username"`
	IsUserVerified     bool   `json:"is_user_verified"`
	IsAcceptingMessage bool   `json:"is_accepting_message"`
	jwt.RegisteredClaims
}

// Encode issues a token for p and returns it with its expiry.
func (m *SessionTokenManager) Encode(p entity.Principal) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.TTL).Truncate(time.Second)
	claims := &Claims{
		Username:           p.Username,
		IsUserVerified:     p.IsUserVerified,
		IsAcceptingMessage: p.IsAcceptingMessage,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

// Decode returns the principal of a valid token. Any failure (bad signature,
// expiry, wrong algorithm, malformed input) reads as no session.
func (m *SessionTokenManager) Decode(tokenStr string) (*entity.Principal, bool) {
	if tokenStr == "" {
		return nil, false
	}
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, false
	}
	return &entity.Principal{
		ID:                 claims.Subject,
		Username:           claims.Username,
		IsUserVerified:     claims.IsUserVerified,
		IsAcceptingMessage: claims.IsAcceptingMessage,
	}, true
}
