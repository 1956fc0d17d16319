package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shubhamprakash681/truefeed/internal/domain/entity"
	"github.com/shubhamprakash681/truefeed/pkg/helpers"
	"github.com/shubhamprakash681/truefeed/pkg/response"
)

const (
	CtxPrincipalKey = "principal"
	CtxUserIDKey    = "userID"
)

// TokenDecoder is satisfied by helpers.SessionTokenManager.
type TokenDecoder interface {
	Decode(token string) (*entity.Principal, bool)
}

// Session decodes the session token, if any, and stores the principal in the Gin context.
// It never rejects a request.
func Session(dec TokenDecoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, ok := dec.Decode(helpers.SessionTokenFromRequest(c)); ok {
			c.Set(CtxPrincipalKey, p)
			c.Set(CtxUserIDKey, p.ID)
		}
		c.Next()
	}
}

// RequireSession rejects requests without a valid session with 401.
func RequireSession(dec TokenDecoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFrom(c); ok {
			c.Next()
			return
		}
		p, ok := dec.Decode(helpers.SessionTokenFromRequest(c))
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "Please login to access", nil)
			return
		}
		c.Set(CtxPrincipalKey, p)
		c.Set(CtxUserIDKey, p.ID)
		c.Next()
	}
}

func PrincipalFrom(c *gin.Context) (*entity.Principal, bool) {
	v, ok := c.Get(CtxPrincipalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*entity.Principal)
	return p, ok && p != nil
}
