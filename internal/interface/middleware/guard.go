package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shubhamprakash681/truefeed/pkg/helpers"
)

const (
	DashboardPath = "/dashboard"
	LoginPath     = "/login"
)

var guestOnlyPrefixes = []string{"/login", "/signup", "/verify"}

// AccessGuard redirects page requests based on session state:
// signed-in users away from the guest pages, guests away from the dashboard.
// A token that fails to decode counts as no session.
func AccessGuard(dec TokenDecoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		_, signedIn := PrincipalFrom(c)
		if !signedIn {
			_, signedIn = dec.Decode(helpers.SessionTokenFromRequest(c))
		}

		switch {
		case signedIn && isGuestOnly(path):
			c.Redirect(http.StatusFound, DashboardPath)
			c.Abort()
		case !signedIn && strings.HasPrefix(path, DashboardPath):
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
		default:
			c.Next()
		}
	}
}

func isGuestOnly(path string) bool {
	if path == "/" {
		return true
	}
	for _, p := range guestOnlyPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
