package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shubhamprakash681/truefeed/internal/application"
	"github.com/shubhamprakash681/truefeed/pkg/helpers"
	"github.com/shubhamprakash681/truefeed/pkg/response"
	"github.com/shubhamprakash681/truefeed/pkg/validation"
)

// statusOverrides lets an endpoint map a kind differently from the default table.
type statusOverrides map[application.Kind]int

func statusFor(e *application.Error, overrides statusOverrides) int {
	if s, ok := overrides[e.Kind]; ok {
		return s
	}
	switch e.Kind {
	case application.KindValidation:
		return http.StatusBadRequest
	case application.KindNotFound:
		return http.StatusNotFound
	case application.KindConflict:
		return http.StatusConflict
	case application.KindForbidden:
		return http.StatusForbidden
	case application.KindAuth:
		switch e.Reason {
		case application.ReasonInvalidInput, application.ReasonInvalidOrExpired:
			return http.StatusBadRequest
		default:
			return http.StatusUnauthorized
		}
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as the JSON envelope. Server-side failures are logged
// with their cause; the client only sees the tagged message.
func writeError(c *gin.Context, logger *logrus.Logger, err error, overrides statusOverrides) {
	e := application.AsError(err)
	status := statusFor(e, overrides)
	if status >= http.StatusInternalServerError {
		helpers.LogError(logger, "request failed", err, logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		})
	}
	response.Error[any](c, status, e.Message, nil)
}

func badBody(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "Invalid request body", validation.ToDetails(err))
}
