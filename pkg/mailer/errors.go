package mailer

import (
	"errors"
	"net/http"

	mg "github.com/mailgun/mailgun-go/v4"
)

// IsPermanent reports whether a send failure will fail the same way on retry:
// Mailgun rejected the request itself (bad recipient, bad domain, bad key).
// Throttling, server errors and network failures are transient.
func IsPermanent(err error) bool {
	var ue *mg.UnexpectedResponseError
	if !errors.As(err, &ue) {
		return false
	}
	return ue.Actual >= http.StatusBadRequest && ue.Actual < http.StatusInternalServerError &&
		ue.Actual != http.StatusTooManyRequests && ue.Actual != http.StatusRequestTimeout
}
