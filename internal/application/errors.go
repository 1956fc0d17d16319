package application

import (
	"errors"
	"fmt"
)

// Kind classifies an application error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuth
	KindForbidden
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindDependency:
		return "dependency"
	default:
		return "internal"
	}
}

// AuthReason narrows a KindAuth error.
type AuthReason int

const (
	ReasonNone AuthReason = iota
	ReasonInvalidInput
	ReasonNotFound
	ReasonNotVerified
	ReasonInvalidCredentials
	ReasonInvalidOrExpired
)

// User-facing messages.
const (
	MsgUsernameExists     = "Username already exists"
	MsgEmailExists        = "Email already exists"
	MsgEmailSendFailed    = "Failed to send verification email"
	MsgCodeLength         = "Verification code must be of 6 digits"
	MsgUserNotFound       = "User not found"
	MsgCodeInvalid        = "Verification code is either Invalid or Expired! Please signup again to get a new code."
	MsgNotVerified        = "Please verify your account before login"
	MsgInvalidCredentials = "Invalid credentials"
	MsgCredentialsMissing = "Username/email and password are required"
	MsgUsernameTaken      = "Username already taken"
	MsgNotAccepting       = "User is not accepting messages"
	MsgInternal           = "Something went wrong, please try again later"
)

// Error is the tagged error returned by every service operation.
type Error struct {
	Kind    Kind
	Reason  AuthReason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func validationError(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

func notFoundError(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func conflictError(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

func forbiddenError(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

func authError(reason AuthReason, msg string) *Error {
	return &Error{Kind: KindAuth, Reason: reason, Message: msg}
}

func dependencyError(msg string, err error) *Error {
	return &Error{Kind: KindDependency, Message: msg, Err: err}
}

func internalError(err error) *Error {
	return &Error{Kind: KindInternal, Message: MsgInternal, Err: err}
}

// AsError extracts the *Error from err. Untagged errors are reported as internal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return internalError(err)
}
