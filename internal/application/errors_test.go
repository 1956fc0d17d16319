package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsError(t *testing.T) {
	assert.Nil(t, AsError(nil))

	wrapped := fmt.Errorf("outer: %w", conflictError(MsgEmailExists))
	e := AsError(wrapped)
	assert.Equal(t, KindConflict, e.Kind)
	assert.Equal(t, MsgEmailExists, e.Message)

	raw := errors.New("boom")
	e = AsError(raw)
	assert.Equal(t, KindInternal, e.Kind)
	assert.Equal(t, MsgInternal, e.Message)
	assert.ErrorIs(t, e, raw)
}

func TestError_String(t *testing.T) {
	assert.Equal(t, "auth: Invalid credentials", authError(ReasonInvalidCredentials, MsgInvalidCredentials).Error())
	assert.Equal(t, "dependency: Failed to send verification email: smtp",
		dependencyError(MsgEmailSendFailed, errors.New("smtp")).Error())
}
