package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Username string `json:"username" validate:"required,min=2,max=20,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwd"`
}

func TestStruct_Username(t *testing.T) {
	tests := []struct {
		username string
		ok       bool
	}{
		{"alice", true},
		{"john_doe", true},
		{"john-doe 2", true},
		{"a", false},
		{"abcdefghijklmnopqrstu", false},
		{"bad!name", false},
		{"_lead", false},
		{"double__sep", false},
		{"trail-", false},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			err := Struct(signupForm{Username: tt.username, Email: "a@x.com", Password: "secret1"})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	err := Struct(signupForm{Username: "a", Email: "nope", Password: "123"})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "must be at least 2 characters long", details["username"])
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be at least 6 characters long", details["password"])

	assert.Equal(t,
		"Email must be a valid email, Password must be at least 6 characters long, Username must be at least 2 characters long",
		Message(err))
}

func TestStruct_PasswordByteLimit(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     string
	}{
		{"at limit", strings.Repeat("p", MaxPasswordBytes), ""},
		{"over limit", strings.Repeat("p", MaxPasswordBytes+1), "Password must be at most 72 bytes long"},
		// 30 runes but 90 bytes
		{"multibyte over limit", strings.Repeat("€", 30), "Password must be at most 72 bytes long"},
		{"too short", "12345", "Password must be at least 6 characters long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(signupForm{Username: "alice", Email: "a@x.com", Password: tt.password})
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.want, Message(err))
		})
	}
}

func TestMessage_SpecialCharacters(t *testing.T) {
	err := Struct(signupForm{Username: "bad!name", Email: "a@x.com", Password: "secret1"})
	assert.Equal(t, "Username must not contain special characters", Message(err))
}

func TestToDetails_InvalidJSON(t *testing.T) {
	var v map[string]any
	err := json.Unmarshal([]byte("{"), &v)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
	assert.Nil(t, ToDetails(nil))
	assert.Equal(t, "", Message(nil))
}
