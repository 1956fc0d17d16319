package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shubhamprakash681/truefeed/internal/application"
	"github.com/shubhamprakash681/truefeed/internal/domain/entity"
	"github.com/shubhamprakash681/truefeed/internal/domain/repository/repotest"
	"github.com/shubhamprakash681/truefeed/internal/interface/middleware"
	"github.com/shubhamprakash681/truefeed/pkg/helpers"
	"github.com/shubhamprakash681/truefeed/pkg/mailer"
)

type mockSender struct{ mock.Mock }

func (m *mockSender) SendVerification(ctx context.Context, v mailer.Verification) error {
	return m.Called(ctx, v).Error(0)
}

type envelope struct {
	Status  int            `json:"status"`
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

type testServer struct {
	engine *gin.Engine
	users  *repotest.Users
	msgs   *repotest.Messages
	sender *mockSender
	tokens *helpers.SessionTokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := repotest.NewUsers()
	msgs := repotest.NewMessages()
	sender := &mockSender{}
	sender.On("SendVerification", mock.Anything, mock.Anything).Return(nil)
	tokens := helpers.NewSessionTokenManager("handler-secret", time.Hour)

	accounts := application.NewAccountService(users, helpers.BcryptHasher{}, sender, nil, logger)
	auth := application.NewAuthService(users, helpers.BcryptHasher{}, tokens, nil, logger)
	messages := application.NewMessageService(users, msgs, nil, logger)

	ah := NewAuthHandler(accounts, auth, helpers.NewCookie("", false), logger)
	uh := NewUserHandler(accounts, logger)
	mh := NewMessageHandler(messages, logger)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	api := r.Group("/api")
	api.GET("/healthcheck", Healthcheck)
	api.POST("/signup", ah.Signup)
	api.POST("/user/verify", ah.Verify)
	api.GET("/user/check-username-unique", uh.CheckUsernameUnique)
	api.POST("/auth/login", ah.Login)
	api.POST("/auth/logout", ah.Logout)
	api.POST("/messages/send", mh.Send)

	authed := api.Group("", middleware.RequireSession(tokens))
	authed.GET("/auth/session", ah.Session)
	authed.GET("/messages/accept", mh.GetAccept)
	authed.POST("/messages/accept", mh.SetAccept)
	authed.GET("/messages", mh.List)

	return &testServer{engine: r, users: users, msgs: msgs, sender: sender, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookie *http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *testServer) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, s.sender.Calls)
	return s.sender.Calls[len(s.sender.Calls)-1].Arguments.Get(1).(mailer.Verification).Code
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == helpers.SessionCookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestFullAccountFlow(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/signup", gin.H{"username": "alice", "email": "a@x.com", "password": "secret1"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)
	assert.Equal(t, "User registered successfully. Please verify your email", env.Message)

	w, env = s.do(t, http.MethodPost, "/api/auth/login", gin.H{"identifier": "alice", "password": "secret1"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, application.MsgNotVerified, env.Message)

	w, env = s.do(t, http.MethodPost, "/api/user/verify", gin.H{"username": "alice", "verificationCode": "000000"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, application.MsgCodeInvalid, env.Message)

	w, env = s.do(t, http.MethodPost, "/api/user/verify", gin.H{"username": "alice", "verificationCode": s.lastCode(t)}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Account verification successful", env.Message)

	w, env = s.do(t, http.MethodPost, "/api/auth/login", gin.H{"identifier": "alice", "password": "wrong!!"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, application.MsgInvalidCredentials, env.Message)

	w, env = s.do(t, http.MethodPost, "/api/auth/login", gin.H{"identifier": "ghost", "password": "secret1"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, application.MsgInvalidCredentials, env.Message)

	w, env = s.do(t, http.MethodPost, "/api/auth/login", gin.H{"identifier": "a@x.com", "password": "secret1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/dashboard", env.Data["redirect"])
	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)

	w, env = s.do(t, http.MethodGet, "/api/auth/session", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	user := env.Data["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	_, leaked := user["passwordHash"]
	assert.False(t, leaked)

	w, _ = s.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, -1, sessionCookie(t, w).MaxAge)
}

func TestSignupErrors(t *testing.T) {
	s := newTestServer(t)
	s.users.Put(entity.User{Username: "taken", Email: "t@x.com", IsUserVerified: true})

	tests := []struct {
		name string
		body any
		code int
		msg  string
	}{
		{"bad json", "{", http.StatusBadRequest, "Invalid request body"},
		{"validation", gin.H{"username": "a", "email": "a@x.com", "password": "secret1"}, http.StatusBadRequest, "Username must be at least 2 characters long"},
		{"username exists", gin.H{"username": "taken", "email": "new@x.com", "password": "secret1"}, http.StatusBadRequest, application.MsgUsernameExists},
		{"password too long", gin.H{"username": "fresh", "email": "f@x.com", "password": strings.Repeat("p", 80)}, http.StatusBadRequest, "Password must be at most 72 bytes long"},
		{"email exists", gin.H{"username": "fresh", "email": "t@x.com", "password": "secret1"}, http.StatusBadRequest, application.MsgEmailExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := s.do(t, http.MethodPost, "/api/signup", tt.body, nil)
			assert.Equal(t, tt.code, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.msg, env.Message)
		})
	}
}

func TestSignup_EmailFailureIs500(t *testing.T) {
	s := newTestServer(t)
	s.sender.ExpectedCalls = nil
	s.sender.On("SendVerification", mock.Anything, mock.Anything).Return(assert.AnError)

	w, env := s.do(t, http.MethodPost, "/api/signup", gin.H{"username": "alice", "email": "a@x.com", "password": "secret1"}, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, application.MsgEmailSendFailed, env.Message)
}

func TestVerifyErrors(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/user/verify", gin.H{"username": "alice", "verificationCode": "123"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, application.MsgCodeLength, env.Message)

	w, env = s.do(t, http.MethodPost, "/api/user/verify", gin.H{"username": "ghost", "verificationCode": "123456"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, application.MsgUserNotFound, env.Message)
}

func TestLogin_BlankInput(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodPost, "/api/auth/login", gin.H{"identifier": " ", "password": ""}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, application.MsgCredentialsMissing, env.Message)
}

func TestCheckUsernameUnique(t *testing.T) {
	s := newTestServer(t)
	s.users.Put(entity.User{Username: "taken", Email: "t@x.com", IsUserVerified: true})

	w, env := s.do(t, http.MethodGet, "/api/user/check-username-unique?username=free", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Username is available", env.Message)

	w, env = s.do(t, http.MethodGet, "/api/user/check-username-unique?username=taken", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, application.MsgUsernameTaken, env.Message)

	w, _ = s.do(t, http.MethodGet, "/api/user/check-username-unique?username=b@d", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMessageEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := s.users.Put(entity.User{Username: "alice", Email: "a@x.com", IsUserVerified: true, IsAcceptingMessage: true})
	tok, _, err := s.tokens.Encode(alice.Principal())
	require.NoError(t, err)
	cookie := &http.Cookie{Name: helpers.SessionCookieName, Value: tok}

	w, _ := s.do(t, http.MethodGet, "/api/messages", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := s.do(t, http.MethodPost, "/api/messages/send", gin.H{"username": "alice", "content": "you are doing great"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Message sent successfully", env.Message)

	w, env = s.do(t, http.MethodPost, "/api/messages/send", gin.H{"username": "ghost", "content": "you are doing great"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/messages", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, env.Data["messages"], 1)

	w, _ = s.do(t, http.MethodPost, "/api/messages/accept", gin.H{}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/messages/accept", gin.H{"acceptMessages": false}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, env.Data["isAcceptingMessage"])

	// the token still says accepting; the store wins
	w, env = s.do(t, http.MethodGet, "/api/messages/accept", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, env.Data["isAcceptingMessage"])

	w, env = s.do(t, http.MethodPost, "/api/messages/send", gin.H{"username": "alice", "content": "you are doing great"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, application.MsgNotAccepting, env.Message)
}

func TestInternalErrorsAreGeneric(t *testing.T) {
	s := newTestServer(t)
	s.users.Err = assert.AnError

	w, env := s.do(t, http.MethodPost, "/api/auth/login", gin.H{"identifier": "alice", "password": "secret1"}, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, application.MsgInternal, env.Message)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestHealthcheck(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodGet, "/api/healthcheck", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "API is working", env.Message)
}
