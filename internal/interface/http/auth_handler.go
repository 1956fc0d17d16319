package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shubhamprakash681/truefeed/internal/application"
	"github.com/shubhamprakash681/truefeed/internal/domain/entity"
	"github.com/shubhamprakash681/truefeed/internal/interface/middleware"
	"github.com/shubhamprakash681/truefeed/pkg/helpers"
	"github.com/shubhamprakash681/truefeed/pkg/response"
)

type AccountUseCase interface {
	Signup(ctx context.Context, in application.SignupInput) (*entity.User, error)
	Verify(ctx context.Context, username, code string) error
	CheckUsername(ctx context.Context, username string) error
}

type LoginUseCase interface {
	Login(ctx context.Context, in application.LoginInput) (*application.Session, error)
}

type AuthHandler struct {
	Accounts AccountUseCase
	Auth     LoginUseCase
	Cookies  *helpers.Manager
	Logger   *logrus.Logger
}

func NewAuthHandler(accounts AccountUseCase, auth LoginUseCase, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Accounts: accounts, Auth: auth, Cookies: cookies, Logger: logger}
}

type verifyRequest struct {
	Username         string `json:"username"`
	VerificationCode string `json:"verificationCode"`
}

// Signup registers or refreshes an unverified account and emails a code.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req application.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	u, err := h.Accounts.Signup(c.Request.Context(), req)
	if err != nil {
		// duplicates are reported as bad requests on signup
		writeError(c, h.Logger, err, statusOverrides{application.KindConflict: http.StatusBadRequest})
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"username": u.Username, "email": u.Email},
		"User registered successfully. Please verify your email", nil)
}

func (h *AuthHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	if err := h.Accounts.Verify(c.Request.Context(), req.Username, req.VerificationCode); err != nil {
		writeError(c, h.Logger, err, statusOverrides{application.KindNotFound: http.StatusBadRequest})
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Account verification successful", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req application.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	sess, err := h.Auth.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.Logger, err, nil)
		return
	}
	h.Cookies.SetSession(c, sess.Token, sess.ExpiresAt)
	response.Success(c, http.StatusOK, gin.H{
		"user":     sess.Principal,
		"token":    sess.Token,
		"redirect": middleware.DashboardPath,
	}, "Login successful", gin.H{"expires_at": sess.ExpiresAt})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"redirect": middleware.LoginPath}, "Logged out", nil)
}

// Session returns the principal carried by the caller's token. Runs behind RequireSession.
func (h *AuthHandler) Session(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	response.Success(c, http.StatusOK, gin.H{"user": p}, "Session active", nil)
}
