package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shubhamprakash681/truefeed/internal/application"
	"github.com/shubhamprakash681/truefeed/pkg/response"
)

type UserHandler struct {
	Accounts AccountUseCase
	Logger   *logrus.Logger
}

func NewUserHandler(accounts AccountUseCase, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Accounts: accounts, Logger: logger}
}

// CheckUsernameUnique answers whether a username can still be claimed.
func (h *UserHandler) CheckUsernameUnique(c *gin.Context) {
	if err := h.Accounts.CheckUsername(c.Request.Context(), c.Query("username")); err != nil {
		writeError(c, h.Logger, err, statusOverrides{application.KindConflict: http.StatusBadRequest})
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Username is available", nil)
}
