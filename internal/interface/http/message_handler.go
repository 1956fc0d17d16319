package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shubhamprakash681/truefeed/internal/application"
	"github.com/shubhamprakash681/truefeed/internal/domain/entity"
	"github.com/shubhamprakash681/truefeed/internal/interface/middleware"
	"github.com/shubhamprakash681/truefeed/pkg/response"
)

type MessageUseCase interface {
	AcceptStatus(ctx context.Context, userID string) (bool, error)
	SetAccept(ctx context.Context, userID string, accept bool) (*entity.User, error)
	Send(ctx context.Context, in application.SendMessageInput) error
	List(ctx context.Context, userID string) ([]entity.Message, error)
}

type MessageHandler struct {
	Messages MessageUseCase
	Logger   *logrus.Logger
}

func NewMessageHandler(messages MessageUseCase, logger *logrus.Logger) *MessageHandler {
	return &MessageHandler{Messages: messages, Logger: logger}
}

type acceptRequest struct {
	AcceptMessages *bool `json:"acceptMessages"`
}

func userID(c *gin.Context) string {
	if p, ok := middleware.PrincipalFrom(c); ok {
		return p.ID
	}
	return c.GetString(middleware.CtxUserIDKey)
}

func (h *MessageHandler) GetAccept(c *gin.Context) {
	accepting, err := h.Messages.AcceptStatus(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, h.Logger, err, nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"isAcceptingMessage": accepting}, "Accept messages status", nil)
}

func (h *MessageHandler) SetAccept(c *gin.Context) {
	var req acceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	if req.AcceptMessages == nil {
		response.Error[any](c, http.StatusBadRequest, "acceptMessages is required", nil)
		return
	}
	u, err := h.Messages.SetAccept(c.Request.Context(), userID(c), *req.AcceptMessages)
	if err != nil {
		writeError(c, h.Logger, err, nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"isAcceptingMessage": u.IsAcceptingMessage},
		"Message acceptance status updated successfully", nil)
}

// Send delivers an anonymous message; no session is required.
func (h *MessageHandler) Send(c *gin.Context) {
	var req application.SendMessageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	if err := h.Messages.Send(c.Request.Context(), req); err != nil {
		writeError(c, h.Logger, err, nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Message sent successfully", nil)
}

func (h *MessageHandler) List(c *gin.Context) {
	msgs, err := h.Messages.List(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, h.Logger, err, nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messages": msgs}, "Messages fetched", gin.H{"count": len(msgs)})
}
