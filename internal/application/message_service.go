package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/shubhamprakash681/truefeed/internal/domain/entity"
	repo "github.com/shubhamprakash681/truefeed/internal/domain/repository"
	"github.com/shubhamprakash681/truefeed/internal/metrics"
	"github.com/shubhamprakash681/truefeed/pkg/validation"
)

type SendMessageInput struct {
	Username string `json:"username" validate:"required"`
	Content  string `json:"content" validate:"required,min=10,max=300"`
}

// MessageService manages the anonymous inbox. Acceptance flags are always
// read from the store, not from the caller's session token.
type MessageService struct {
	Users    repo.UserRepository
	Messages repo.MessageRepository
	Metrics  metrics.Recorder
	Logger   *logrus.Logger
}

func NewMessageService(users repo.UserRepository, messages repo.MessageRepository, rec metrics.Recorder, logger *logrus.Logger) *MessageService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &MessageService{Users: users, Messages: messages, Metrics: rec, Logger: logger}
}

func (s *MessageService) AcceptStatus(ctx context.Context, userID string) (bool, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return false, s.lookupError(err, "accept status lookup failed")
	}
	return u.IsAcceptingMessage, nil
}

func (s *MessageService) SetAccept(ctx context.Context, userID string, accept bool) (*entity.User, error) {
	u, err := s.Users.SetAcceptingMessage(ctx, userID, accept)
	if err != nil {
		return nil, s.lookupError(err, "update accept status failed")
	}
	s.Logger.WithField("user_id", userID).WithField("accept", accept).Info("accept messages updated")
	return u, nil
}

// Send stores an anonymous message for a verified recipient who accepts messages.
func (s *MessageService) Send(ctx context.Context, in SendMessageInput) error {
	in.Username = strings.TrimSpace(in.Username)
	if err := validation.Struct(in); err != nil {
		s.Metrics.RecordMessageSent("invalid")
		return validationError(validation.Message(err))
	}

	u, err := s.Users.GetByUsername(ctx, in.Username)
	if err == nil && !u.IsUserVerified {
		err = repo.ErrNotFound
	}
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.Metrics.RecordMessageSent("not_found")
		} else {
			s.Metrics.RecordMessageSent("error")
		}
		return s.lookupError(err, "recipient lookup failed")
	}
	if !u.IsAcceptingMessage {
		s.Metrics.RecordMessageSent("not_accepting")
		return forbiddenError(MsgNotAccepting)
	}

	if err := s.Messages.Create(ctx, &entity.Message{UserID: u.ID, Content: in.Content}); err != nil {
		s.Metrics.RecordMessageSent("error")
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("store message failed")
		return internalError(err)
	}
	s.Metrics.RecordMessageSent("success")
	return nil
}

// List returns the inbox newest first.
func (s *MessageService) List(ctx context.Context, userID string) ([]entity.Message, error) {
	msgs, err := s.Messages.ListByUser(ctx, userID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Error("list messages failed")
		return nil, internalError(err)
	}
	return msgs, nil
}

func (s *MessageService) lookupError(err error, logMsg string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return notFoundError(MsgUserNotFound)
	}
	s.Logger.WithError(err).Error(logMsg)
	return internalError(err)
}
