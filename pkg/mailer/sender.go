package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shubhamprakash681/truefeed/config"
	mailtpl "github.com/shubhamprakash681/truefeed/pkg/mailer/templates"
)

// Verification is the content of a signup verification email.
type Verification struct {
	Username  string
	Email     string
	Code      string
	ExpiresAt time.Time
}

// Sender delivers verification emails. Implementations log the recipient only, never the code.
type Sender interface {
	SendVerification(ctx context.Context, v Verification) error
}

// Transport sends one rendered message. *Mailgun implements it.
type Transport interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Publisher puts a JSON body on a queue. *helpers.RabbitPublisher implements it.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

func verificationData(cfg *config.Config, v Verification) map[string]any {
	return mailtpl.NewVerifyEmailData(cfg, v.Username, v.Email, v.Code, mailtpl.WithExpiresAt(v.ExpiresAt))
}

// DirectSender renders and sends within the request.
type DirectSender struct {
	transport Transport
	cfg       *config.Config
	logger    *logrus.Logger
}

func NewDirectSender(t Transport, cfg *config.Config, logger *logrus.Logger) *DirectSender {
	return &DirectSender{transport: t, cfg: cfg, logger: logger}
}

func (s *DirectSender) SendVerification(ctx context.Context, v Verification) error {
	subject, text, html, err := mailtpl.Render(mailtpl.VerifyEmail, verificationData(s.cfg, v))
	if err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}
	if err := s.transport.Send(ctx, v.Email, subject, text, html); err != nil {
		s.logger.WithError(err).WithField("to", v.Email).Warn("verification email send failed")
		return fmt.Errorf("send verification email: %w", err)
	}
	s.logger.WithField("to", v.Email).Debug("verification email sent")
	return nil
}

// QueueSender hands the job to cmd/email_worker through RabbitMQ.
type QueueSender struct {
	pub    Publisher
	cfg    *config.Config
	logger *logrus.Logger
}

func NewQueueSender(pub Publisher, cfg *config.Config, logger *logrus.Logger) *QueueSender {
	return &QueueSender{pub: pub, cfg: cfg, logger: logger}
}

func (s *QueueSender) SendVerification(ctx context.Context, v Verification) error {
	job := EmailJob{
		To:       v.Email,
		Template: mailtpl.VerifyEmail,
		Data:     verificationData(s.cfg, v),
	}
	if err := s.pub.PublishJSON(ctx, job); err != nil {
		s.logger.WithError(err).WithField("to", v.Email).Warn("verification email enqueue failed")
		return fmt.Errorf("enqueue verification email: %w", err)
	}
	s.logger.WithField("to", v.Email).Debug("verification email queued")
	return nil
}

// LogSender is used when MAIL_SEND_ENABLED=false.
type LogSender struct {
	logger *logrus.Logger
}

func NewLogSender(logger *logrus.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendVerification(_ context.Context, v Verification) error {
	s.logger.WithField("to", v.Email).Info("mail sending disabled; verification email skipped")
	return nil
}

var (
	_ Sender = (*DirectSender)(nil)
	_ Sender = (*QueueSender)(nil)
	_ Sender = (*LogSender)(nil)
)
