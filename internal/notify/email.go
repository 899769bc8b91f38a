package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/truck-repair-platform/pkg/logging"
)

// ErrNoRecipient is returned by real providers when the message has no To address.
var ErrNoRecipient = errors.New("notify: email has no recipient")

// EmailSender delivers one lead email. Implementations make a single attempt.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is a rendered lead notification.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string
	HTML    string
}

// htmlOrText returns the HTML part, or the plain body when no HTML was rendered.
func (m EmailMessage) htmlOrText() string {
	if m.HTML != "" {
		return m.HTML
	}
	return m.Body
}

func (m EmailMessage) checkRecipient() error {
	if strings.TrimSpace(m.To) == "" {
		return ErrNoRecipient
	}
	return nil
}

const defaultFromName = "Truck Repair Leads"

// SendGridConfig carries the API key and sender identity.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// SendGridSender posts lead emails through the SendGrid v3 API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// NewSendGridSender returns nil when no API key is set, so callers can fall
// back to another provider.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.client == nil {
		return errors.New("notify: sendgrid client not configured")
	}
	if err := msg.checkRecipient(); err != nil {
		return err
	}
	ctx, span := tracer.Start(ctx, "notify.sendgrid.send")
	defer span.End()
	span.SetAttributes(attribute.String("email.to", msg.To))

	envelope := mail.NewSingleEmail(
		mail.NewEmail(s.fromName, s.fromEmail),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.Body,
		msg.htmlOrText(),
	)
	resp, err := s.client.SendWithContext(ctx, envelope)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("notify: sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		s.logger.Warn("sendgrid rejected lead email", "status", resp.StatusCode, "body", resp.Body)
		return fmt.Errorf("notify: sendgrid status %d", resp.StatusCode)
	}
	s.logger.Debug("lead email accepted by sendgrid", "to", msg.To, "status", resp.StatusCode)
	return nil
}

// StubEmailSender only logs. It is the development default.
type StubEmailSender struct {
	logger *logging.Logger
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.Info("lead email (stub, not sent)", "to", msg.To, "subject", msg.Subject)
	return nil
}

// NewEmailSender picks the sender for provider ("sendgrid", "ses" or anything else
// for the stub). A provider that is selected but not configured falls back to the stub.
func NewEmailSender(provider string, sendGrid *SendGridSender, ses *SESSender, logger *logging.Logger) EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	switch provider {
	case "sendgrid":
		if sendGrid != nil {
			return sendGrid
		}
	case "ses":
		if ses != nil {
			return ses
		}
	case "", "stub":
		return NewStubEmailSender(logger)
	}
	logger.Warn("email provider not configured, falling back to stub", "provider", provider)
	return NewStubEmailSender(logger)
}

var (
	_ EmailSender = (*SendGridSender)(nil)
	_ EmailSender = (*StubEmailSender)(nil)
)
