package notify

import (
	"context"
	"errors"

	"github.com/wolfman30/truck-repair-platform/pkg/logging"
)

// ErrSMSNotConfigured is returned for every SMS attempt. Texting customers is
// disabled until the shop's carrier registration is approved.
var ErrSMSNotConfigured = errors.New("notify: sms not configured")

// SMSSender sends a text message.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// DisabledSMSSender fails closed on every call.
type DisabledSMSSender struct {
	logger *logging.Logger
}

// NewDisabledSMSSender creates the SMS sender used in every environment.
func NewDisabledSMSSender(logger *logging.Logger) *DisabledSMSSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &DisabledSMSSender{logger: logger}
}

// SendSMS never sends; it logs a preview and returns ErrSMSNotConfigured.
func (s *DisabledSMSSender) SendSMS(ctx context.Context, to, body string) error {
	s.logger.Debug("sms disabled, skipping", "to", to, "body_preview", truncate(body, 50))
	return ErrSMSNotConfigured
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var _ SMSSender = (*DisabledSMSSender)(nil)
