// Package notify forwards completed leads to the shop over email and SMS.
package notify

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/truck-repair-platform/internal/leads"
	"github.com/wolfman30/truck-repair-platform/pkg/logging"
)

var tracer = otel.Tracer("truckshop.internal.notify")

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Result describes one delivery attempt.
type Result struct {
	Channel   string `json:"channel"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

// DispatchResult holds the outcome per channel.
type DispatchResult struct {
	LeadID string `json:"leadId"`
	SMS    Result `json:"sms"`
	Email  Result `json:"email"`
}

// Recorder receives dispatch metrics.
type Recorder interface {
	ObserveLead(leadType string)
	ObserveNotification(channel string, delivered bool)
	ObserveDispatchLatency(seconds float64)
}

// DispatcherConfig configures where notifications go.
type DispatcherConfig struct {
	NotificationEmail string
	ShopName          string
	ShopPhone         string
	Timeout           time.Duration
}

// Dispatcher records a lead in the ledger and notifies the shop.
type Dispatcher struct {
	repo    leads.Repository
	email   EmailSender
	sms     SMSSender
	cfg     DispatcherConfig
	metrics Recorder
	logger  *logging.Logger
}

// NewDispatcher wires a dispatcher. Nil senders become the stub email sender and
// the disabled SMS sender.
func NewDispatcher(repo leads.Repository, email EmailSender, sms SMSSender, cfg DispatcherConfig, metrics Recorder, logger *logging.Logger) *Dispatcher {
	if repo == nil {
		panic("notify: lead repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if email == nil {
		email = NewStubEmailSender(logger)
	}
	if sms == nil {
		sms = NewDisabledSMSSender(logger)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Dispatcher{repo: repo, email: email, sms: sms, cfg: cfg, metrics: metrics, logger: logger}
}

// Dispatch appends lead to the ledger, then makes one SMS and one email attempt.
// Only a failed append is returned as an error. Delivery failures land in the
// result and the log; the ledger entry stays. There is no retry or backoff.
//
// The append honours ctx. The notification legs run on a context detached from
// ctx's cancellation and bounded by the configured timeout, so a visitor who
// closes the widget mid-send does not cancel the shop's email.
func (d *Dispatcher) Dispatch(ctx context.Context, lead *leads.Lead) (DispatchResult, error) {
	ctx, span := tracer.Start(ctx, "notify.dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("lead.id", lead.ID),
		attribute.String("lead.type", string(lead.Type)),
	)
	start := time.Now()
	defer func() {
		if d.metrics != nil {
			d.metrics.ObserveDispatchLatency(time.Since(start).Seconds())
		}
	}()

	result := DispatchResult{LeadID: lead.ID}
	if err := d.repo.Append(ctx, lead); err != nil {
		span.RecordError(err)
		return result, fmt.Errorf("notify: append lead: %w", err)
	}
	if d.metrics != nil {
		d.metrics.ObserveLead(string(lead.Type))
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.Timeout)
	defer cancel()
	result.SMS = d.sendSMS(notifyCtx, lead)
	result.Email = d.sendEmail(notifyCtx, lead)

	d.logger.Info("lead dispatched",
		"lead_id", lead.ID,
		"type", lead.Type,
		"email_delivered", result.Email.Delivered,
		"email_error", result.Email.Error,
		"sms_delivered", result.SMS.Delivered,
	)
	return result, nil
}

func (d *Dispatcher) sendSMS(ctx context.Context, lead *leads.Lead) Result {
	res := Result{Channel: ChannelSMS}
	body := fmt.Sprintf("New %s lead: %s (%s)", lead.Type, lead.Name, lead.Phone)
	if err := d.sms.SendSMS(ctx, d.cfg.ShopPhone, body); err != nil {
		res.Error = err.Error()
	} else {
		res.Delivered = true
	}
	d.observe(res)
	return res
}

func (d *Dispatcher) sendEmail(ctx context.Context, lead *leads.Lead) Result {
	res := Result{Channel: ChannelEmail}
	msg := LeadEmail(lead, d.cfg.ShopName)
	msg.To = d.cfg.NotificationEmail
	if msg.To == "" {
		d.logger.Warn("NOTIFICATION_EMAIL not set, provider will receive an empty recipient", "lead_id", lead.ID)
	}

	if err := d.email.Send(ctx, msg); err != nil {
		res.Error = err.Error()
		d.logger.Error("lead email failed", "lead_id", lead.ID, "error", err)
	} else {
		res.Delivered = true
	}
	d.observe(res)
	return res
}

func (d *Dispatcher) observe(res Result) {
	if d.metrics != nil {
		d.metrics.ObserveNotification(res.Channel, res.Delivered)
	}
}
