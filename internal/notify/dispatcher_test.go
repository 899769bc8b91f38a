package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/truck-repair-platform/internal/leads"
)

type mockEmailSender struct {
	mu      sync.Mutex
	sent    []EmailMessage
	callErr error
	block   bool
	delay   time.Duration
}

func (m *mockEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.callErr
}

func (m *mockEmailSender) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type failingRepo struct {
	leads.Repository
}

func (failingRepo) Append(ctx context.Context, lead *leads.Lead) error {
	return errors.New("disk full")
}

type recordingMetrics struct {
	mu            sync.Mutex
	leadTypes     []string
	notifications map[string]bool
	latencies     int
}

func (r *recordingMetrics) ObserveLead(leadType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leadTypes = append(r.leadTypes, leadType)
}

func (r *recordingMetrics) ObserveNotification(channel string, delivered bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.notifications == nil {
		r.notifications = map[string]bool{}
	}
	r.notifications[channel] = delivered
}

func (r *recordingMetrics) ObserveDispatchLatency(seconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latencies++
}

func janeLead() *leads.Lead {
	return leads.NewLead(leads.TypeAppointment, leads.Form{
		Name: "Jane", Phone: "555-0100", TruckMake: "Volvo", Issue: "won't start", Urgency: leads.UrgencyUrgent,
	}, time.Now())
}

func testConfig() DispatcherConfig {
	return DispatcherConfig{NotificationEmail: "owner@shop.example", ShopName: "Big Rig Repair", ShopPhone: "555-0199"}
}

func TestDispatch_AppendsOnceAndEmailsOnce(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	email := &mockEmailSender{}
	metrics := &recordingMetrics{}
	d := NewDispatcher(repo, email, nil, testConfig(), metrics, nil)

	lead := janeLead()
	result, err := d.Dispatch(context.Background(), lead)
	require.NoError(t, err)

	stored, err := repo.List(context.Background(), leads.Filter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, leads.TypeAppointment, stored[0].Type)

	require.Equal(t, 1, email.count())
	assert.Equal(t, "owner@shop.example", email.sent[0].To)
	assert.Equal(t, "New appointment lead: Jane", email.sent[0].Subject)

	assert.Equal(t, lead.ID, result.LeadID)
	assert.True(t, result.Email.Delivered)
	assert.False(t, result.SMS.Delivered)
	assert.Equal(t, ErrSMSNotConfigured.Error(), result.SMS.Error)

	assert.Equal(t, []string{"appointment"}, metrics.leadTypes)
	assert.Equal(t, map[string]bool{"email": true, "sms": false}, metrics.notifications)
	assert.Equal(t, 1, metrics.latencies)
}

func TestDispatch_EmailFailureKeepsLead(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	email := &mockEmailSender{callErr: errors.New("sendgrid down")}
	d := NewDispatcher(repo, email, nil, testConfig(), nil, nil)

	result, err := d.Dispatch(context.Background(), janeLead())
	require.NoError(t, err)
	assert.False(t, result.Email.Delivered)
	assert.Equal(t, "sendgrid down", result.Email.Error)
	assert.Equal(t, 1, repo.Len())
	assert.Equal(t, 1, email.count(), "no retry")
}

func TestDispatch_AppendFailureSkipsDelivery(t *testing.T) {
	email := &mockEmailSender{}
	d := NewDispatcher(failingRepo{}, email, nil, testConfig(), nil, nil)

	_, err := d.Dispatch(context.Background(), janeLead())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 0, email.count())
}

func TestDispatch_NoNotificationAddressStillAttemptsOnce(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	email := &mockEmailSender{callErr: ErrNoRecipient}
	cfg := testConfig()
	cfg.NotificationEmail = ""
	d := NewDispatcher(repo, email, nil, cfg, nil, nil)

	result, err := d.Dispatch(context.Background(), janeLead())
	require.NoError(t, err)
	assert.Equal(t, 1, email.count())
	assert.False(t, result.Email.Delivered)
	assert.Equal(t, ErrNoRecipient.Error(), result.Email.Error)
	assert.Equal(t, 1, repo.Len())
}

func TestDispatch_EmailBoundedByTimeout(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	email := &mockEmailSender{block: true}
	cfg := testConfig()
	cfg.Timeout = 20 * time.Millisecond
	d := NewDispatcher(repo, email, nil, cfg, nil, nil)

	start := time.Now()
	result, err := d.Dispatch(context.Background(), janeLead())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.False(t, result.Email.Delivered)
	assert.Contains(t, result.Email.Error, context.DeadlineExceeded.Error())
}

func TestDispatch_DuplicatesCreateTwoLeads(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	email := &mockEmailSender{}
	d := NewDispatcher(repo, email, nil, testConfig(), nil, nil)

	_, err := d.Dispatch(context.Background(), janeLead())
	require.NoError(t, err)
	_, err = d.Dispatch(context.Background(), janeLead())
	require.NoError(t, err)

	assert.Equal(t, 2, repo.Len())
	assert.Equal(t, 2, email.count())
}

func TestDispatch_EmailSurvivesCallerCancel(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	email := &mockEmailSender{delay: 200 * time.Millisecond}
	d := NewDispatcher(repo, email, nil, testConfig(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	defer cancel()

	result, err := d.Dispatch(ctx, janeLead())
	require.NoError(t, err)
	assert.True(t, result.Email.Delivered, "email error: %s", result.Email.Error)
	assert.Equal(t, 1, email.count())
	assert.Equal(t, 1, repo.Len())
}

func TestDisabledSMSSender(t *testing.T) {
	err := NewDisabledSMSSender(nil).SendSMS(context.Background(), "555-0199", "hello")
	assert.ErrorIs(t, err, ErrSMSNotConfigured)
	assert.Equal(t, "abc...", truncate("abcdef", 3))
	assert.Equal(t, "abc", truncate("abc", 3))
}
