// Package conversation holds the server side of the chat widget: session state,
// step transitions and lead submission.
package conversation

import (
	"time"

	"github.com/wolfman30/truck-repair-platform/internal/leads"
)

// Step is where a session is in the chat flow.
type Step string

const (
	StepGreeting        Step = "greeting"
	StepEmergencyForm   Step = "emergency_form"
	StepAppointmentForm Step = "appointment_form"
	StepQuoteForm       Step = "quote_form"
	StepCompleted       Step = "completed"
	// StepFAQ is reported in replies but never stored on a session.
	StepFAQ Step = "faq"
)

// IsForm reports whether the step is collecting a lead form.
func (s Step) IsForm() bool {
	return s == StepEmergencyForm || s == StepAppointmentForm || s == StepQuoteForm
}

// LeadType maps a form step to the lead type it produces.
func (s Step) LeadType() leads.Type {
	switch s {
	case StepEmergencyForm:
		return leads.TypeEmergency
	case StepAppointmentForm:
		return leads.TypeAppointment
	case StepQuoteForm:
		return leads.TypeQuote
	}
	return leads.TypeGeneral
}

// MessageType tells the widget how to render a message.
type MessageType string

const (
	MessageText          MessageType = "text"
	MessageOptions       MessageType = "options"
	MessageForm          MessageType = "form"
	MessageEmergencyForm MessageType = "emergency_form"
)

// Option is a quick-reply button id.
type Option string

const (
	OptionEmergency   Option = "emergency"
	OptionAppointment Option = "appointment"
	OptionQuote       Option = "quote"
	OptionFAQ         Option = "faq"
)

// QuickOption is a button offered with the greeting.
type QuickOption struct {
	ID    Option `json:"id"`
	Label string `json:"label"`
}

// QuickOptions are shown with every greeting.
var QuickOptions = []QuickOption{
	{ID: OptionEmergency, Label: "Emergency Roadside Help"},
	{ID: OptionAppointment, Label: "Schedule Service"},
	{ID: OptionQuote, Label: "Get a Free Quote"},
	{ID: OptionFAQ, Label: "FAQs"},
}

func optionLabel(o Option) (string, bool) {
	for _, q := range QuickOptions {
		if q.ID == o {
			return q.Label, true
		}
	}
	return "", false
}

// Message is one chat bubble.
type Message struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	IsBot     bool          `json:"isBot"`
	Timestamp time.Time     `json:"timestamp"`
	Type      MessageType   `json:"type"`
	Options   []QuickOption `json:"options,omitempty"`
}

// Session is the server-held state of one widget conversation.
type Session struct {
	ID        string    `json:"id"`
	Step      Step      `json:"currentStep"`
	Messages  []Message `json:"messages"`
	LeadIDs   []string  `json:"leadIds,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FormType returns the lead type the session's form would submit, if any.
func (s *Session) FormType() (leads.Type, bool) {
	if !s.Step.IsForm() {
		return "", false
	}
	return s.Step.LeadType(), true
}

const maxMessages = 200

func (s *Session) append(msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
	if over := len(s.Messages) - maxMessages; over > 0 {
		s.Messages = append([]Message(nil), s.Messages[over:]...)
	}
}
