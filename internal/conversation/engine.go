package conversation

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/truck-repair-platform/internal/chatbot"
	"github.com/wolfman30/truck-repair-platform/internal/leads"
	"github.com/wolfman30/truck-repair-platform/internal/notify"
	"github.com/wolfman30/truck-repair-platform/pkg/logging"
)

// LeadDispatcher records and forwards a submitted lead.
type LeadDispatcher interface {
	Dispatch(ctx context.Context, lead *leads.Lead) (notify.DispatchResult, error)
}

// MessageRecorder counts classified messages.
type MessageRecorder interface {
	ObserveMessage(category string)
}

// Reply is what an engine operation hands back to the transport.
type Reply struct {
	Session  *Session               `json:"session"`
	Messages []Message              `json:"messages"`
	Step     Step                   `json:"step"`
	Category chatbot.Category       `json:"category,omitempty"`
	ShowForm bool                   `json:"showForm"`
	FormType leads.Type             `json:"formType,omitempty"`
	Required []string               `json:"requiredFields,omitempty"`
	Dispatch *notify.DispatchResult `json:"dispatch,omitempty"`
}

// Config holds engine dependencies.
type Config struct {
	Store      SessionStore
	Selector   *chatbot.Selector
	FAQ        []chatbot.FAQ
	Dispatcher LeadDispatcher
	Metrics    MessageRecorder
	ShopPhone  string
	Logger     *logging.Logger
}

// Engine drives chat sessions through their steps.
type Engine struct {
	store      SessionStore
	selector   *chatbot.Selector
	faq        []chatbot.FAQ
	dispatcher LeadDispatcher
	metrics    MessageRecorder
	shopPhone  string
	logger     *logging.Logger
	now        func() time.Time
	locks      [64]sync.Mutex
}

// NewEngine creates an engine. Store and Dispatcher are required.
func NewEngine(cfg Config) *Engine {
	if cfg.Store == nil {
		panic("conversation: session store required")
	}
	if cfg.Dispatcher == nil {
		panic("conversation: lead dispatcher required")
	}
	if cfg.Selector == nil {
		cfg.Selector = chatbot.NewSelector(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Engine{
		store:      cfg.Store,
		selector:   cfg.Selector,
		faq:        cfg.FAQ,
		dispatcher: cfg.Dispatcher,
		metrics:    cfg.Metrics,
		shopPhone:  cfg.ShopPhone,
		logger:     cfg.Logger,
		now:        time.Now,
	}
}

// Start opens a session at the greeting step.
func (e *Engine) Start(ctx context.Context) (*Reply, error) {
	now := e.now().UTC()
	session := &Session{
		ID:        uuid.NewString(),
		Step:      StepGreeting,
		CreatedAt: now,
		UpdatedAt: now,
	}
	greeting := e.botMessage(e.selector.Select(chatbot.CategoryGreeting), MessageOptions)
	greeting.Options = QuickOptions
	session.append(greeting)

	if err := e.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return &Reply{Session: session, Messages: []Message{greeting}, Step: session.Step, Category: chatbot.CategoryGreeting}, nil
}

// Get loads a session.
func (e *Engine) Get(ctx context.Context, id string) (*Session, error) {
	return e.store.Get(ctx, id)
}

// SelectOption handles a quick-option button. Form options jump straight to
// their form without running the classifier.
func (e *Engine) SelectOption(ctx context.Context, id string, option Option) (*Reply, error) {
	label, ok := optionLabel(option)
	if !ok {
		return nil, ErrUnknownOption
	}
	if option == OptionFAQ {
		return e.FAQ(ctx, id)
	}

	return e.update(ctx, id, func(s *Session) (*Reply, error) {
		if s.Step == StepCompleted {
			return nil, ErrCompleted
		}
		user := e.userMessage(label)

		var (
			step     Step
			category chatbot.Category
			msgType  = MessageForm
		)
		switch option {
		case OptionEmergency:
			step, category, msgType = StepEmergencyForm, chatbot.CategoryEmergency, MessageEmergencyForm
		case OptionAppointment:
			step, category = StepAppointmentForm, chatbot.CategoryAppointment
		case OptionQuote:
			step, category = StepQuoteForm, chatbot.CategoryQuote
		}
		s.Step = step
		bot := e.botMessage(e.selector.Select(category), msgType)
		s.append(user, bot)
		return e.formReply(s, category, user, bot), nil
	})
}

// SendText handles free text. An emergency keyword moves the session to the
// emergency form from any step. Other form-worthy categories open the generic
// appointment form from the greeting; quote keywords included.
func (e *Engine) SendText(ctx context.Context, id, text string) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	return e.update(ctx, id, func(s *Session) (*Reply, error) {
		if s.Step == StepCompleted {
			return nil, ErrCompleted
		}
		user := e.userMessage(text)
		category := chatbot.Classify(text)
		if e.metrics != nil {
			e.metrics.ObserveMessage(string(category))
		}

		msgType := MessageText
		switch {
		case category == chatbot.CategoryEmergency:
			s.Step = StepEmergencyForm
			msgType = MessageEmergencyForm
		case category.NeedsForm():
			if s.Step == StepGreeting {
				s.Step = StepAppointmentForm
			}
			msgType = MessageForm
		}

		bot := e.botMessage(e.selector.Select(category), msgType)
		s.append(user, bot)
		if s.Step.IsForm() && msgType != MessageText {
			return e.formReply(s, category, user, bot), nil
		}
		return &Reply{Session: s, Messages: []Message{user, bot}, Step: s.Step, Category: category}, nil
	})
}

// SubmitLead validates the form for the session's current form step and, if
// complete, dispatches it and completes the session. An incomplete form is
// rejected with a *leads.ValidationError and nothing is dispatched.
func (e *Engine) SubmitLead(ctx context.Context, id string, form leads.Form) (*Reply, error) {
	return e.update(ctx, id, func(s *Session) (*Reply, error) {
		if s.Step == StepCompleted {
			return nil, ErrCompleted
		}
		leadType := s.Step.LeadType()
		if err := form.Validate(leadType); err != nil {
			return nil, err
		}

		lead := leads.NewLead(leadType, form, e.now())
		result, err := e.dispatcher.Dispatch(ctx, lead)
		if err != nil {
			e.logger.Error("lead dispatch failed", "session_id", s.ID, "lead_id", lead.ID, "error", err)
			return nil, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
		}

		s.Step = StepCompleted
		s.LeadIDs = append(s.LeadIDs, lead.ID)
		bot := e.botMessage(e.confirmation(leadType), MessageText)
		s.append(bot)

		e.logger.Info("chat lead submitted", "session_id", s.ID, "lead_id", lead.ID, "type", leadType)
		return &Reply{
			Session:  s,
			Messages: []Message{bot},
			Step:     s.Step,
			FormType: leadType,
			Dispatch: &result,
		}, nil
	})
}

// FAQ appends every FAQ pair as a bot message. The step is left alone.
func (e *Engine) FAQ(ctx context.Context, id string) (*Reply, error) {
	return e.update(ctx, id, func(s *Session) (*Reply, error) {
		bot := e.botMessage(chatbot.FormatFAQ(e.faq), MessageText)
		s.append(bot)
		return &Reply{Session: s, Messages: []Message{bot}, Step: StepFAQ}, nil
	})
}

// update runs fn on a loaded session under the session's lock and saves the
// result when fn succeeds.
func (e *Engine) update(ctx context.Context, id string, fn func(*Session) (*Reply, error)) (*Reply, error) {
	mu := e.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	session, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	reply, err := fn(session)
	if err != nil {
		return nil, err
	}
	session.UpdatedAt = e.now().UTC()
	// fn may already have dispatched a lead; persist even if the caller has gone.
	if err := e.store.Save(context.WithoutCancel(ctx), session); err != nil {
		return nil, err
	}
	return reply, nil
}

func (e *Engine) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &e.locks[h.Sum32()%uint32(len(e.locks))]
}

func (e *Engine) formReply(s *Session, category chatbot.Category, msgs ...Message) *Reply {
	formType, _ := s.FormType()
	return &Reply{
		Session:  s,
		Messages: msgs,
		Step:     s.Step,
		Category: category,
		ShowForm: true,
		FormType: formType,
		Required: leads.RequiredFields(formType),
	}
}

func (e *Engine) confirmation(t leads.Type) string {
	phone := e.shopPhone
	if phone == "" {
		phone = "our main line"
	}
	if t == leads.TypeEmergency {
		return fmt.Sprintf("Help is on the way. A dispatcher will call you within minutes. If you don't hear from us, call %s.", phone)
	}
	return fmt.Sprintf("Thanks! We've received your request and will contact you shortly. Questions in the meantime? Call %s.", phone)
}

func (e *Engine) botMessage(text string, t MessageType) Message {
	return Message{ID: uuid.NewString(), Text: text, IsBot: true, Timestamp: e.now().UTC(), Type: t}
}

func (e *Engine) userMessage(text string) Message {
	return Message{ID: uuid.NewString(), Text: text, Timestamp: e.now().UTC(), Type: MessageText}
}
