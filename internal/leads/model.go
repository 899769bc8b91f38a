package leads

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type identifies which form produced a lead.
type Type string

const (
	TypeEmergency   Type = "emergency"
	TypeAppointment Type = "appointment"
	TypeQuote       Type = "quote"
	TypeGeneral     Type = "general"
)

// Urgency is the customer's stated urgency.
type Urgency string

const (
	UrgencyEmergency Urgency = "emergency"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyRoutine   Urgency = "routine"
)

// Status tracks admin follow-up.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusHelped    Status = "helped"
	StatusClosed    Status = "closed"
)

// SourceChatbot marks leads captured by the chat widget.
const SourceChatbot = "chatbot"

// Lead is a prospective customer's contact and service-need record.
type Lead struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email,omitempty"`
	TruckMake  string    `json:"truckMake,omitempty"`
	TruckModel string    `json:"truckModel,omitempty"`
	Issue      string    `json:"issue,omitempty"`
	Location   string    `json:"location,omitempty"`
	Urgency    Urgency   `json:"urgency,omitempty"`
	IsFleet    bool      `json:"isFleet,omitempty"`
	FleetSize  int       `json:"fleetSize,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
	Status     Status    `json:"status,omitempty"`
}

// Form holds the fields a visitor typed into the lead form.
type Form struct {
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email,omitempty"`
	TruckMake  string  `json:"truckMake,omitempty"`
	TruckModel string  `json:"truckModel,omitempty"`
	Issue      string  `json:"issue,omitempty"`
	Location   string  `json:"location,omitempty"`
	Urgency    Urgency `json:"urgency,omitempty"`
	IsFleet    bool    `json:"isFleet,omitempty"`
	FleetSize  int     `json:"fleetSize,omitempty"`
}

var requiredFields = map[Type][]string{
	TypeEmergency:   {"name", "phone", "location", "issue"},
	TypeAppointment: {"name", "phone", "truckMake", "issue", "urgency"},
	TypeQuote:       {"name", "phone", "truckMake", "issue"},
	TypeGeneral:     {"name", "phone"},
}

// RequiredFields lists the form fields that must be non-empty for t.
func RequiredFields(t Type) []string {
	return append([]string(nil), requiredFields[t]...)
}

// Validate checks required fields for t and the format of optional ones.
func (f Form) Validate(t Type) error {
	if _, ok := requiredFields[t]; !ok {
		return ErrInvalidType
	}
	verr := &ValidationError{}
	for _, field := range requiredFields[t] {
		if strings.TrimSpace(f.value(field)) == "" {
			verr.Missing = append(verr.Missing, field)
		}
	}
	if f.Urgency != "" && !f.Urgency.Valid() {
		verr.invalid("urgency", "must be emergency, urgent or routine")
	}
	if f.FleetSize < 0 {
		verr.invalid("fleetSize", "must not be negative")
	}
	if f.Email != "" && !strings.Contains(f.Email, "@") {
		verr.invalid("email", "is not an email address")
	}
	if verr.empty() {
		return nil
	}
	return verr
}

func (e *ValidationError) invalid(field, reason string) {
	if e.Invalid == nil {
		e.Invalid = map[string]string{}
	}
	e.Invalid[field] = reason
}

func (f Form) value(field string) string {
	switch field {
	case "name":
		return f.Name
	case "phone":
		return f.Phone
	case "email":
		return f.Email
	case "truckMake":
		return f.TruckMake
	case "truckModel":
		return f.TruckModel
	case "issue":
		return f.Issue
	case "location":
		return f.Location
	case "urgency":
		return string(f.Urgency)
	}
	return ""
}

// NewLead builds a fresh lead from a validated form. Every call gets a new id,
// so submitting the same form twice yields two records.
func NewLead(t Type, f Form, now time.Time) *Lead {
	urgency := f.Urgency
	if t == TypeEmergency && urgency == "" {
		urgency = UrgencyEmergency
	}
	fleetSize := f.FleetSize
	if !f.IsFleet {
		fleetSize = 0
	}
	return &Lead{
		ID:         uuid.NewString(),
		Type:       t,
		Name:       strings.TrimSpace(f.Name),
		Phone:      strings.TrimSpace(f.Phone),
		Email:      strings.TrimSpace(f.Email),
		TruckMake:  strings.TrimSpace(f.TruckMake),
		TruckModel: strings.TrimSpace(f.TruckModel),
		Issue:      strings.TrimSpace(f.Issue),
		Location:   strings.TrimSpace(f.Location),
		Urgency:    urgency,
		IsFleet:    f.IsFleet,
		FleetSize:  fleetSize,
		Timestamp:  now.UTC(),
		Source:     SourceChatbot,
		Status:     StatusNew,
	}
}

// Valid reports whether t is a known lead type.
func (t Type) Valid() bool {
	_, ok := requiredFields[t]
	return ok
}

// Valid reports whether u is a known urgency.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyEmergency, UrgencyUrgent, UrgencyRoutine:
		return true
	}
	return false
}

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusNew, StatusContacted, StatusHelped, StatusClosed:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// Filter narrows a lead listing. Zero values match everything.
type Filter struct {
	Type   Type
	Status Status
	Search string
	Limit  int
	Offset int
}

// Matches reports whether l passes the filter, ignoring paging.
func (f Filter) Matches(l *Lead) bool {
	if f.Type != "" && l.Type != f.Type {
		return false
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		found := false
		for _, v := range l.searchFields() {
			if strings.Contains(strings.ToLower(v), q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// searchColumns are the columns Filter.Search matches, in the same order as
// Lead.searchFields. The SQL repositories and Matches must agree on them.
var searchColumns = []string{"name", "phone", "email", "issue", "truck_make", "location"}

func (l *Lead) searchFields() []string {
	return []string{l.Name, l.Phone, l.Email, l.Issue, l.TruckMake, l.Location}
}

// searchPredicate ORs "<col> <op> <placeholder>" over searchColumns.
func searchPredicate(op string, placeholder func() string) string {
	parts := make([]string, len(searchColumns))
	for i, col := range searchColumns {
		parts[i] = col + " " + op + " " + placeholder()
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}
