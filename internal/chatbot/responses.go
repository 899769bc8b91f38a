package chatbot

import (
	"math/rand/v2"
	"strings"
)

var responses = map[Category][]string{
	CategoryGreeting: {
		"Hi there! Welcome to {shop}. How can we help with your truck today?",
		"Hello! Thanks for reaching out to {shop}. What's going on with your rig?",
		"Hey! You've reached {shop}. Need a repair, a quote, or roadside help?",
	},
	CategoryHelp: {
		"We can help with that. Tell us a bit about the problem and we'll get you on the schedule.",
		"Our mechanics handle everything from engines to electrical. Fill out the form and we'll reach out shortly.",
		"Happy to help. Share your truck details and what's happening, and a tech will follow up.",
	},
	CategoryEmergency: {
		"We're dispatching help. Please share your location and phone number right away, or call {phone} now.",
		"Stay safe. Our emergency crew runs 24/7. Fill in your location below or call {phone} immediately.",
		"This sounds urgent. Give us your location and contact info and we'll get a truck rolling, or call {phone}.",
	},
	CategoryEngine: {
		"Engine trouble is our specialty. We work on Cummins, Detroit, PACCAR and more. Let's get your details.",
		"Sorry to hear about the engine. Our diesel techs can diagnose it fast. Tell us about your truck.",
		"We handle overheating, misfires, DPF and DEF problems every day. Fill out the form and we'll call you.",
	},
	CategoryTransmission: {
		"Shifting problems can get worse fast. Our techs rebuild and repair manual and automated transmissions.",
		"We service Eaton, Allison and more. Share your truck info and we'll set up a diagnosis.",
		"Transmission and clutch work is done in-house. Tell us what you're noticing and we'll follow up.",
	},
	CategoryBrake: {
		"Brakes are a safety issue, so we prioritize them. Let's get your truck in.",
		"We repair air brakes, ABS faults and worn components. Fill out the form and we'll schedule you.",
		"Don't wait on brake problems. Share your details and a tech will contact you shortly.",
	},
	CategoryTire: {
		"We handle flats, blowouts, alignments and tire replacement. Where's your truck now?",
		"Tire trouble? We stock commercial tires and can get you rolling. Share your info below.",
		"From tread wear to wheel alignment, we've got you covered. Tell us about your truck.",
	},
	CategoryElectrical: {
		"Electrical gremlins are tricky, but our techs have the diagnostic tools to find them.",
		"We fix batteries, alternators, starters, lighting and wiring. Fill out the form to get started.",
		"Let's track down that electrical issue. Share your truck details and we'll reach out.",
	},
	CategoryQuote: {
		"We'd be glad to put together a free estimate. Tell us about your truck and the work needed.",
		"Pricing depends on the job, so share a few details and we'll send you a quote.",
		"Free quotes, no obligation. Fill in the form and we'll get back to you quickly.",
	},
	CategoryAppointment: {
		"Let's get you on the schedule. Fill out the form and we'll confirm a time.",
		"We have openings this week. Share your details and preferred urgency.",
		"Booking is quick. Tell us about your truck and we'll lock in an appointment.",
	},
	CategoryLocation: {
		"You can find {shop} right off the interstate with plenty of room for big rigs. Call {phone} for directions.",
		"Our shop has easy truck access and parking. Call {phone} and we'll guide you in.",
		"We're easy to reach from the highway. Need directions? Call us at {phone}.",
	},
	CategoryHours: {
		"The shop is open Monday through Saturday, and emergency service runs 24/7 at {phone}.",
		"Regular hours are weekdays and Saturdays. For after-hours breakdowns call {phone} anytime.",
		"We keep long shop hours and our roadside crew never closes. Call {phone} for anything urgent.",
	},
	CategoryFleet: {
		"We offer fleet accounts with priority scheduling and maintenance tracking. How many trucks do you run?",
		"Fleet customers get dedicated service lanes and volume pricing. Share your details and we'll reach out.",
		"Keep your fleet on the road. Tell us about your trucks and our fleet manager will contact you.",
	},
	CategoryService: {
		"We do preventive maintenance, DOT inspections, oil changes and more. Let's get your truck scheduled.",
		"Regular service keeps you rolling. Fill out the form and we'll find a time that works.",
		"From PM services to full inspections, we've got you. Share your truck info below.",
	},
	CategoryDefault: {
		"Thanks for your message! For the fastest help, call us at {phone} or choose an option below.",
		"I'm not sure I caught that. You can request an appointment, a quote, or call {phone}.",
		"Our team can answer that best. Give us a call at {phone} or leave your details and we'll reach out.",
	},
}

// Responses returns a copy of the canned replies for a category, placeholders unfilled.
func Responses(c Category) []string {
	list, ok := responses[c]
	if !ok {
		list = responses[CategoryDefault]
	}
	return append([]string(nil), list...)
}

// Selector picks a canned reply for a category.
type Selector struct {
	intn     func(n int) int
	replacer *strings.Replacer
}

// NewSelector returns a selector drawing uniformly with intn. A nil intn uses math/rand/v2.
func NewSelector(intn func(n int) int) *Selector {
	if intn == nil {
		intn = rand.IntN
	}
	return &Selector{
		intn:     intn,
		replacer: strings.NewReplacer("{shop}", "our shop", "{phone}", "our main line"),
	}
}

// WithShop fills the {shop} and {phone} placeholders with real values.
func (s *Selector) WithShop(name, phone string) *Selector {
	return &Selector{
		intn:     s.intn,
		replacer: strings.NewReplacer("{shop}", name, "{phone}", phone),
	}
}

// Select returns one reply for c. Unknown categories use the default list.
func (s *Selector) Select(c Category) string {
	list, ok := responses[c]
	if !ok {
		list = responses[CategoryDefault]
	}
	idx := s.intn(len(list))
	if idx < 0 || idx >= len(list) {
		idx = 0
	}
	return s.replacer.Replace(list[idx])
}

// Options returns the rendered reply list Select draws from for c.
func (s *Selector) Options(c Category) []string {
	list := Responses(c)
	for i := range list {
		list[i] = s.replacer.Replace(list[i])
	}
	return list
}
