// Package chatbot implements the keyword responder behind the site chat widget.
package chatbot

import (
	"strings"
	"unicode"
)

// Category is the label the classifier assigns to a free-text message.
type Category string

const (
	CategoryGreeting     Category = "greeting"
	CategoryHelp         Category = "help"
	CategoryEmergency    Category = "emergency"
	CategoryEngine       Category = "engine"
	CategoryTransmission Category = "transmission"
	CategoryBrake        Category = "brake"
	CategoryTire         Category = "tire"
	CategoryElectrical   Category = "electrical"
	CategoryQuote        Category = "quote"
	CategoryAppointment  Category = "appointment"
	CategoryLocation     Category = "location"
	CategoryHours        Category = "hours"
	CategoryFleet        Category = "fleet"
	CategoryService      Category = "service"
	CategoryDefault      Category = "default"
)

type keywordSet struct {
	category Category
	keywords []string
}

var emergencyKeywords = []string{
	"emergency", "broke down", "broken down", "breakdown", "stranded", "stuck on the",
	"tow", "towing", "accident", "smoke", "on fire", "urgent", "asap", "roadside",
}

// keywordSets is checked in order and the first hit wins. "repair" lands in help
// before any part-specific set is consulted.
var keywordSets = []keywordSet{
	{CategoryGreeting, []string{"hello", "hi", "hey", "howdy", "good morning", "good afternoon", "good evening", "greetings"}},
	{CategoryHelp, []string{"help", "repair", "fix", "assist", "need service"}},
	{CategoryEngine, []string{"engine", "motor", "overheat", "won't start", "wont start", "stall", "misfire", "diesel", "turbo", "dpf", "def", "exhaust"}},
	{CategoryTransmission, []string{"transmission", "gear", "clutch", "shifting", "shift", "drivetrain", "differential"}},
	{CategoryBrake, []string{"brake", "abs", "rotor", "brake pad", "stopping"}},
	{CategoryTire, []string{"tire", "tyre", "flat", "blowout", "wheel", "alignment", "tread"}},
	{CategoryElectrical, []string{"electrical", "battery", "alternator", "starter", "lights", "wiring", "fuse"}},
	{CategoryQuote, []string{"quote", "price", "pricing", "cost", "estimate", "how much"}},
	{CategoryAppointment, []string{"appointment", "schedule", "book", "booking", "availability", "come in", "drop off"}},
	{CategoryLocation, []string{"location", "address", "where are you", "directions", "located"}},
	{CategoryHours, []string{"hours", "open", "closing", "closed", "weekend", "saturday", "sunday", "what time"}},
	{CategoryFleet, []string{"fleet", "trucks", "company account", "contract", "multiple vehicles"}},
	{CategoryService, []string{"service", "maintenance", "oil change", "inspection", "dot", "tune up", "preventive"}},
}

// Classify maps a message to a category. Emergency keywords are checked before
// every other set so they win regardless of what else the message mentions.
func Classify(message string) Category {
	text := strings.ToLower(message)
	if IsEmergency(text) {
		return CategoryEmergency
	}
	for _, set := range keywordSets {
		if containsAny(text, set.keywords) {
			return set.category
		}
	}
	return CategoryDefault
}

// IsEmergency reports whether the message contains an emergency keyword.
func IsEmergency(message string) bool {
	return containsAny(strings.ToLower(message), emergencyKeywords)
}

// Categories lists every category in classification order, ending with default.
func Categories() []Category {
	out := []Category{CategoryEmergency}
	for _, set := range keywordSets {
		out = append(out, set.category)
	}
	return append(out, CategoryDefault)
}

// NeedsForm reports whether a reply in this category should prompt for the lead form.
func (c Category) NeedsForm() bool {
	switch c {
	case CategoryEmergency, CategoryHelp, CategoryEngine, CategoryTransmission, CategoryBrake,
		CategoryTire, CategoryElectrical, CategoryQuote, CategoryAppointment, CategoryFleet,
		CategoryService:
		return true
	default:
		return false
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if matchKeyword(text, kw) {
			return true
		}
	}
	return false
}

// Keywords of three letters or fewer must stand alone, so "hi" does not match "vehicle".
func matchKeyword(text, kw string) bool {
	if len(kw) > 3 {
		return strings.Contains(text, kw)
	}
	for start := 0; ; {
		idx := strings.Index(text[start:], kw)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(kw)
		if isBoundary(text, idx-1) && isBoundary(text, end) {
			return true
		}
		start = idx + 1
	}
}

func isBoundary(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	r := rune(text[i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
