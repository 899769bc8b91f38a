package chatbot

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed faq.yaml
var faqYAML []byte

// FAQ is one question and answer pair shown by the widget.
type FAQ struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

// ParseFAQ decodes a YAML list of question/answer pairs.
func ParseFAQ(data []byte) ([]FAQ, error) {
	var entries []FAQ
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("chatbot: parse faq: %w", err)
	}
	for i, e := range entries {
		if strings.TrimSpace(e.Question) == "" || strings.TrimSpace(e.Answer) == "" {
			return nil, fmt.Errorf("chatbot: faq entry %d is incomplete", i)
		}
	}
	return entries, nil
}

// DefaultFAQ returns the built-in FAQ list.
func DefaultFAQ() []FAQ {
	entries, err := ParseFAQ(faqYAML)
	if err != nil {
		panic(err)
	}
	return entries
}

// FormatFAQ renders every pair verbatim, one block per pair.
func FormatFAQ(entries []FAQ) string {
	var b strings.Builder
	b.WriteString("Here are some frequently asked questions:")
	for _, e := range entries {
		b.WriteString("\n\nQ: ")
		b.WriteString(e.Question)
		b.WriteString("\nA: ")
		b.WriteString(e.Answer)
	}
	return b.String()
}
