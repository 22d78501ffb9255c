// Package nlp turns free-text care requests into a short summary and tags.
package nlp

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/MahathirML/CareNeighbour/internal/core/ports"
)

const (
	maxSummaryRunes = 100
	ellipsis        = "..."
)

type category struct {
	tag   string
	terms []string
}

// Evaluated in order; a request may match several.
var categories = []category{
	{tag: "Medication reminder assistance", terms: []string{"medication", "pills", "medicine", "prescription", "reminder"}},
	{tag: "Companionship service", terms: []string{"companion", "company", "visit", "chat", "talk", "conversation"}},
	{tag: "Urgent physical assistance", terms: []string{"urgent", "emergency", "immediately", "asap", "right now"}},
	{tag: "Check-in call service", terms: []string{"check", "check-in", "call", "checking"}},
}

var durationPattern = regexp.MustCompile(`(\d+)\s*(hour|hr|hours)`)

// KeywordAnalyzer implements ports.RequestAnalyzer with keyword matching.
type KeywordAnalyzer struct{}

func NewKeywordAnalyzer() KeywordAnalyzer { return KeywordAnalyzer{} }

func (KeywordAnalyzer) Analyze(text string) ports.Analysis {
	lower := strings.ToLower(text)

	tags := make([]string, 0, len(categories)+1)
	for _, c := range categories {
		for _, term := range c.terms {
			if strings.Contains(lower, term) {
				tags = append(tags, c.tag)
				break
			}
		}
	}

	if m := durationPattern.FindStringSubmatch(lower); m != nil {
		tags = append(tags, fmt.Sprintf("%s hours of assistance", m[1]))
	}

	return ports.Analysis{Summary: summarize(text), Tags: tags}
}

func summarize(text string) string {
	runes := []rune(text)
	if len(runes) <= maxSummaryRunes {
		return text
	}
	return string(runes[:maxSummaryRunes-len(ellipsis)]) + ellipsis
}
