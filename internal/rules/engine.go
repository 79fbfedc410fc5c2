// Package rules classifies free text into issue categories with an ordered
// keyword rule set. First matching rule wins.
package rules

import "strings"

// Rule maps trigger keywords to an issue category with a fixed confidence.
type Rule struct {
	Category   string
	Confidence float64
	Keywords   []string
}

// Engine applies deterministic keyword classification rules.
type Engine struct {
	rules             []Rule
	defaultCategory   string
	defaultConfidence float64
}

// NewEngine builds an engine over the given rule set; an empty set falls
// back to the built-in rules.
func NewEngine(rules []Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Engine{
		rules:             rules,
		defaultCategory:   "service_request",
		defaultConfidence: 0.5,
	}
}

// DefaultRules are the demo keyword rules, mixing English and Hinglish
// triggers as the demo data does.
func DefaultRules() []Rule {
	return []Rule{
		{Category: "billing", Confidence: 0.82, Keywords: []string{"bill", "payment", "charge", "zyada", "paisa"}},
		{Category: "password_reset", Confidence: 0.78, Keywords: []string{"password", "reset", "bhool", "gaya"}},
		{Category: "account_access", Confidence: 0.75, Keywords: []string{"access", "login", "account", "khata"}},
		{Category: "technical_issue", Confidence: 0.70, Keywords: []string{"not working", "error", "problem", "technical"}},
	}
}

// Classify returns the category and confidence for the first rule whose
// keyword appears in the text, or the default when nothing matches.
func (e *Engine) Classify(text string) (string, float64) {
	lowered := strings.ToLower(text)
	for _, rule := range e.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lowered, keyword) {
				return rule.Category, rule.Confidence
			}
		}
	}
	return e.defaultCategory, e.defaultConfidence
}
