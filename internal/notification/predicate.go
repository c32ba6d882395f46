package notification

import "strings"

// Predicate is one structured personalization condition evaluated against
// recipient attributes. Conditions arrive as data, never as code.
type Predicate struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value string `json:"value"`
}

// Rule pairs a message variant with the predicates that must all hold for a
// recipient to receive it.
type Rule struct {
	When    []Predicate `json:"when"`
	Message string      `json:"message"`
}

// Match evaluates the predicate against a recipient's attributes. Unknown
// operators and missing fields never match.
func (p Predicate) Match(attrs map[string]string) bool {
	value, ok := attrs[p.Field]
	if !ok {
		return false
	}

	switch p.Op {
	case "eq":
		return strings.EqualFold(value, p.Value)
	case "ne":
		return !strings.EqualFold(value, p.Value)
	case "contains":
		return strings.Contains(strings.ToLower(value), strings.ToLower(p.Value))
	}
	return false
}

// SelectMessage returns the first rule whose predicates all match, or the
// fallback when none does.
func SelectMessage(rules []Rule, attrs map[string]string, fallback string) string {
	for _, rule := range rules {
		if len(rule.When) == 0 {
			continue
		}
		matched := true
		for _, predicate := range rule.When {
			if !predicate.Match(attrs) {
				matched = false
				break
			}
		}
		if matched {
			return rule.Message
		}
	}
	return fallback
}
