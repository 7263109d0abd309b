// Package rules provides the ordered, first-match-wins rule tables used by the
// analysis and conversation engines.
//
// A Table is plain data: an ordered slice of rules, each pairing a set of trigger
// terms with a result. Evaluation scans rules top to bottom and the first rule with
// any trigger found in the input wins, no matter how many later rules also match.
// Matching is a case-insensitive substring test.
package rules

import "strings"

// Rule pairs trigger terms with a result.
type Rule[T any] struct {
	Name     string
	Triggers []string
	Result   T
}

// Match is the outcome of evaluating a table against an input.
type Match[T any] struct {
	Rule     string
	Result   T
	Matched  bool
	Keywords []string
}

// Table is an ordered rule list with a fallback result.
type Table[T any] struct {
	name     string
	rules    []Rule[T]
	fallback T
}

// NewTable creates a table. Rule order is significant.
func NewTable[T any](name string, fallback T, rules ...Rule[T]) *Table[T] {
	normalized := make([]Rule[T], len(rules))
	for i, r := range rules {
		triggers := make([]string, len(r.Triggers))
		for j, trigger := range r.Triggers {
			triggers[j] = strings.ToLower(trigger)
		}
		normalized[i] = Rule[T]{Name: r.Name, Triggers: triggers, Result: r.Result}
	}
	return &Table[T]{name: name, rules: normalized, fallback: fallback}
}

// Name returns the table name.
func (t *Table[T]) Name() string {
	return t.name
}

// Rules returns a copy of the rules in evaluation order.
func (t *Table[T]) Rules() []Rule[T] {
	return append([]Rule[T](nil), t.rules...)
}

// Fallback returns the result used when no rule matches.
func (t *Table[T]) Fallback() T {
	return t.fallback
}

// Evaluate returns the result of the first matching rule, or the fallback.
// Keywords lists every trigger found in input across all rules, in table order,
// without duplicates.
func (t *Table[T]) Evaluate(input string) Match[T] {
	lower := strings.ToLower(input)
	match := Match[T]{Result: t.fallback, Keywords: []string{}}
	if strings.TrimSpace(lower) == "" {
		return match
	}

	seen := make(map[string]bool)
	for _, r := range t.rules {
		for _, trigger := range r.Triggers {
			if trigger == "" || !strings.Contains(lower, trigger) {
				continue
			}
			if !match.Matched {
				match.Matched = true
				match.Rule = r.Name
				match.Result = r.Result
			}
			if !seen[trigger] {
				seen[trigger] = true
				match.Keywords = append(match.Keywords, trigger)
			}
		}
	}
	return match
}

// First returns the result of the first matching rule, or the fallback.
func (t *Table[T]) First(input string) T {
	return t.Evaluate(input).Result
}
