// Package rules is a small matching engine that attaches a note to rows
// satisfying every statement of a rule.
package rules

import (
	"fmt"
	"strings"
)

// Operation compares a row field against a statement value.
type Operation int

const (
	Equals Operation = iota
	EndsWith
)

func (o Operation) String() string {
	switch o {
	case Equals:
		return "equals"
	case EndsWith:
		return "ends_with"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// ParseOperation accepts both snake case and the capitalized spelling.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "_", "")) {
	case "equals":
		return Equals, nil
	case "endswith":
		return EndsWith, nil
	}
	return 0, fmt.Errorf("unknown operation %q", s)
}

// Statement holds if the field at Column compares true against Value.
type Statement struct {
	Column    int       `yaml:"column"`
	Operation Operation `yaml:"operation"`
	Value     string    `yaml:"value"`
}

// Matches reports whether the statement holds for fields. A missing column
// never matches.
func (s Statement) Matches(fields []string) bool {
	if s.Column < 0 || s.Column >= len(fields) {
		return false
	}
	v := fields[s.Column]
	switch s.Operation {
	case Equals:
		return v == s.Value
	case EndsWith:
		return strings.HasSuffix(v, s.Value)
	default:
		return false
	}
}

// Rule matches when all of its statements hold. A rule without statements
// matches every row, which makes it usable as a trailing default.
type Rule struct {
	Statements []Statement `yaml:"statements"`
	// Value is the note applied to matching rows.
	Value string `yaml:"value"`
}

// Matches reports whether every statement holds for fields.
func (r Rule) Matches(fields []string) bool {
	for _, s := range r.Statements {
		if !s.Matches(fields) {
			return false
		}
	}
	return true
}

// Engine evaluates rules in order.
type Engine struct {
	Rules []Rule `yaml:"rules"`
}

// MatchingRule returns the first rule matching fields.
func (e *Engine) MatchingRule(fields []string) (*Rule, bool) {
	for i := range e.Rules {
		if e.Rules[i].Matches(fields) {
			return &e.Rules[i], true
		}
	}
	return nil, false
}

// Annotate returns the note of the first matching rule.
func (e *Engine) Annotate(fields []string) (string, bool) {
	r, ok := e.MatchingRule(fields)
	if !ok {
		return "", false
	}
	return r.Value, true
}
