package sample

import (
	"fmt"
	"strings"
)

// Predicate evaluates true or false for a sample row. Callers may
// inject their own implementation; this file provides the default one
// used when AddGroup is given an expression string.
type Predicate interface {
	Test(Row) bool
}

// PredicateFunc adapts a function to Predicate.
type PredicateFunc func(Row) bool

// Test implements Predicate.
func (f PredicateFunc) Test(r Row) bool { return f(r) }

type clause struct {
	key   string
	op    string // "=" or "!="
	value string
}

func (c clause) Test(r Row) bool {
	v, ok := r.Attrs[c.key]
	switch c.op {
	case "=":
		return ok && v == c.value
	case "!=":
		return !ok || v != c.value
	default:
		return false
	}
}

type andPredicate []Predicate

func (a andPredicate) Test(r Row) bool {
	for _, p := range a {
		if !p.Test(r) {
			return false
		}
	}
	return true
}

type orPredicate []Predicate

func (o orPredicate) Test(r Row) bool {
	for _, p := range o {
		if p.Test(r) {
			return true
		}
	}
	return false
}

// ParsePredicate parses a small expression language over sample
// attributes: clauses of the form `key=value` or `key!=value`,
// combined with `&&` (higher precedence) and `||`. Whitespace around
// operators is ignored. Just enough to select sample groups by
// structured metadata, not a general query language.
func ParsePredicate(expr string) (Predicate, error) {
	orTerms := strings.Split(expr, "||")
	ors := make(orPredicate, 0, len(orTerms))
	for _, orTerm := range orTerms {
		andTerms := strings.Split(orTerm, "&&")
		ands := make(andPredicate, 0, len(andTerms))
		for _, term := range andTerms {
			c, err := parseClause(strings.TrimSpace(term))
			if err != nil {
				return nil, err
			}
			ands = append(ands, c)
		}
		ors = append(ors, ands)
	}
	return ors, nil
}

func parseClause(term string) (clause, error) {
	if idx := strings.Index(term, "!="); idx >= 0 {
		return clause{key: strings.TrimSpace(term[:idx]), op: "!=", value: strings.TrimSpace(term[idx+2:])}, nil
	}
	if idx := strings.Index(term, "="); idx >= 0 {
		return clause{key: strings.TrimSpace(term[:idx]), op: "=", value: strings.TrimSpace(term[idx+1:])}, nil
	}
	return clause{}, fmt.Errorf("sample: malformed predicate clause %q", term)
}
