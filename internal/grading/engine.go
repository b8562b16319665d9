// Package grading scores a submitted answer against a question's
// correct option set.
package grading

import (
	"context"
	"fmt"
)

// Q is a minimal view of a question needed for grading.
type Q struct {
	Type             string // "single" or "multiple"
	Score            int
	CorrectOptionIDs []int64
}

// Result is the outcome of grading a single question response.
type Result struct {
	Correct bool
	Points  int // q.Score when correct, 0 otherwise
}

// Strategy grades a single question.
type Strategy interface {
	Grade(ctx context.Context, q Q, selected []int64) (Result, error)
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(ctx context.Context, q Q, selected []int64) (Result, error)
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(ctx context.Context, q Q, selected []int64) (Result, error) {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Result{}, fmt.Errorf("no grading strategy for question type %q", q.Type)
	}
	return s.Grade(ctx, q, selected)
}

// NewDefaultGrader installs the built-in strategies. Single- and
// multiple-choice share one rule: the selected set must equal the
// correct set exactly. A single-choice question is just a one-element
// correct set; there is no partial credit.
func NewDefaultGrader() Grader {
	return &defaultGrader{
		strategies: map[string]Strategy{
			"single":   exactSetStrategy{},
			"multiple": exactSetStrategy{},
		},
	}
}

type exactSetStrategy struct{}

func (exactSetStrategy) Grade(_ context.Context, q Q, selected []int64) (Result, error) {
	if setEqual(toSet(selected), toSet(q.CorrectOptionIDs)) {
		return Result{Correct: true, Points: q.Score}, nil
	}
	return Result{}, nil
}

func toSet(ids []int64) map[int64]struct{} {
	m := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func setEqual(a, b map[int64]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
