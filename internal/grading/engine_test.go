package grading

import (
	"context"
	"testing"
)

func TestExactSetSingle(t *testing.T) {
	g := NewDefaultGrader()
	q := Q{Type: "single", Score: 5, CorrectOptionIDs: []int64{3}}

	res, err := g.Grade(context.Background(), q, []int64{3})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if !res.Correct || res.Points != 5 {
		t.Fatalf("want correct with 5 points, got %+v", res)
	}

	res, err = g.Grade(context.Background(), q, []int64{4})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if res.Correct || res.Points != 0 {
		t.Fatalf("wrong option should score zero, got %+v", res)
	}
}

func TestExactSetMultipleOrderInsensitive(t *testing.T) {
	g := NewDefaultGrader()
	q := Q{Type: "multiple", Score: 10, CorrectOptionIDs: []int64{1, 2}}

	res, err := g.Grade(context.Background(), q, []int64{2, 1})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if !res.Correct || res.Points != 10 {
		t.Fatalf("order must not matter, got %+v", res)
	}
}

func TestExactSetNoPartialCredit(t *testing.T) {
	g := NewDefaultGrader()
	q := Q{Type: "multiple", Score: 10, CorrectOptionIDs: []int64{1, 2}}

	cases := [][]int64{
		{1},          // subset
		{1, 2, 3},    // superset
		{3, 4},       // disjoint
		{},           // nothing selected
		nil,          // no selection at all
		{1, 1, 2, 3}, // duplicates plus an extra
	}
	for _, sel := range cases {
		res, err := g.Grade(context.Background(), q, sel)
		if err != nil {
			t.Fatalf("grade %v: %v", sel, err)
		}
		if res.Correct || res.Points != 0 {
			t.Fatalf("selection %v should not score, got %+v", sel, res)
		}
	}
}

func TestDuplicateSelectionsCollapse(t *testing.T) {
	g := NewDefaultGrader()
	q := Q{Type: "multiple", Score: 4, CorrectOptionIDs: []int64{1, 2}}

	res, err := g.Grade(context.Background(), q, []int64{2, 1, 2})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if !res.Correct {
		t.Fatalf("duplicate ids collapse to the same set, got %+v", res)
	}
}

func TestUnknownTypeFails(t *testing.T) {
	g := NewDefaultGrader()
	if _, err := g.Grade(context.Background(), Q{Type: "essay"}, nil); err == nil {
		t.Fatal("expected error for unknown question type")
	}
}
