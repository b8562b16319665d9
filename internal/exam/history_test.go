package exam

import (
	"context"
	"reflect"
	"testing"
)

func TestWeakCategoriesOrderedByErrorCount(t *testing.T) {
	store := newFakeStore()
	store.incorrect = []IncorrectAnswer{
		{QuestionID: 1, CategoryID: 7},
		{QuestionID: 2, CategoryID: 7},
		{QuestionID: 3, CategoryID: 7},
		{QuestionID: 4, CategoryID: 2},
		{QuestionID: 5, CategoryID: 2},
		{QuestionID: 6, CategoryID: 9},
	}

	got, err := NewAnalyzer(store).WeakCategories(context.Background(), 1)
	if err != nil {
		t.Fatalf("weak categories: %v", err)
	}
	want := []int64{7, 2, 9}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestWeakCategoriesTieBreaksOnID(t *testing.T) {
	store := newFakeStore()
	store.incorrect = []IncorrectAnswer{
		{QuestionID: 1, CategoryID: 5},
		{QuestionID: 2, CategoryID: 3},
		{QuestionID: 3, CategoryID: 8},
	}

	got, err := NewAnalyzer(store).WeakCategories(context.Background(), 1)
	if err != nil {
		t.Fatalf("weak categories: %v", err)
	}
	want := []int64{3, 5, 8}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("equal counts must sort by id, want %v got %v", want, got)
	}
}

func TestWeakCategoriesCappedAtThree(t *testing.T) {
	store := newFakeStore()
	for i := int64(1); i <= 5; i++ {
		store.incorrect = append(store.incorrect, IncorrectAnswer{QuestionID: i, CategoryID: i})
	}

	got, err := NewAnalyzer(store).WeakCategories(context.Background(), 1)
	if err != nil {
		t.Fatalf("weak categories: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want at most 3 categories, got %v", got)
	}
}

func TestWeakCategoriesEmptyHistory(t *testing.T) {
	got, err := NewAnalyzer(newFakeStore()).WeakCategories(context.Background(), 1)
	if err != nil {
		t.Fatalf("weak categories: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("no history should yield no weak categories, got %v", got)
	}
}

func TestExcludedQuestionIDsDistinct(t *testing.T) {
	store := newFakeStore()
	store.incorrect = []IncorrectAnswer{
		{QuestionID: 4, CategoryID: 1},
		{QuestionID: 9, CategoryID: 2},
		{QuestionID: 4, CategoryID: 1}, // missed twice across attempts
		{QuestionID: 2, CategoryID: 2},
	}

	got, err := NewAnalyzer(store).ExcludedQuestionIDs(context.Background(), 1)
	if err != nil {
		t.Fatalf("excluded ids: %v", err)
	}
	want := []int64{4, 9, 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}
