package exam

import (
	"context"
	"testing"
)

func idSet(qs []Question) map[int64]bool {
	m := map[int64]bool{}
	for _, q := range qs {
		m[q.ID] = true
	}
	return m
}

func TestSelectNormalWeakCategoriesFirst(t *testing.T) {
	store := newFakeStore()
	store.pool = []Question{
		q(1, TypeSingle, 1, 2, nil, nil),
		q(2, TypeSingle, 1, 2, nil, nil),
		q(3, TypeSingle, 1, 2, nil, nil),
		q(10, TypeMultiple, 1, 4, nil, nil),
		q(20, TypeSingle, 2, 2, nil, nil),
		q(21, TypeMultiple, 2, 4, nil, nil),
	}
	tpl := Template{SingleChoiceCount: 2, MultipleChoiceCount: 1}

	got, err := NewSelector(store).SelectNormal(context.Background(), tpl, []int64{1}, nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 questions, got %d", len(got))
	}
	for _, q := range got {
		if q.CategoryID != 1 {
			t.Fatalf("weak category pool suffices, question %d is from category %d", q.ID, q.CategoryID)
		}
	}
	singles, multiples := 0, 0
	for _, q := range got {
		switch q.Type {
		case TypeSingle:
			singles++
		case TypeMultiple:
			multiples++
		}
	}
	if singles != 2 || multiples != 1 {
		t.Fatalf("want 2 single / 1 multiple, got %d/%d", singles, multiples)
	}
}

func TestSelectNormalFallsThroughTiers(t *testing.T) {
	store := newFakeStore()
	store.pool = []Question{
		q(1, TypeSingle, 1, 2, nil, nil), // only weak-category question
		q(20, TypeSingle, 2, 2, nil, nil),
		q(21, TypeMultiple, 2, 4, nil, nil),
		q(22, TypeSingle, 2, 2, nil, nil),
	}
	tpl := Template{SingleChoiceCount: 2, MultipleChoiceCount: 1}

	got, err := NewSelector(store).SelectNormal(context.Background(), tpl, []int64{1}, nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 questions, got %d", len(got))
	}
	ids := idSet(got)
	if !ids[1] {
		t.Fatal("tier 1 pick from the weak category must survive")
	}
}

func TestSelectNormalAvoidsMissedUntilForced(t *testing.T) {
	store := newFakeStore()
	store.pool = []Question{
		q(1, TypeSingle, 1, 2, nil, nil),
		q(2, TypeSingle, 1, 2, nil, nil),
		q(3, TypeSingle, 2, 2, nil, nil),
	}
	tpl := Template{SingleChoiceCount: 2}

	// Enough fresh questions: the missed one must stay out.
	got, err := NewSelector(store).SelectNormal(context.Background(), tpl, nil, []int64{1})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if ids := idSet(got); ids[1] {
		t.Fatal("missed question picked while fresh ones remained")
	}

	// Bank too small without it: tier 3 is allowed to reuse it.
	tpl.SingleChoiceCount = 3
	got, err = NewSelector(store).SelectNormal(context.Background(), tpl, nil, []int64{1})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 questions, got %d", len(got))
	}
	if ids := idSet(got); !ids[1] {
		t.Fatal("missed question should be reused when nothing else is left")
	}
}

func TestSelectNormalShortBank(t *testing.T) {
	store := newFakeStore()
	store.pool = []Question{
		q(1, TypeSingle, 1, 2, nil, nil),
		q(2, TypeMultiple, 1, 4, nil, nil),
	}
	tpl := Template{SingleChoiceCount: 5, MultipleChoiceCount: 5}

	got, err := NewSelector(store).SelectNormal(context.Background(), tpl, nil, nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("exhausted bank should yield a short set, got %d questions", len(got))
	}
}

func TestSelectNormalNoDuplicates(t *testing.T) {
	store := newFakeStore()
	store.pool = []Question{
		q(1, TypeSingle, 1, 2, nil, nil),
		q(2, TypeSingle, 1, 2, nil, nil),
		q(3, TypeMultiple, 1, 4, nil, nil),
		q(4, TypeSingle, 2, 2, nil, nil),
	}
	tpl := Template{SingleChoiceCount: 3, MultipleChoiceCount: 1}

	got, err := NewSelector(store).SelectNormal(context.Background(), tpl, []int64{1}, nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	seen := map[int64]bool{}
	for _, q := range got {
		if seen[q.ID] {
			t.Fatalf("question %d selected twice", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestSelectTargetedPartitionsByType(t *testing.T) {
	store := newFakeStore()
	store.pool = []Question{
		q(1, TypeSingle, 1, 2, nil, nil),
		q(2, TypeSingle, 1, 2, nil, nil),
		q(3, TypeSingle, 1, 2, nil, nil),
		q(11, TypeMultiple, 1, 4, nil, nil),
		q(12, TypeMultiple, 1, 4, nil, nil),
		q(30, TypeSingle, 3, 2, nil, nil),
	}
	tpl := Template{
		SingleChoiceCount:   2,
		MultipleChoiceCount: 1,
		TargetCategoryIDs:   []int64{1},
	}

	got, err := NewSelector(store).SelectTargeted(context.Background(), tpl)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 questions, got %d", len(got))
	}
	singles, multiples := 0, 0
	for _, q := range got {
		if q.CategoryID != 1 {
			t.Fatalf("target pool suffices, question %d is from category %d", q.ID, q.CategoryID)
		}
		switch q.Type {
		case TypeSingle:
			singles++
		case TypeMultiple:
			multiples++
		}
	}
	if singles != 2 || multiples != 1 {
		t.Fatalf("want 2 single / 1 multiple, got %d/%d", singles, multiples)
	}
}

func TestSelectTargetedSupplementsOutsideTargets(t *testing.T) {
	store := newFakeStore()
	store.pool = []Question{
		q(1, TypeSingle, 1, 2, nil, nil), // only question in the target category
		q(20, TypeSingle, 2, 2, nil, nil),
		q(21, TypeMultiple, 2, 4, nil, nil),
	}
	tpl := Template{
		SingleChoiceCount:   2,
		MultipleChoiceCount: 1,
		TargetCategoryIDs:   []int64{1},
	}

	got, err := NewSelector(store).SelectTargeted(context.Background(), tpl)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 questions, got %d", len(got))
	}
	if ids := idSet(got); !ids[1] {
		t.Fatal("the target-category question must be in the set")
	}
}

func TestSelectTargetedBackfillsAcrossTypes(t *testing.T) {
	store := newFakeStore()
	store.pool = []Question{
		q(1, TypeSingle, 1, 2, nil, nil),
		q(2, TypeSingle, 1, 2, nil, nil),
		q(3, TypeSingle, 1, 2, nil, nil),
		q(4, TypeSingle, 1, 2, nil, nil),
	}
	// No multiple-choice questions exist at all.
	tpl := Template{
		SingleChoiceCount:   2,
		MultipleChoiceCount: 2,
		TargetCategoryIDs:   []int64{1},
	}

	got, err := NewSelector(store).SelectTargeted(context.Background(), tpl)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("missing type must be backfilled from the candidate pool, got %d questions", len(got))
	}
}

func TestSelectTargetedEmptyTargetsUseWholeBank(t *testing.T) {
	store := newFakeStore()
	store.pool = []Question{
		q(1, TypeSingle, 1, 2, nil, nil),
		q(20, TypeMultiple, 2, 4, nil, nil),
	}
	tpl := Template{SingleChoiceCount: 1, MultipleChoiceCount: 1}

	got, err := NewSelector(store).SelectTargeted(context.Background(), tpl)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 questions from the whole bank, got %d", len(got))
	}
}
