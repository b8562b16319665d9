package exam

import (
	"context"
	"sort"
)

const maxWeakCategories = 3

// Analyzer derives a user's weak spots from their past attempts. Both
// methods are pure reads.
type Analyzer struct {
	store Store
}

func NewAnalyzer(store Store) *Analyzer { return &Analyzer{store: store} }

// WeakCategories returns up to three category ids, ordered by how often
// the user answered questions of that category incorrectly. Ties are
// broken by category id ascending so the result is deterministic.
func (a *Analyzer) WeakCategories(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := a.store.IncorrectAnswers(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts := map[int64]int{}
	for _, r := range rows {
		counts[r.CategoryID]++
	}
	ids := make([]int64, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > maxWeakCategories {
		ids = ids[:maxWeakCategories]
	}
	return ids, nil
}

// ExcludedQuestionIDs returns every distinct question id the user has
// ever answered incorrectly.
func (a *Analyzer) ExcludedQuestionIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := a.store.IncorrectAnswers(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := map[int64]struct{}{}
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.QuestionID]; ok {
			continue
		}
		seen[r.QuestionID] = struct{}{}
		out = append(out, r.QuestionID)
	}
	return out, nil
}
