package exam

import (
	"context"
	"sort"
	"time"

	"github.com/examforge/examforge/internal/apperr"
)

// fakeStore is an in-memory Store for service and selector tests. Its
// Sample is deterministic: the filtered pool sorted by question id, so
// assertions do not depend on randomness.
type fakeStore struct {
	templates map[int64]Template
	pool      []Question
	incorrect []IncorrectAnswer

	attempts map[string]*Attempt
	rows     map[string][]AttemptQuestion
	records  []AttemptRecord
	stats    UserStats

	sampleCalls []SampleFilter
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		templates: map[int64]Template{},
		attempts:  map[string]*Attempt{},
		rows:      map[string][]AttemptQuestion{},
	}
}

func (f *fakeStore) Sample(_ context.Context, filter SampleFilter, n int) ([]Question, error) {
	f.sampleCalls = append(f.sampleCalls, filter)

	in := func(ids []int64, id int64) bool {
		for _, v := range ids {
			if v == id {
				return true
			}
		}
		return false
	}

	var out []Question
	for _, q := range f.pool {
		if filter.Type != "" && q.Type != filter.Type {
			continue
		}
		if len(filter.CategoryIDs) > 0 && !in(filter.CategoryIDs, q.CategoryID) {
			continue
		}
		if len(filter.NotCategoryIDs) > 0 && in(filter.NotCategoryIDs, q.CategoryID) {
			continue
		}
		if in(filter.ExcludeIDs, q.ID) {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (f *fakeStore) TemplateByID(_ context.Context, id int64) (Template, error) {
	t, ok := f.templates[id]
	if !ok {
		return Template{}, apperr.NotFound("exam template not found")
	}
	return t, nil
}

func (f *fakeStore) QuestionsByIDs(_ context.Context, ids []int64) ([]Question, error) {
	var out []Question
	for _, id := range ids {
		for _, q := range f.pool {
			if q.ID == id {
				out = append(out, q)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) IncorrectAnswers(_ context.Context, _ int64) ([]IncorrectAnswer, error) {
	return f.incorrect, nil
}

func (f *fakeStore) CreateAttempt(_ context.Context, a Attempt, rows []AttemptQuestion) error {
	cp := a
	f.attempts[a.ID] = &cp
	f.rows[a.ID] = append([]AttemptQuestion(nil), rows...)
	return nil
}

func (f *fakeStore) AttemptByID(_ context.Context, id string) (Attempt, error) {
	a, ok := f.attempts[id]
	if !ok {
		return Attempt{}, apperr.NotFound("exam attempt not found")
	}
	return *a, nil
}

func (f *fakeStore) AttemptQuestions(_ context.Context, attemptID string) ([]AttemptQuestion, error) {
	return f.rows[attemptID], nil
}

func (f *fakeStore) FinishAttempt(_ context.Context, attemptID string, graded []GradedRow, totalScore int, submittedAt time.Time) error {
	a, ok := f.attempts[attemptID]
	if !ok {
		return apperr.NotFound("exam attempt not found")
	}
	if a.Status != StatusPending {
		return apperr.Conflict("exam already submitted")
	}
	byQuestion := map[int64]GradedRow{}
	for _, g := range graded {
		byQuestion[g.QuestionID] = g
	}
	rows := f.rows[attemptID]
	for i := range rows {
		g, ok := byQuestion[rows[i].QuestionID]
		if !ok {
			continue
		}
		rows[i].SelectedOptionIDs = g.SelectedOptionIDs
		rows[i].IsCorrect = g.IsCorrect
		rows[i].Score = g.Score
	}
	a.Status = StatusFinished
	a.TotalScore = &totalScore
	a.SubmittedAt = &submittedAt
	return nil
}

func (f *fakeStore) AttemptsByUser(_ context.Context, _ int64) ([]AttemptRecord, error) {
	return f.records, nil
}

func (f *fakeStore) UserStats(_ context.Context, _ int64) (UserStats, error) {
	return f.stats, nil
}

// q builds a pool question with every option wrong except correctIDs.
func q(id int64, typ QuestionType, categoryID int64, score int, optionIDs, correctIDs []int64) Question {
	in := func(ids []int64, id int64) bool {
		for _, v := range ids {
			if v == id {
				return true
			}
		}
		return false
	}
	out := Question{ID: id, Type: typ, CategoryID: categoryID, Score: score}
	for _, oid := range optionIDs {
		out.Options = append(out.Options, Option{
			ID:         oid,
			QuestionID: id,
			IsCorrect:  in(correctIDs, oid),
		})
	}
	return out
}
