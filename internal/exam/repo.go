package exam

import (
	"context"
	"time"
)

// SampleFilter narrows the pool a random draw operates on. Zero values
// mean "no restriction".
type SampleFilter struct {
	Type           QuestionType
	CategoryIDs    []int64
	NotCategoryIDs []int64
	ExcludeIDs     []int64
}

// Sampler draws n distinct questions (with options) uniformly at random
// from the filtered pool. Fewer than n are returned when the pool is
// smaller than n.
type Sampler interface {
	Sample(ctx context.Context, f SampleFilter, n int) ([]Question, error)
}

// IncorrectAnswer is one previously-wrong snapshot row of a user, across
// all of their attempts. The same question id may appear more than once.
type IncorrectAnswer struct {
	QuestionID int64
	CategoryID int64
}

// GradedRow is the write-back for a single answered snapshot row.
type GradedRow struct {
	QuestionID        int64
	SelectedOptionIDs []int64
	IsCorrect         bool
	Score             int
}

// Store is the persistence boundary of the exam engine. Both write
// paths (CreateAttempt, FinishAttempt) are atomic: either every row of
// the call commits or none does.
type Store interface {
	Sampler

	TemplateByID(ctx context.Context, id int64) (Template, error)
	QuestionsByIDs(ctx context.Context, ids []int64) ([]Question, error)

	IncorrectAnswers(ctx context.Context, userID int64) ([]IncorrectAnswer, error)

	CreateAttempt(ctx context.Context, a Attempt, rows []AttemptQuestion) error
	AttemptByID(ctx context.Context, id string) (Attempt, error)
	AttemptQuestions(ctx context.Context, attemptID string) ([]AttemptQuestion, error)

	// FinishAttempt applies grading results and flips the attempt to
	// finished. The transition is guarded: if the attempt is no longer
	// pending the call fails with Conflict and writes nothing.
	FinishAttempt(ctx context.Context, attemptID string, rows []GradedRow, totalScore int, submittedAt time.Time) error

	AttemptsByUser(ctx context.Context, userID int64) ([]AttemptRecord, error)
	UserStats(ctx context.Context, userID int64) (UserStats, error)
}
