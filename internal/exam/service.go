package exam

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/examforge/examforge/internal/apperr"
	"github.com/examforge/examforge/internal/grading"
)

// passRate is the fixed share of the template total needed to pass.
const passRate = 0.6

// Service ties the history analyzer, the selector and the grader to the
// store. All mutation goes through the store's two atomic write paths.
type Service struct {
	store    Store
	analyzer *Analyzer
	selector *Selector
	grader   grading.Grader
	now      func() time.Time
	newID    func() string
}

func NewService(store Store, grader grading.Grader) *Service {
	return &Service{
		store:    store,
		analyzer: NewAnalyzer(store),
		selector: NewSelector(store),
		grader:   grader,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// StartExam assembles a fresh question set for the template, persists
// the attempt together with its snapshot rows, and returns the view the
// client takes the exam from. Option correctness is never included.
func (s *Service) StartExam(ctx context.Context, userID, templateID int64) (StartResult, error) {
	tpl, err := s.store.TemplateByID(ctx, templateID)
	if err != nil {
		return StartResult{}, err
	}

	var questions []Question
	if tpl.Type == ExamNormal {
		weak, err := s.analyzer.WeakCategories(ctx, userID)
		if err != nil {
			return StartResult{}, err
		}
		excluded, err := s.analyzer.ExcludedQuestionIDs(ctx, userID)
		if err != nil {
			return StartResult{}, err
		}
		questions, err = s.selector.SelectNormal(ctx, tpl, weak, excluded)
		if err != nil {
			return StartResult{}, err
		}
	} else {
		questions, err = s.selector.SelectTargeted(ctx, tpl)
		if err != nil {
			return StartResult{}, err
		}
	}

	attempt := Attempt{
		ID:         s.newID(),
		UserID:     userID,
		TemplateID: templateID,
		Status:     StatusPending,
		CreatedAt:  s.now(),
	}
	rows := make([]AttemptQuestion, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, AttemptQuestion{
			AttemptID:  attempt.ID,
			QuestionID: q.ID,
			CategoryID: q.CategoryID,
		})
	}
	if err := s.store.CreateAttempt(ctx, attempt, rows); err != nil {
		return StartResult{}, err
	}

	views := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, questionView(q, nil))
	}
	return StartResult{
		AttemptID: attempt.ID,
		CreatedAt: attempt.CreatedAt,
		Questions: views,
	}, nil
}

// attemptForUser loads an attempt and hides it from everyone but its
// owner.
func (s *Service) attemptForUser(ctx context.Context, userID int64, attemptID string) (Attempt, error) {
	attempt, err := s.store.AttemptByID(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if attempt.UserID != userID {
		return Attempt{}, apperr.NotFound("attempt not found")
	}
	return attempt, nil
}

// SubmitExam grades the answers and finishes the attempt. Answers for
// questions outside the attempt's snapshot are skipped. The whole
// submission commits atomically; a second submission fails with
// Conflict and changes nothing.
func (s *Service) SubmitExam(ctx context.Context, userID int64, attemptID string, answers []Answer) (SubmitResult, error) {
	attempt, err := s.attemptForUser(ctx, userID, attemptID)
	if err != nil {
		return SubmitResult{}, err
	}
	if attempt.Status == StatusFinished {
		return SubmitResult{}, apperr.Conflict("exam already submitted")
	}

	rows, err := s.store.AttemptQuestions(ctx, attemptID)
	if err != nil {
		return SubmitResult{}, err
	}
	byQuestion := make(map[int64]AttemptQuestion, len(rows))
	for _, r := range rows {
		byQuestion[r.QuestionID] = r
	}

	questions, err := s.store.QuestionsByIDs(ctx, questionIDsOfRows(rows))
	if err != nil {
		return SubmitResult{}, err
	}
	qByID := make(map[int64]Question, len(questions))
	for _, q := range questions {
		qByID[q.ID] = q
	}

	total := 0
	graded := make([]GradedRow, 0, len(answers))
	for _, ans := range answers {
		if _, ok := byQuestion[ans.QuestionID]; !ok {
			continue // not part of this attempt's snapshot
		}
		delete(byQuestion, ans.QuestionID) // first answer per question wins
		q, ok := qByID[ans.QuestionID]
		if !ok {
			continue
		}
		res, err := s.grader.Grade(ctx, grading.Q{
			Type:             string(q.Type),
			Score:            q.Score,
			CorrectOptionIDs: correctOptionIDs(q),
		}, ans.SelectedOptionIDs)
		if err != nil {
			return SubmitResult{}, err
		}
		graded = append(graded, GradedRow{
			QuestionID:        ans.QuestionID,
			SelectedOptionIDs: ans.SelectedOptionIDs,
			IsCorrect:         res.Correct,
			Score:             res.Points,
		})
		total += res.Points
	}

	submittedAt := s.now()
	if err := s.store.FinishAttempt(ctx, attemptID, graded, total, submittedAt); err != nil {
		return SubmitResult{}, err
	}

	tpl, err := s.store.TemplateByID(ctx, attempt.TemplateID)
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{
		AttemptID:   attemptID,
		TotalScore:  total,
		PassStatus:  passed(total, tpl.TotalScore),
		SubmittedAt: submittedAt,
	}, nil
}

// GetAttemptDetail returns the attempt with its questions and the
// user's current selections. Correctness flags are stripped.
func (s *Service) GetAttemptDetail(ctx context.Context, userID int64, attemptID string) (AttemptDetail, error) {
	attempt, err := s.attemptForUser(ctx, userID, attemptID)
	if err != nil {
		return AttemptDetail{}, err
	}
	tpl, err := s.store.TemplateByID(ctx, attempt.TemplateID)
	if err != nil {
		return AttemptDetail{}, err
	}
	rows, err := s.store.AttemptQuestions(ctx, attemptID)
	if err != nil {
		return AttemptDetail{}, err
	}
	questions, err := s.store.QuestionsByIDs(ctx, questionIDsOfRows(rows))
	if err != nil {
		return AttemptDetail{}, err
	}
	qByID := make(map[int64]Question, len(questions))
	for _, q := range questions {
		qByID[q.ID] = q
	}

	views := make([]QuestionView, 0, len(rows))
	for _, r := range rows {
		q, ok := qByID[r.QuestionID]
		if !ok {
			continue
		}
		views = append(views, questionView(q, r.SelectedOptionIDs))
	}
	return AttemptDetail{
		AttemptID: attempt.ID,
		ExamName:  tpl.Name,
		ExamType:  tpl.Type,
		Duration:  tpl.Duration,
		Status:    attempt.Status,
		CreatedAt: attempt.CreatedAt,
		Questions: views,
	}, nil
}

// GetResult summarizes a finished attempt.
func (s *Service) GetResult(ctx context.Context, userID int64, attemptID string) (Result, error) {
	attempt, err := s.attemptForUser(ctx, userID, attemptID)
	if err != nil {
		return Result{}, err
	}
	if attempt.Status != StatusFinished {
		return Result{}, apperr.Conflict("exam not finished yet")
	}
	tpl, err := s.store.TemplateByID(ctx, attempt.TemplateID)
	if err != nil {
		return Result{}, err
	}
	rows, err := s.store.AttemptQuestions(ctx, attemptID)
	if err != nil {
		return Result{}, err
	}

	correct := 0
	for _, r := range rows {
		if r.IsCorrect {
			correct++
		}
	}
	obtained := 0
	if attempt.TotalScore != nil {
		obtained = *attempt.TotalScore
	}
	return Result{
		AttemptID:     attempt.ID,
		TotalScore:    tpl.TotalScore,
		ScoreObtained: obtained,
		CorrectCount:  correct,
		WrongCount:    len(rows) - correct,
		ExamTime:      attempt.CreatedAt,
		PassStatus:    passed(obtained, tpl.TotalScore),
	}, nil
}

// GetWrongQuestions lists every incorrect row of a finished attempt with
// the correct option set next to the user's selection.
func (s *Service) GetWrongQuestions(ctx context.Context, userID int64, attemptID string) (WrongQuestions, error) {
	attempt, err := s.attemptForUser(ctx, userID, attemptID)
	if err != nil {
		return WrongQuestions{}, err
	}
	if attempt.Status != StatusFinished {
		return WrongQuestions{}, apperr.Conflict("exam not finished yet")
	}
	rows, err := s.store.AttemptQuestions(ctx, attemptID)
	if err != nil {
		return WrongQuestions{}, err
	}
	var wrongRows []AttemptQuestion
	for _, r := range rows {
		if !r.IsCorrect {
			wrongRows = append(wrongRows, r)
		}
	}
	questions, err := s.store.QuestionsByIDs(ctx, questionIDsOfRows(wrongRows))
	if err != nil {
		return WrongQuestions{}, err
	}
	qByID := make(map[int64]Question, len(questions))
	for _, q := range questions {
		qByID[q.ID] = q
	}

	out := WrongQuestions{AttemptID: attemptID, WrongQuestions: []WrongQuestion{}}
	for _, r := range wrongRows {
		q, ok := qByID[r.QuestionID]
		if !ok {
			continue
		}
		out.WrongQuestions = append(out.WrongQuestions, WrongQuestion{
			QuestionID:       q.ID,
			Content:          q.Content,
			Type:             q.Type,
			CorrectOptionIDs: correctOptionIDs(q),
			YourOptionIDs:    r.SelectedOptionIDs,
		})
	}
	return out, nil
}

// ListAttempts returns the user's attempts, newest first.
func (s *Service) ListAttempts(ctx context.Context, userID int64) (AttemptRecords, error) {
	records, err := s.store.AttemptsByUser(ctx, userID)
	if err != nil {
		return AttemptRecords{}, err
	}
	if records == nil {
		records = []AttemptRecord{}
	}
	return AttemptRecords{UserID: userID, Records: records}, nil
}

func (s *Service) GetUserStats(ctx context.Context, userID int64) (UserStats, error) {
	return s.store.UserStats(ctx, userID)
}

func passed(obtained, totalScore int) bool {
	return float64(obtained) >= float64(totalScore)*passRate
}

func questionView(q Question, selected []int64) QuestionView {
	opts := make([]OptionView, 0, len(q.Options))
	for _, o := range q.Options {
		opts = append(opts, OptionView{OptionID: o.ID, Content: o.Content})
	}
	return QuestionView{
		QuestionID:        q.ID,
		Type:              q.Type,
		Content:           q.Content,
		Score:             q.Score,
		SelectedOptionIDs: selected,
		Options:           opts,
	}
}

func correctOptionIDs(q Question) []int64 {
	var ids []int64
	for _, o := range q.Options {
		if o.IsCorrect {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

func questionIDsOfRows(rows []AttemptQuestion) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.QuestionID)
	}
	return ids
}
