// Package bank is the admin side of the question store: category,
// question, option and exam-template management.
package bank

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/examforge/examforge/internal/apperr"
	"github.com/examforge/examforge/internal/exam"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// Patch types carry named optional fields; nil means "leave unchanged".

type CategoryPatch struct {
	Name *string `json:"categoryName"`
}

type QuestionPatch struct {
	Type       *exam.QuestionType `json:"questionType"`
	Content    *string            `json:"content"`
	Score      *int               `json:"score"`
	CategoryID *int64             `json:"categoryId"`
}

type OptionPatch struct {
	Content   *string `json:"content"`
	IsCorrect *bool   `json:"isCorrect"`
}

type TemplatePatch struct {
	Name                *string        `json:"examName"`
	Type                *exam.ExamType `json:"examType"`
	Duration            *int           `json:"duration"`
	TotalScore          *int           `json:"totalScore"`
	SingleChoiceCount   *int           `json:"singleChoiceCount"`
	MultipleChoiceCount *int           `json:"multipleChoiceCount"`
	AvailableStart      *time.Time     `json:"availableStart"`
	AvailableEnd        *time.Time     `json:"availableEnd"`
	TargetCategoryIDs   *[]int64       `json:"targetCategoryIds"`
}

// --- categories ---

func (s *SQLStore) ListCategories(ctx context.Context) ([]exam.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category_id, category_name FROM question_categories ORDER BY category_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []exam.Category{}
	for rows.Next() {
		var c exam.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateCategory(ctx context.Context, name string) (exam.Category, error) {
	if name == "" {
		return exam.Category{}, apperr.InvalidArgument("category name required")
	}
	c := exam.Category{Name: name}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO question_categories (category_name) VALUES ($1) RETURNING category_id`,
		name).Scan(&c.ID)
	if err != nil {
		return exam.Category{}, err
	}
	return c, nil
}

func (s *SQLStore) UpdateCategory(ctx context.Context, id int64, p CategoryPatch) (exam.Category, error) {
	var c exam.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT category_id, category_name FROM question_categories WHERE category_id=$1`, id).
		Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return exam.Category{}, apperr.NotFound("category not found")
	}
	if err != nil {
		return exam.Category{}, err
	}
	if p.Name != nil {
		if *p.Name == "" {
			return exam.Category{}, apperr.InvalidArgument("category name required")
		}
		c.Name = *p.Name
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE question_categories SET category_name=$1 WHERE category_id=$2`, c.Name, c.ID)
	if err != nil {
		return exam.Category{}, err
	}
	return c, nil
}

func (s *SQLStore) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM question_categories WHERE category_id=$1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "category not found")
}

// --- questions ---

func (s *SQLStore) ListQuestions(ctx context.Context) ([]exam.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, question_type, content, score, category_id FROM questions ORDER BY question_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	qs := []exam.Question{}
	for rows.Next() {
		var q exam.Question
		if err := rows.Scan(&q.ID, &q.Type, &q.Content, &q.Score, &q.CategoryID); err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range qs {
		opts, err := s.ListOptions(ctx, qs[i].ID)
		if err != nil {
			return nil, err
		}
		qs[i].Options = opts
	}
	return qs, nil
}

func (s *SQLStore) QuestionByID(ctx context.Context, id int64) (exam.Question, error) {
	var q exam.Question
	err := s.db.QueryRowContext(ctx,
		`SELECT question_id, question_type, content, score, category_id FROM questions WHERE question_id=$1`, id).
		Scan(&q.ID, &q.Type, &q.Content, &q.Score, &q.CategoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return exam.Question{}, apperr.NotFound("question not found")
	}
	if err != nil {
		return exam.Question{}, err
	}
	q.Options, err = s.ListOptions(ctx, id)
	if err != nil {
		return exam.Question{}, err
	}
	return q, nil
}

func (s *SQLStore) CreateQuestion(ctx context.Context, q exam.Question) (exam.Question, error) {
	if err := validQuestionType(q.Type); err != nil {
		return exam.Question{}, err
	}
	if q.Content == "" {
		return exam.Question{}, apperr.InvalidArgument("question content required")
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO questions (question_type, content, score, category_id)
		 VALUES ($1,$2,$3,$4) RETURNING question_id`,
		string(q.Type), q.Content, q.Score, q.CategoryID).Scan(&q.ID)
	if err != nil {
		return exam.Question{}, err
	}
	return q, nil
}

func (s *SQLStore) UpdateQuestion(ctx context.Context, id int64, p QuestionPatch) (exam.Question, error) {
	q, err := s.QuestionByID(ctx, id)
	if err != nil {
		return exam.Question{}, err
	}
	if p.Type != nil {
		if err := validQuestionType(*p.Type); err != nil {
			return exam.Question{}, err
		}
		q.Type = *p.Type
	}
	if p.Content != nil {
		q.Content = *p.Content
	}
	if p.Score != nil {
		q.Score = *p.Score
	}
	if p.CategoryID != nil {
		q.CategoryID = *p.CategoryID
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE questions SET question_type=$1, content=$2, score=$3, category_id=$4 WHERE question_id=$5`,
		string(q.Type), q.Content, q.Score, q.CategoryID, id)
	if err != nil {
		return exam.Question{}, err
	}
	return q, nil
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE question_id=$1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "question not found")
}

// --- options ---

func (s *SQLStore) ListOptions(ctx context.Context, questionID int64) ([]exam.Option, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT option_id, question_id, content, is_correct FROM question_options
		 WHERE question_id=$1 ORDER BY option_id`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []exam.Option{}
	for rows.Next() {
		var o exam.Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Content, &o.IsCorrect); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateOption(ctx context.Context, questionID int64, content string, isCorrect bool) (exam.Option, error) {
	if content == "" {
		return exam.Option{}, apperr.InvalidArgument("option content required")
	}
	if _, err := s.QuestionByID(ctx, questionID); err != nil {
		return exam.Option{}, err
	}
	o := exam.Option{QuestionID: questionID, Content: content, IsCorrect: isCorrect}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO question_options (question_id, content, is_correct)
		 VALUES ($1,$2,$3) RETURNING option_id`,
		questionID, content, isCorrect).Scan(&o.ID)
	if err != nil {
		return exam.Option{}, err
	}
	return o, nil
}

func (s *SQLStore) UpdateOption(ctx context.Context, id int64, p OptionPatch) (exam.Option, error) {
	var o exam.Option
	err := s.db.QueryRowContext(ctx,
		`SELECT option_id, question_id, content, is_correct FROM question_options WHERE option_id=$1`, id).
		Scan(&o.ID, &o.QuestionID, &o.Content, &o.IsCorrect)
	if errors.Is(err, sql.ErrNoRows) {
		return exam.Option{}, apperr.NotFound("option not found")
	}
	if err != nil {
		return exam.Option{}, err
	}
	if p.Content != nil {
		o.Content = *p.Content
	}
	if p.IsCorrect != nil {
		o.IsCorrect = *p.IsCorrect
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE question_options SET content=$1, is_correct=$2 WHERE option_id=$3`,
		o.Content, o.IsCorrect, o.ID)
	if err != nil {
		return exam.Option{}, err
	}
	return o, nil
}

func (s *SQLStore) DeleteOption(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM question_options WHERE option_id=$1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "option not found")
}

// --- templates ---

const templateCols = `template_id, exam_name, exam_type, duration, total_score,
	single_choice_count, multiple_choice_count, available_start, available_end, target_category_ids`

func (s *SQLStore) ListTemplates(ctx context.Context) ([]exam.Template, error) {
	return s.queryTemplates(ctx, `SELECT `+templateCols+` FROM exam_templates ORDER BY template_id`)
}

func (s *SQLStore) TemplateByID(ctx context.Context, id int64) (exam.Template, error) {
	out, err := s.queryTemplates(ctx,
		`SELECT `+templateCols+` FROM exam_templates WHERE template_id=$1`, id)
	if err != nil {
		return exam.Template{}, err
	}
	if len(out) == 0 {
		return exam.Template{}, apperr.NotFound("exam template not found")
	}
	return out[0], nil
}

func (s *SQLStore) CreateTemplate(ctx context.Context, t exam.Template) (exam.Template, error) {
	if err := validExamType(t.Type); err != nil {
		return exam.Template{}, err
	}
	if t.SingleChoiceCount < 0 || t.MultipleChoiceCount < 0 || t.RequiredCount() == 0 {
		return exam.Template{}, apperr.InvalidArgument("template quotas must be non-negative and sum to at least one")
	}
	targets, err := marshalTargets(t.TargetCategoryIDs)
	if err != nil {
		return exam.Template{}, err
	}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO exam_templates (exam_name, exam_type, duration, total_score,
			single_choice_count, multiple_choice_count, available_start, available_end, target_category_ids)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING template_id`,
		t.Name, string(t.Type), t.Duration, t.TotalScore,
		t.SingleChoiceCount, t.MultipleChoiceCount,
		t.AvailableStart.Unix(), t.AvailableEnd.Unix(), targets).Scan(&t.ID)
	if err != nil {
		return exam.Template{}, err
	}
	return t, nil
}

func (s *SQLStore) UpdateTemplate(ctx context.Context, id int64, p TemplatePatch) (exam.Template, error) {
	t, err := s.TemplateByID(ctx, id)
	if err != nil {
		return exam.Template{}, err
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Type != nil {
		if err := validExamType(*p.Type); err != nil {
			return exam.Template{}, err
		}
		t.Type = *p.Type
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
	if p.TotalScore != nil {
		t.TotalScore = *p.TotalScore
	}
	if p.SingleChoiceCount != nil {
		t.SingleChoiceCount = *p.SingleChoiceCount
	}
	if p.MultipleChoiceCount != nil {
		t.MultipleChoiceCount = *p.MultipleChoiceCount
	}
	if p.AvailableStart != nil {
		t.AvailableStart = *p.AvailableStart
	}
	if p.AvailableEnd != nil {
		t.AvailableEnd = *p.AvailableEnd
	}
	if p.TargetCategoryIDs != nil {
		t.TargetCategoryIDs = *p.TargetCategoryIDs
	}
	if t.SingleChoiceCount < 0 || t.MultipleChoiceCount < 0 || t.RequiredCount() == 0 {
		return exam.Template{}, apperr.InvalidArgument("template quotas must be non-negative and sum to at least one")
	}
	targets, err := marshalTargets(t.TargetCategoryIDs)
	if err != nil {
		return exam.Template{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE exam_templates SET exam_name=$1, exam_type=$2, duration=$3, total_score=$4,
			single_choice_count=$5, multiple_choice_count=$6, available_start=$7, available_end=$8,
			target_category_ids=$9
		 WHERE template_id=$10`,
		t.Name, string(t.Type), t.Duration, t.TotalScore,
		t.SingleChoiceCount, t.MultipleChoiceCount,
		t.AvailableStart.Unix(), t.AvailableEnd.Unix(), targets, id)
	if err != nil {
		return exam.Template{}, err
	}
	return t, nil
}

func (s *SQLStore) DeleteTemplate(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exam_templates WHERE template_id=$1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "exam template not found")
}

// ListTemplatesByStatus filters templates by where "now" falls in their
// availability window.
func (s *SQLStore) ListTemplatesByStatus(ctx context.Context, status string, now time.Time) ([]exam.Template, error) {
	ts := now.Unix()
	switch status {
	case "upcoming":
		return s.queryTemplates(ctx,
			`SELECT `+templateCols+` FROM exam_templates WHERE available_start > $1 ORDER BY template_id`, ts)
	case "ongoing":
		return s.queryTemplates(ctx,
			`SELECT `+templateCols+` FROM exam_templates WHERE available_start < $1 AND available_end > $2 ORDER BY template_id`, ts, ts)
	case "finished":
		return s.queryTemplates(ctx,
			`SELECT `+templateCols+` FROM exam_templates WHERE available_end < $1 ORDER BY template_id`, ts)
	default:
		return nil, apperr.InvalidArgument("unknown status: " + status)
	}
}

func (s *SQLStore) TemplateCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exam_templates`).Scan(&n)
	return n, err
}

func (s *SQLStore) queryTemplates(ctx context.Context, query string, args ...any) ([]exam.Template, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []exam.Template{}
	for rows.Next() {
		var t exam.Template
		var start, end int64
		var targets sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &t.Type, &t.Duration, &t.TotalScore,
			&t.SingleChoiceCount, &t.MultipleChoiceCount, &start, &end, &targets); err != nil {
			return nil, err
		}
		t.AvailableStart = time.Unix(start, 0)
		t.AvailableEnd = time.Unix(end, 0)
		if targets.Valid && targets.String != "" {
			if err := json.Unmarshal([]byte(targets.String), &t.TargetCategoryIDs); err != nil {
				return nil, err
			}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// --- helpers ---

func validQuestionType(t exam.QuestionType) error {
	if t != exam.TypeSingle && t != exam.TypeMultiple {
		return apperr.InvalidArgument("question type must be single or multiple")
	}
	return nil
}

func validExamType(t exam.ExamType) error {
	if t != exam.ExamNormal && t != exam.ExamMakeup && t != exam.ExamSpecial {
		return apperr.InvalidArgument("exam type must be normal, makeup or special")
	}
	return nil
}

func marshalTargets(ids []int64) (sql.NullString, error) {
	if len(ids) == 0 {
		return sql.NullString{}, nil
	}
	buf, err := json.Marshal(ids)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(buf), Valid: true}, nil
}

func requireAffected(res sql.Result, notFoundMsg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(notFoundMsg)
	}
	return nil
}
