package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/examforge/examforge/internal/apperr"
	syncx "github.com/examforge/examforge/internal/sync"
)

// SQLStore implements Store on database/sql. Random sampling uses the
// engine's random() ordering, which both supported drivers provide.
type SQLStore struct {
	db     *sql.DB
	events *syncx.EventRepo
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, events: syncx.NewEventRepo()}
}

// --- sampling ---

func (s *SQLStore) Sample(ctx context.Context, f SampleFilter, n int) ([]Question, error) {
	if n <= 0 {
		return nil, nil
	}

	var b strings.Builder
	var args []any
	b.WriteString(`SELECT question_id, question_type, content, score, category_id FROM questions`)

	var conds []string
	add := func(cond string, vals ...any) {
		conds = append(conds, cond)
		args = append(args, vals...)
	}
	if f.Type != "" {
		add(fmt.Sprintf("question_type = $%d", len(args)+1), string(f.Type))
	}
	if len(f.CategoryIDs) > 0 {
		add(fmt.Sprintf("category_id IN (%s)", placeholders(len(args)+1, len(f.CategoryIDs))), int64Args(f.CategoryIDs)...)
	}
	if len(f.NotCategoryIDs) > 0 {
		add(fmt.Sprintf("category_id NOT IN (%s)", placeholders(len(args)+1, len(f.NotCategoryIDs))), int64Args(f.NotCategoryIDs)...)
	}
	if len(f.ExcludeIDs) > 0 {
		add(fmt.Sprintf("question_id NOT IN (%s)", placeholders(len(args)+1, len(f.ExcludeIDs))), int64Args(f.ExcludeIDs)...)
	}
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(fmt.Sprintf(" ORDER BY random() LIMIT $%d", len(args)+1))
	args = append(args, n)

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var qs []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.Type, &q.Content, &q.Score, &q.CategoryID); err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return s.attachOptions(ctx, qs)
}

func (s *SQLStore) QuestionsByIDs(ctx context.Context, ids []int64) ([]Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := fmt.Sprintf(`SELECT question_id, question_type, content, score, category_id
		FROM questions WHERE question_id IN (%s)`, placeholders(1, len(ids)))
	rows, err := s.db.QueryContext(ctx, q, int64Args(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var qs []Question
	for rows.Next() {
		var qu Question
		if err := rows.Scan(&qu.ID, &qu.Type, &qu.Content, &qu.Score, &qu.CategoryID); err != nil {
			return nil, err
		}
		qs = append(qs, qu)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return s.attachOptions(ctx, qs)
}

func (s *SQLStore) attachOptions(ctx context.Context, qs []Question) ([]Question, error) {
	if len(qs) == 0 {
		return qs, nil
	}
	ids := questionIDs(qs)
	q := fmt.Sprintf(`SELECT option_id, question_id, content, is_correct
		FROM question_options WHERE question_id IN (%s) ORDER BY option_id`, placeholders(1, len(ids)))
	rows, err := s.db.QueryContext(ctx, q, int64Args(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byQuestion := map[int64][]Option{}
	for rows.Next() {
		var o Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Content, &o.IsCorrect); err != nil {
			return nil, err
		}
		byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range qs {
		qs[i].Options = byQuestion[qs[i].ID]
	}
	return qs, nil
}

// --- templates ---

func (s *SQLStore) TemplateByID(ctx context.Context, id int64) (Template, error) {
	row := s.db.QueryRowContext(ctx, `SELECT template_id, exam_name, exam_type, duration, total_score,
		single_choice_count, multiple_choice_count, available_start, available_end, target_category_ids
		FROM exam_templates WHERE template_id=$1`, id)
	return scanTemplate(row)
}

type rowScanner interface{ Scan(dest ...any) error }

func scanTemplate(row rowScanner) (Template, error) {
	var t Template
	var start, end int64
	var targets sql.NullString
	err := row.Scan(&t.ID, &t.Name, &t.Type, &t.Duration, &t.TotalScore,
		&t.SingleChoiceCount, &t.MultipleChoiceCount, &start, &end, &targets)
	if errors.Is(err, sql.ErrNoRows) {
		return Template{}, apperr.NotFound("exam template not found")
	}
	if err != nil {
		return Template{}, err
	}
	t.AvailableStart = time.Unix(start, 0)
	t.AvailableEnd = time.Unix(end, 0)
	if targets.Valid && targets.String != "" {
		if err := json.Unmarshal([]byte(targets.String), &t.TargetCategoryIDs); err != nil {
			return Template{}, fmt.Errorf("bad target_category_ids for template %d: %w", t.ID, err)
		}
	}
	return t, nil
}

// --- history ---

func (s *SQLStore) IncorrectAnswers(ctx context.Context, userID int64) ([]IncorrectAnswer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ueq.question_id, ueq.category_id
		FROM user_exam_questions ueq
		JOIN user_exams ue ON ue.user_exam_id = ueq.user_exam_id
		WHERE ue.user_id=$1 AND ueq.is_correct=FALSE AND ue.status='finished'`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IncorrectAnswer
	for rows.Next() {
		var ia IncorrectAnswer
		if err := rows.Scan(&ia.QuestionID, &ia.CategoryID); err != nil {
			return nil, err
		}
		out = append(out, ia)
	}
	return out, rows.Err()
}

// --- attempts ---

func (s *SQLStore) CreateAttempt(ctx context.Context, a Attempt, rows []AttemptQuestion) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO user_exams (user_exam_id, user_id, template_id, status, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.UserID, a.TemplateID, string(a.Status), a.CreatedAt.Unix())
	if err != nil {
		return err
	}
	for _, r := range rows {
		_, err = tx.ExecContext(ctx, `INSERT INTO user_exam_questions
			(user_exam_id, question_id, category_id, selected_option_ids, is_correct, score)
			VALUES ($1,$2,$3,'[]',FALSE,0)`,
			a.ID, r.QuestionID, r.CategoryID)
		if err != nil {
			return err
		}
	}
	err = s.events.Append(ctx, tx, syncx.EventAttemptStarted, a.ID, map[string]any{
		"user_id":     a.UserID,
		"template_id": a.TemplateID,
		"questions":   len(rows),
	})
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) AttemptByID(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT user_exam_id, user_id, template_id, total_score, status, created_at, submitted_at
		FROM user_exams WHERE user_exam_id=$1`, id)

	var a Attempt
	var total sql.NullInt64
	var created int64
	var submitted sql.NullInt64
	err := row.Scan(&a.ID, &a.UserID, &a.TemplateID, &total, &a.Status, &created, &submitted)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, apperr.NotFound("attempt not found")
	}
	if err != nil {
		return Attempt{}, err
	}
	if total.Valid {
		v := int(total.Int64)
		a.TotalScore = &v
	}
	a.CreatedAt = time.Unix(created, 0)
	if submitted.Valid {
		t := time.Unix(submitted.Int64, 0)
		a.SubmittedAt = &t
	}
	return a, nil
}

func (s *SQLStore) AttemptQuestions(ctx context.Context, attemptID string) ([]AttemptQuestion, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_exam_question_id, user_exam_id, question_id, category_id,
		selected_option_ids, is_correct, score
		FROM user_exam_questions WHERE user_exam_id=$1 ORDER BY user_exam_question_id`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AttemptQuestion
	for rows.Next() {
		var r AttemptQuestion
		var selected string
		if err := rows.Scan(&r.ID, &r.AttemptID, &r.QuestionID, &r.CategoryID, &selected, &r.IsCorrect, &r.Score); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(selected), &r.SelectedOptionIDs); err != nil {
			return nil, fmt.Errorf("bad selected_option_ids for row %d: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) FinishAttempt(ctx context.Context, attemptID string, rows []GradedRow, totalScore int, submittedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Guarded transition: only one submission can move pending->finished.
	res, err := tx.ExecContext(ctx, `UPDATE user_exams
		SET status='finished', total_score=$1, submitted_at=$2
		WHERE user_exam_id=$3 AND status='pending'`,
		totalScore, submittedAt.Unix(), attemptID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var status string
		err := tx.QueryRowContext(ctx, `SELECT status FROM user_exams WHERE user_exam_id=$1`, attemptID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("attempt not found")
		}
		if err != nil {
			return err
		}
		return apperr.Conflict("exam already submitted")
	}

	for _, r := range rows {
		buf, err := json.Marshal(emptyNotNil(r.SelectedOptionIDs))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE user_exam_questions
			SET selected_option_ids=$1, is_correct=$2, score=$3
			WHERE user_exam_id=$4 AND question_id=$5`,
			string(buf), r.IsCorrect, r.Score, attemptID, r.QuestionID)
		if err != nil {
			return err
		}
	}
	err = s.events.Append(ctx, tx, syncx.EventAttemptSubmitted, attemptID, map[string]any{
		"total_score": totalScore,
		"answered":    len(rows),
	})
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) AttemptsByUser(ctx context.Context, userID int64) ([]AttemptRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ue.user_exam_id, t.exam_name, t.exam_type, ue.status,
		ue.total_score, ue.created_at, t.duration, t.total_score
		FROM user_exams ue
		JOIN exam_templates t ON t.template_id = ue.template_id
		WHERE ue.user_id=$1 ORDER BY ue.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AttemptRecord
	for rows.Next() {
		var r AttemptRecord
		var score sql.NullInt64
		var created int64
		if err := rows.Scan(&r.AttemptID, &r.ExamName, &r.ExamType, &r.Status, &score, &created, &r.Duration, &r.TotalScore); err != nil {
			return nil, err
		}
		if score.Valid {
			v := int(score.Int64)
			r.Score = &v
		}
		r.Time = time.Unix(created, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) UserStats(ctx context.Context, userID int64) (UserStats, error) {
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COUNT(CASE WHEN status='finished' THEN 1 END),
		COALESCE(AVG(CASE WHEN status='finished' THEN total_score END), 0)
		FROM user_exams WHERE user_id=$1`, userID)

	st := UserStats{UserID: userID}
	if err := row.Scan(&st.TotalAttempts, &st.FinishedCount, &st.AverageScore); err != nil {
		return UserStats{}, err
	}
	return st, nil
}

// --- helpers ---

func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func emptyNotNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
