package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/examforge/examforge/internal/apperr"
	"github.com/examforge/examforge/internal/exam"
	"github.com/examforge/examforge/internal/rbac"
)

// ExamService is the slice of the exam engine the handlers need.
type ExamService interface {
	StartExam(ctx context.Context, userID, templateID int64) (exam.StartResult, error)
	SubmitExam(ctx context.Context, userID int64, attemptID string, answers []exam.Answer) (exam.SubmitResult, error)
	GetAttemptDetail(ctx context.Context, userID int64, attemptID string) (exam.AttemptDetail, error)
	GetResult(ctx context.Context, userID int64, attemptID string) (exam.Result, error)
	GetWrongQuestions(ctx context.Context, userID int64, attemptID string) (exam.WrongQuestions, error)
	ListAttempts(ctx context.Context, userID int64) (exam.AttemptRecords, error)
	GetUserStats(ctx context.Context, userID int64) (exam.UserStats, error)
}

// POST /user-exam/start/{templateID}
func StartExamHandler(svc ExamService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateID, err := urlID(r, "templateID")
		if err != nil {
			writeErr(w, err)
			return
		}
		userID := rbac.SubjectFromContext(r.Context())
		res, err := svc.StartExam(r.Context(), userID, templateID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// POST /user-exam/submit/{attemptID}  { "answers": [...] }
func SubmitExamHandler(svc ExamService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		var req struct {
			Answers []exam.Answer `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, apperr.InvalidArgument("bad json"))
			return
		}
		res, err := svc.SubmitExam(r.Context(), rbac.SubjectFromContext(r.Context()), attemptID, req.Answers)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// GET /user-exam/{attemptID}
func GetAttemptDetailHandler(svc ExamService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := svc.GetAttemptDetail(r.Context(), rbac.SubjectFromContext(r.Context()), chi.URLParam(r, "attemptID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// GET /user-exam/result/{attemptID}
func GetResultHandler(svc ExamService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.GetResult(r.Context(), rbac.SubjectFromContext(r.Context()), chi.URLParam(r, "attemptID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// GET /user-exam/{attemptID}/wrong-questions
func GetWrongQuestionsHandler(svc ExamService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.GetWrongQuestions(r.Context(), rbac.SubjectFromContext(r.Context()), chi.URLParam(r, "attemptID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// GET /user-exam/my/records
func ListAttemptsHandler(svc ExamService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.ListAttempts(r.Context(), rbac.SubjectFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// GET /user-exam/stats
func UserStatsHandler(svc ExamService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.GetUserStats(r.Context(), rbac.SubjectFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
