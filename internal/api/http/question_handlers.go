package http

import (
	"encoding/json"
	"net/http"

	"github.com/examforge/examforge/internal/apperr"
	"github.com/examforge/examforge/internal/bank"
	"github.com/examforge/examforge/internal/exam"
)

// --- categories ---

func ListCategoriesHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListCategories(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func CreateCategoryHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"categoryName"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, apperr.InvalidArgument("bad json"))
			return
		}
		c, err := store.CreateCategory(r.Context(), req.Name)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func UpdateCategoryHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			writeErr(w, err)
			return
		}
		var p bank.CategoryPatch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeErr(w, apperr.InvalidArgument("bad json"))
			return
		}
		c, err := store.UpdateCategory(r.Context(), id, p)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func DeleteCategoryHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			writeErr(w, err)
			return
		}
		if err := store.DeleteCategory(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// --- questions ---

func ListQuestionsHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListQuestions(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func GetQuestionHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			writeErr(w, err)
			return
		}
		q, err := store.QuestionByID(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func CreateQuestionHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q exam.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			writeErr(w, apperr.InvalidArgument("bad json"))
			return
		}
		created, err := store.CreateQuestion(r.Context(), q)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateQuestionHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			writeErr(w, err)
			return
		}
		var p bank.QuestionPatch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeErr(w, apperr.InvalidArgument("bad json"))
			return
		}
		q, err := store.UpdateQuestion(r.Context(), id, p)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func DeleteQuestionHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			writeErr(w, err)
			return
		}
		if err := store.DeleteQuestion(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// --- options ---

func ListOptionsHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionID, err := urlID(r, "id")
		if err != nil {
			writeErr(w, err)
			return
		}
		out, err := store.ListOptions(r.Context(), questionID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func CreateOptionHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionID, err := urlID(r, "id")
		if err != nil {
			writeErr(w, err)
			return
		}
		var req struct {
			Content   string `json:"content"`
			IsCorrect bool   `json:"isCorrect"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, apperr.InvalidArgument("bad json"))
			return
		}
		o, err := store.CreateOption(r.Context(), questionID, req.Content, req.IsCorrect)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, o)
	}
}

func UpdateOptionHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			writeErr(w, err)
			return
		}
		var p bank.OptionPatch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeErr(w, apperr.InvalidArgument("bad json"))
			return
		}
		o, err := store.UpdateOption(r.Context(), id, p)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, o)
	}
}

func DeleteOptionHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			writeErr(w, err)
			return
		}
		if err := store.DeleteOption(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
