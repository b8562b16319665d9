package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/examforge/examforge/internal/apperr"
	"github.com/examforge/examforge/internal/bank"
	"github.com/examforge/examforge/internal/exam"
)

func ListTemplatesHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListTemplates(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func GetTemplateHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			writeErr(w, err)
			return
		}
		t, err := store.TemplateByID(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func CreateTemplateHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t exam.Template
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			writeErr(w, apperr.InvalidArgument("bad json"))
			return
		}
		created, err := store.CreateTemplate(r.Context(), t)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateTemplateHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			writeErr(w, err)
			return
		}
		var p bank.TemplatePatch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeErr(w, apperr.InvalidArgument("bad json"))
			return
		}
		t, err := store.UpdateTemplate(r.Context(), id, p)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func DeleteTemplateHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			writeErr(w, err)
			return
		}
		if err := store.DeleteTemplate(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /template/status/{status}  status=upcoming|ongoing|finished
func ListTemplatesByStatusHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListTemplatesByStatus(r.Context(), chi.URLParam(r, "status"), time.Now())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func TemplateCountHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := store.TemplateCount(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": n})
	}
}
