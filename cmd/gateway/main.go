package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/examforge/examforge/internal/api/http"
	auth "github.com/examforge/examforge/internal/auth/middleware"
	"github.com/examforge/examforge/internal/bank"
	"github.com/examforge/examforge/internal/config"
	"github.com/examforge/examforge/internal/db"
	"github.com/examforge/examforge/internal/exam"
	"github.com/examforge/examforge/internal/grading"
	"github.com/examforge/examforge/internal/rbac"
	"github.com/examforge/examforge/internal/users"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	examStore := exam.NewSQLStore(dbh)
	examSvc := exam.NewService(examStore, grading.NewDefaultGrader())
	bankStore := bank.NewSQLStore(dbh)
	userStore := users.NewSQLStore(dbh)
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", api.LoginHandler(userStore, authSvc))
	r.Post("/auth/register", api.RegisterHandler(userStore))

	// Protected API (JWT → subject/role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("user:change_password")).
			Post("/auth/change-password", api.ChangePasswordHandler(userStore))
		pr.With(rbac.Require("user:delete_account")).
			Delete("/auth/account", api.DeleteAccountHandler(userStore))

		// Exam taking
		pr.Route("/user-exam", func(er chi.Router) {
			er.With(rbac.Require("exam:take")).
				Post("/start/{templateID}", api.StartExamHandler(examSvc))
			er.With(rbac.Require("exam:take")).
				Post("/submit/{attemptID}", api.SubmitExamHandler(examSvc))
			er.With(rbac.Require("exam:view-own")).
				Get("/my/records", api.ListAttemptsHandler(examSvc))
			er.With(rbac.Require("exam:view-own")).
				Get("/stats", api.UserStatsHandler(examSvc))
			er.With(rbac.Require("exam:view-own")).
				Get("/result/{attemptID}", api.GetResultHandler(examSvc))
			er.With(rbac.Require("exam:view-own")).
				Get("/{attemptID}/wrong-questions", api.GetWrongQuestionsHandler(examSvc))
			er.With(rbac.Require("exam:view-own")).
				Get("/{attemptID}", api.GetAttemptDetailHandler(examSvc))
		})

		// Question bank (admin)
		pr.Route("/question", func(qr chi.Router) {
			qr.Use(rbac.Require("bank:manage"))
			qr.Get("/categories", api.ListCategoriesHandler(bankStore))
			qr.Post("/categories", api.CreateCategoryHandler(bankStore))
			qr.Patch("/categories/{id}", api.UpdateCategoryHandler(bankStore))
			qr.Delete("/categories/{id}", api.DeleteCategoryHandler(bankStore))

			qr.Get("/", api.ListQuestionsHandler(bankStore))
			qr.Post("/", api.CreateQuestionHandler(bankStore))
			qr.Patch("/options/{id}", api.UpdateOptionHandler(bankStore))
			qr.Delete("/options/{id}", api.DeleteOptionHandler(bankStore))
			qr.Get("/{id}", api.GetQuestionHandler(bankStore))
			qr.Patch("/{id}", api.UpdateQuestionHandler(bankStore))
			qr.Delete("/{id}", api.DeleteQuestionHandler(bankStore))
			qr.Get("/{id}/options", api.ListOptionsHandler(bankStore))
			qr.Post("/{id}/options", api.CreateOptionHandler(bankStore))
		})

		// Exam templates (users can browse, admin manages)
		pr.Route("/template", func(tr chi.Router) {
			tr.With(rbac.Require("template:view")).
				Get("/", api.ListTemplatesHandler(bankStore))
			tr.With(rbac.Require("template:view")).
				Get("/status/{status}", api.ListTemplatesByStatusHandler(bankStore))
			tr.With(rbac.Require("template:manage")).
				Get("/stats/count", api.TemplateCountHandler(bankStore))
			tr.With(rbac.Require("template:view")).
				Get("/{id}", api.GetTemplateHandler(bankStore))
			tr.With(rbac.Require("template:manage")).
				Post("/", api.CreateTemplateHandler(bankStore))
			tr.With(rbac.Require("template:manage")).
				Patch("/{id}", api.UpdateTemplateHandler(bankStore))
			tr.With(rbac.Require("template:manage")).
				Delete("/{id}", api.DeleteTemplateHandler(bankStore))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
