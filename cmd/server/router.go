package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/akademika/obe-api/internal/api"
	apimiddleware "github.com/akademika/obe-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	programHandler := api.NewProgramHandler(app.programService, app.logger)
	curriculumHandler := api.NewCurriculumHandler(app.curriculumService, app.logger)
	outcomeHandler := api.NewOutcomeHandler(app.outcomeService, app.logger)
	courseHandler := api.NewCourseHandler(app.courseService, app.logger)
	studentHandler := api.NewStudentHandler(app.studentService, app.logger)
	enrollmentHandler := api.NewEnrollmentHandler(app.enrollmentService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Read endpoints, any authenticated role
			r.Get("/programs", programHandler.List)
			r.Get("/programs/{programID}", programHandler.Get)
			r.Get("/programs/{programID}/primary-curriculum", curriculumHandler.GetPrimary)

			r.Get("/curricula", curriculumHandler.List)
			r.Get("/curricula/{id}", curriculumHandler.Get)
			r.Get("/curricula/{id}/stats", curriculumHandler.Stats)
			r.Get("/curricula/{id}/outcomes", outcomeHandler.List)
			r.Get("/curricula/{id}/outcomes/summary", outcomeHandler.Summary)
			r.Get("/curricula/{id}/courses", courseHandler.List)
			r.Get("/curricula/{id}/courses/completeness", courseHandler.Completeness)
			r.Get("/curricula/{id}/courses/semester-stats", courseHandler.SemesterStats)
			r.Get("/curricula/{id}/courses/credits", courseHandler.TotalCredits)

			r.Get("/outcomes/{id}", outcomeHandler.Get)
			r.Get("/courses/{curriculumID}/{code}", courseHandler.Get)
			r.Get("/courses/{curriculumID}/{code}/prerequisites", courseHandler.ListPrerequisites)

			r.Get("/students", studentHandler.List)
			r.Get("/students/{id}", studentHandler.Get)
			r.Get("/students/{id}/enrollments", enrollmentHandler.ListByStudent)
			r.Get("/enrollments/{id}", enrollmentHandler.Get)

			// Enrollment flow, any authenticated role
			r.Post("/students/{id}/enrollments", enrollmentHandler.Enroll)
			r.Post("/enrollments/{id}/drop", enrollmentHandler.Drop)
			r.Put("/enrollments/{id}/grade", enrollmentHandler.RecordGrade)

			// Mutating curriculum-management endpoints require kaprodi or
			// admin.
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireCurriculumManager)

				r.Post("/programs", programHandler.Create)
				r.Put("/programs/{programID}", programHandler.Update)

				r.Post("/curricula", curriculumHandler.Create)
				r.Put("/curricula/{id}", curriculumHandler.Update)
				r.Delete("/curricula/{id}", curriculumHandler.Delete)
				r.Post("/curricula/{id}/submit", curriculumHandler.SubmitForReview)
				r.Post("/curricula/{id}/approve", curriculumHandler.Approve)
				r.Post("/curricula/{id}/activate", curriculumHandler.Activate)
				r.Post("/curricula/{id}/deactivate", curriculumHandler.Deactivate)
				r.Post("/curricula/{id}/archive", curriculumHandler.Archive)

				r.Post("/curricula/{id}/outcomes", outcomeHandler.Create)
				r.Put("/curricula/{id}/outcomes/reorder", outcomeHandler.Reorder)
				r.Put("/outcomes/{id}", outcomeHandler.Update)
				r.Delete("/outcomes/{id}", outcomeHandler.Remove)

				r.Post("/curricula/{id}/courses", courseHandler.Create)
				r.Put("/courses/{curriculumID}/{code}", courseHandler.Update)
				r.Delete("/courses/{curriculumID}/{code}", courseHandler.Delete)
				r.Post("/courses/{curriculumID}/{code}/deactivate", courseHandler.Deactivate)
				r.Post("/courses/{curriculumID}/{code}/reactivate", courseHandler.Reactivate)
				r.Post("/courses/{curriculumID}/{code}/prerequisites", courseHandler.AddPrerequisite)
				r.Delete("/prerequisites/{id}", courseHandler.RemovePrerequisite)

				r.Post("/students", studentHandler.Create)
				r.Put("/students/{id}", studentHandler.Update)
				r.Put("/students/{id}/status", studentHandler.UpdateStatus)
				r.Put("/students/{id}/curriculum", studentHandler.AssignCurriculum)
			})
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
