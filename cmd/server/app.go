package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/akademika/obe-api/internal/config"
	"github.com/akademika/obe-api/internal/platform/postgres"
	"github.com/akademika/obe-api/internal/service"
	"github.com/akademika/obe-api/internal/service/auth"
	"github.com/akademika/obe-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore       store.UserStore
	programStore    store.ProgramStore
	curriculumStore store.CurriculumStore
	outcomeStore    store.OutcomeStore
	courseStore     store.CourseStore
	studentStore    store.StudentStore
	enrollmentStore store.EnrollmentStore

	// Services
	jwtService        auth.JWTService
	passwordVerifier  auth.PasswordVerifier
	programService    service.ProgramService
	curriculumService service.CurriculumService
	outcomeService    service.OutcomeService
	courseService     service.CourseService
	studentService    service.StudentService
	enrollmentService service.EnrollmentService
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	// Stores
	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, logger)
	app.programStore = postgres.NewPostgresProgramStore(db, logger)
	app.curriculumStore = postgres.NewPostgresCurriculumStore(db, logger)
	app.outcomeStore = postgres.NewPostgresOutcomeStore(db, logger)
	app.courseStore = postgres.NewPostgresCourseStore(db, logger)
	app.studentStore = postgres.NewPostgresStudentStore(db, logger)
	app.enrollmentStore = postgres.NewPostgresEnrollmentStore(db, logger)

	// Services
	app.programService, err = service.NewProgramService(app.programStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create program service: %w", err)
	}

	app.curriculumService, err = service.NewCurriculumService(
		db, app.curriculumStore, app.programStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create curriculum service: %w", err)
	}

	app.outcomeService, err = service.NewOutcomeService(
		db, app.outcomeStore, app.curriculumStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create outcome service: %w", err)
	}

	app.courseService, err = service.NewCourseService(
		app.courseStore, app.curriculumStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create course service: %w", err)
	}

	app.studentService, err = service.NewStudentService(
		app.studentStore, app.curriculumStore, app.programStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create student service: %w", err)
	}

	app.enrollmentService, err = service.NewEnrollmentService(
		db, app.enrollmentStore, app.studentStore, app.courseStore,
		app.curriculumStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create enrollment service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
