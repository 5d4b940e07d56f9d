package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/taskvault/taskvault-api/internal/config"
	"github.com/taskvault/taskvault-api/internal/platform/postgres"
	"github.com/taskvault/taskvault-api/internal/service"
	"github.com/taskvault/taskvault-api/internal/service/auth"
	"github.com/taskvault/taskvault-api/internal/store"
)

// application holds the wired dependency graph of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore

	taskService    service.TaskService
	tagService     service.TagService
	subtaskService service.SubtaskService

	jwtService     auth.JWTService
	passwordHasher auth.PasswordHasher
}

// newApplication wires stores and services on top of an open database
// connection.
func newApplication(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*application, error) {
	taskStore := postgres.NewTaskStore(db)
	tagStore := postgres.NewTagStore(db)
	subtaskStore := postgres.NewSubtaskStore(db)
	userStore := postgres.NewUserStore(db)

	taskService, err := service.NewTaskService(db, taskStore, tagStore, subtaskStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	tagService, err := service.NewTagService(db, tagStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create tag service: %w", err)
	}

	subtaskService, err := service.NewSubtaskService(db, taskStore, subtaskStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create subtask service: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	return &application{
		config:         cfg,
		logger:         logger,
		db:             db,
		userStore:      userStore,
		taskService:    taskService,
		tagService:     tagService,
		subtaskService: subtaskService,
		jwtService:     jwtService,
		passwordHasher: auth.NewBcryptHasher(),
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
}
