package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/taskvault/taskvault-api/internal/api"
	apimiddleware "github.com/taskvault/taskvault-api/internal/api/middleware"
)

// setupRouter configures all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordHasher, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	tagHandler := api.NewTagHandler(app.tagService, app.logger)
	subtaskHandler := api.NewSubtaskHandler(app.subtaskService, app.logger)
	authenticator := apimiddleware.NewAuthenticator(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints.
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Everything else requires a valid token.
		r.Group(func(r chi.Router) {
			r.Use(authenticator.Authenticate)

			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks", taskHandler.ListTasks)
			r.Post("/tasks/bulk", taskHandler.BulkCreateTasks)
			r.Patch("/tasks/bulk", taskHandler.BulkUpdateTasks)
			r.Delete("/tasks/bulk", taskHandler.BulkDeleteTasks)
			r.Get("/tasks/{taskID}", taskHandler.GetTask)
			r.Patch("/tasks/{taskID}", taskHandler.UpdateTask)
			r.Delete("/tasks/{taskID}", taskHandler.DeleteTask)

			r.Post("/tasks/{taskID}/subtasks", subtaskHandler.CreateSubtask)
			r.Get("/tasks/{taskID}/subtasks", subtaskHandler.ListSubtasks)
			r.Patch("/subtasks/{subtaskID}", subtaskHandler.UpdateSubtask)
			r.Delete("/subtasks/{subtaskID}", subtaskHandler.DeleteSubtask)

			r.Post("/tags", tagHandler.CreateTag)
			r.Get("/tags", tagHandler.ListTags)
			r.Patch("/tags/{tagID}", tagHandler.UpdateTag)
			r.Delete("/tags/{tagID}", tagHandler.DeleteTag)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
