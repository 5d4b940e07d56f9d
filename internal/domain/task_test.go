package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewTask(t *testing.T) {
	userID := uuid.New()

	task, err := NewTask(userID, "Write report")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("Expected non-nil task ID")
	}
	if task.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, task.UserID)
	}
	if task.Priority != PriorityNone {
		t.Errorf("Expected default priority none, got %s", task.Priority)
	}
	if task.Status != StatusTodo {
		t.Errorf("Expected default status todo, got %s", task.Status)
	}
	if task.Completed {
		t.Error("Expected new task to not be completed")
	}
	if task.Version != 1 {
		t.Errorf("Expected version 1, got %d", task.Version)
	}

	// Empty title
	_, err = NewTask(userID, "")
	if err == nil {
		t.Error("Expected error for empty title")
	}

	// Title over the limit
	_, err = NewTask(userID, strings.Repeat("a", MaxTaskTitleLength+1))
	if err == nil {
		t.Error("Expected error for title over 200 characters")
	}

	// Title exactly at the limit is accepted
	_, err = NewTask(userID, strings.Repeat("a", MaxTaskTitleLength))
	if err != nil {
		t.Errorf("Expected no error for title at the limit, got %v", err)
	}

	// Limits count runes, not bytes
	_, err = NewTask(userID, strings.Repeat("é", MaxTaskTitleLength))
	if err != nil {
		t.Errorf("Expected no error for multibyte title at the limit, got %v", err)
	}

	// Nil owner
	_, err = NewTask(uuid.Nil, "Write report")
	if !errors.Is(err, ErrInvalidID) {
		t.Errorf("Expected ErrInvalidID for nil owner, got %v", err)
	}
}

func TestTaskValidate(t *testing.T) {
	validTask := func() *Task {
		return &Task{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			Title:     "Valid task",
			Priority:  PriorityMedium,
			Status:    StatusTodo,
			Version:   1,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
	}

	if err := validTask().Validate(); err != nil {
		t.Fatalf("Expected valid task to pass validation, got %v", err)
	}

	tests := []struct {
		name     string
		mutate   func(*Task)
		sentinel error
	}{
		{"unknown priority", func(task *Task) { task.Priority = "urgent" }, ErrInvalidPriority},
		{"unknown status", func(task *Task) { task.Status = "archived" }, ErrInvalidStatus},
		{
			"completed without done status",
			func(task *Task) { task.Completed = true },
			ErrStatusCompletedMismatch,
		},
		{
			"done status without completed",
			func(task *Task) { task.Status = StatusDone },
			ErrStatusCompletedMismatch,
		},
		{"negative time spent", func(task *Task) { task.TimeSpent = -1 }, ErrValidation},
		{"zero version", func(task *Task) { task.Version = 0 }, ErrValidation},
		{
			"description over limit",
			func(task *Task) { task.Description = strings.Repeat("a", MaxTaskDescriptionLength+1) },
			ErrValidation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task := validTask()
			tc.mutate(task)

			err := task.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !errors.Is(err, tc.sentinel) {
				t.Errorf("Expected error wrapping %v, got %v", tc.sentinel, err)
			}

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("Expected *ValidationError, got %T", err)
			}
		})
	}
}

func TestTaskApplyStatusCompletedSync(t *testing.T) {
	newTask := func() *Task {
		task, err := NewTask(uuid.New(), "Sync test")
		if err != nil {
			t.Fatalf("NewTask failed: %v", err)
		}
		return task
	}

	t.Run("setting status done completes the task", func(t *testing.T) {
		task := newTask()
		status := StatusDone

		if err := task.Apply(TaskUpdate{Status: &status}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if !task.Completed {
			t.Error("Expected completed to follow status done")
		}
	})

	t.Run("setting completed true moves status to done", func(t *testing.T) {
		task := newTask()
		completed := true

		if err := task.Apply(TaskUpdate{Completed: &completed}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if task.Status != StatusDone {
			t.Errorf("Expected status done, got %s", task.Status)
		}
	})

	t.Run("setting completed false on a done task reverts status to todo", func(t *testing.T) {
		task := newTask()
		completed := true
		if err := task.Apply(TaskUpdate{Completed: &completed}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		completed = false
		if err := task.Apply(TaskUpdate{Completed: &completed}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if task.Status != StatusTodo {
			t.Errorf("Expected status todo, got %s", task.Status)
		}
	})

	t.Run("setting completed false keeps in_progress status", func(t *testing.T) {
		task := newTask()
		status := StatusInProgress
		if err := task.Apply(TaskUpdate{Status: &status}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		completed := false
		if err := task.Apply(TaskUpdate{Completed: &completed}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if task.Status != StatusInProgress {
			t.Errorf("Expected status in_progress, got %s", task.Status)
		}
	})

	t.Run("consistent status and completed together", func(t *testing.T) {
		task := newTask()
		status := StatusDone
		completed := true

		if err := task.Apply(TaskUpdate{Status: &status, Completed: &completed}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if task.Status != StatusDone || !task.Completed {
			t.Errorf("Expected done/completed, got %s/%v", task.Status, task.Completed)
		}
	})

	t.Run("inconsistent status and completed is rejected", func(t *testing.T) {
		task := newTask()
		status := StatusDone
		completed := false

		err := task.Apply(TaskUpdate{Status: &status, Completed: &completed})
		if !errors.Is(err, ErrStatusCompletedMismatch) {
			t.Errorf("Expected ErrStatusCompletedMismatch, got %v", err)
		}
		// The task must be untouched after a failed apply.
		if task.Status != StatusTodo || task.Completed {
			t.Errorf("Expected task unchanged, got %s/%v", task.Status, task.Completed)
		}
	})
}

func TestTaskApplyFields(t *testing.T) {
	task, err := NewTask(uuid.New(), "Original")
	if err != nil {
		t.Fatalf("NewTask failed: %v", err)
	}

	title := "Renamed"
	description := "with details"
	priority := PriorityHigh
	due := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	timeSpent := 45
	order := 3

	err = task.Apply(TaskUpdate{
		Title:       &title,
		Description: &description,
		Priority:    &priority,
		DueDate:     &due,
		TimeSpent:   &timeSpent,
		CustomOrder: &order,
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if task.Title != title {
		t.Errorf("Expected title %q, got %q", title, task.Title)
	}
	if task.Description != description {
		t.Errorf("Expected description %q, got %q", description, task.Description)
	}
	if task.Priority != PriorityHigh {
		t.Errorf("Expected priority high, got %s", task.Priority)
	}
	if task.DueDate == nil || !task.DueDate.Equal(due) {
		t.Errorf("Expected due date %v, got %v", due, task.DueDate)
	}
	if task.TimeSpent != timeSpent {
		t.Errorf("Expected time spent %d, got %d", timeSpent, task.TimeSpent)
	}
	if task.CustomOrder == nil || *task.CustomOrder != order {
		t.Errorf("Expected custom order %d, got %v", order, task.CustomOrder)
	}

	// ClearDueDate wins over an untouched due date.
	if err := task.Apply(TaskUpdate{ClearDueDate: true}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if task.DueDate != nil {
		t.Errorf("Expected due date cleared, got %v", task.DueDate)
	}

	// A failed update leaves every field as it was.
	badTitle := ""
	before := *task
	if err := task.Apply(TaskUpdate{Title: &badTitle}); err == nil {
		t.Fatal("Expected error for empty title")
	}
	if task.Title != before.Title || !task.UpdatedAt.Equal(before.UpdatedAt) {
		t.Error("Expected task unchanged after failed apply")
	}
}

func TestPriorityAndStatusValid(t *testing.T) {
	for _, p := range []Priority{PriorityNone, PriorityLow, PriorityMedium, PriorityHigh} {
		if !p.Valid() {
			t.Errorf("Expected priority %s to be valid", p)
		}
	}
	if Priority("").Valid() || Priority("urgent").Valid() {
		t.Error("Expected unknown priorities to be invalid")
	}

	for _, s := range []Status{StatusTodo, StatusInProgress, StatusDone} {
		if !s.Valid() {
			t.Errorf("Expected status %s to be valid", s)
		}
	}
	if Status("").Valid() || Status("archived").Valid() {
		t.Error("Expected unknown statuses to be invalid")
	}
}
