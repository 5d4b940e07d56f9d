package store

import (
	"errors"
	"testing"

	"github.com/taskvault/taskvault-api/internal/domain"
)

func TestCheckLimit(t *testing.T) {
	tests := []struct {
		name       string
		current    int
		additional int
		ceiling    int
		wantErr    bool
	}{
		{"well under the ceiling", 5, 1, 100, false},
		{"reaches the ceiling exactly", 99, 1, 100, false},
		{"one past the ceiling", 100, 1, 100, true},
		{"batch reaching the ceiling exactly", 9950, 50, 10000, false},
		{"batch overshooting the ceiling", 9951, 50, 10000, true},
		{"zero additional at the ceiling", 100, 0, 100, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckLimit("tags per user", tc.current, tc.additional, tc.ceiling)
			if tc.wantErr && err == nil {
				t.Fatal("Expected limit error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if err != nil && !errors.Is(err, ErrLimitExceeded) {
				t.Errorf("Expected error wrapping ErrLimitExceeded, got %v", err)
			}
		})
	}
}

func TestCheckLimitErrorDetail(t *testing.T) {
	err := CheckLimit("subtasks per task", domain.MaxSubtasksPerTask, 1, domain.MaxSubtasksPerTask)

	var limitErr *LimitExceededError
	if !errors.As(err, &limitErr) {
		t.Fatalf("Expected *LimitExceededError, got %T", err)
	}
	if limitErr.Resource != "subtasks per task" {
		t.Errorf("Expected resource subtasks per task, got %s", limitErr.Resource)
	}
	if limitErr.Limit != domain.MaxSubtasksPerTask {
		t.Errorf("Expected limit %d, got %d", domain.MaxSubtasksPerTask, limitErr.Limit)
	}
	if limitErr.Current != domain.MaxSubtasksPerTask {
		t.Errorf("Expected current %d, got %d", domain.MaxSubtasksPerTask, limitErr.Current)
	}
}

func TestVersionConflictError(t *testing.T) {
	err := &VersionConflictError{Expected: 3, Actual: 5}

	if !errors.Is(err, ErrVersionConflict) {
		t.Error("Expected VersionConflictError to wrap ErrVersionConflict")
	}

	var conflictErr *VersionConflictError
	if !errors.As(error(err), &conflictErr) {
		t.Fatal("Expected errors.As to match *VersionConflictError")
	}
	if conflictErr.Expected != 3 || conflictErr.Actual != 5 {
		t.Errorf("Unexpected conflict detail: %+v", conflictErr)
	}
}

func TestEntityErrorsWrapSentinels(t *testing.T) {
	for _, err := range []error{ErrTaskNotFound, ErrTagNotFound, ErrSubtaskNotFound, ErrUserNotFound} {
		if !IsNotFoundError(err) {
			t.Errorf("Expected %v to be a not-found error", err)
		}
	}

	for _, err := range []error{ErrTagNameExists, ErrEmailExists} {
		if !IsDuplicateError(err) {
			t.Errorf("Expected %v to be a duplicate error", err)
		}
	}

	if IsNotFoundError(ErrTagNameExists) {
		t.Error("Expected duplicate error to not match not-found")
	}
}
