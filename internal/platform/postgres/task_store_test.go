package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/store"
)

func TestBuildTaskPredicatesOwnerOnly(t *testing.T) {
	userID := uuid.New()

	where, args := buildTaskPredicates(userID, store.TaskFilter{})

	assert.Equal(t, "user_id = $1", where)
	require.Len(t, args, 1)
	assert.Equal(t, userID, args[0])
}

func TestBuildTaskPredicatesMultiValueCategories(t *testing.T) {
	userID := uuid.New()

	where, args := buildTaskPredicates(userID, store.TaskFilter{
		Priorities: []domain.Priority{domain.PriorityHigh, domain.PriorityLow},
		Statuses:   []domain.Status{domain.StatusTodo},
	})

	assert.Equal(t,
		"user_id = $1 AND priority IN ($2, $3) AND status IN ($4)",
		where)
	require.Len(t, args, 4)
	assert.Equal(t, domain.PriorityHigh, args[1])
	assert.Equal(t, domain.PriorityLow, args[2])
	assert.Equal(t, domain.StatusTodo, args[3])
}

func TestBuildTaskPredicatesAllCategories(t *testing.T) {
	userID := uuid.New()
	completed := false
	after := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	tagID := uuid.New()

	where, args := buildTaskPredicates(userID, store.TaskFilter{
		Priorities: []domain.Priority{domain.PriorityMedium},
		Statuses:   []domain.Status{domain.StatusInProgress},
		Completed:  &completed,
		DueAfter:   &after,
		DueBefore:  &before,
		TagIDs:     []uuid.UUID{tagID},
		Search:     "report",
	})

	assert.Equal(t,
		"user_id = $1 AND priority IN ($2) AND status IN ($3) AND completed = $4"+
			" AND due_date >= $5 AND due_date <= $6"+
			" AND EXISTS (SELECT 1 FROM task_tags tt WHERE tt.task_id = tasks.id AND tt.tag_id IN ($7))"+
			" AND (title ILIKE $8 OR description ILIKE $9)",
		where)
	require.Len(t, args, 9)
	assert.Equal(t, false, args[3])
	assert.Equal(t, after, args[4])
	assert.Equal(t, before, args[5])
	assert.Equal(t, tagID, args[6])
	assert.Equal(t, "%report%", args[7])
	assert.Equal(t, "%report%", args[8])
}

func TestBuildOrderBy(t *testing.T) {
	tests := []struct {
		name string
		opts store.ListOptions
		want string
	}{
		{"default", store.ListOptions{}, "ORDER BY created_at DESC"},
		{"ascending", store.ListOptions{Ascending: true}, "ORDER BY created_at ASC"},
		{"due date", store.ListOptions{SortBy: store.SortByDueDate}, "ORDER BY due_date DESC"},
		{"priority", store.ListOptions{SortBy: store.SortByPriority}, "ORDER BY priority DESC"},
		{"title ascending", store.ListOptions{SortBy: store.SortByTitle, Ascending: true}, "ORDER BY title ASC"},
		{"custom order", store.ListOptions{SortBy: store.SortByCustomOrder}, "ORDER BY custom_order DESC"},
		{
			"unknown column falls back instead of interpolating",
			store.ListOptions{SortBy: "id; DROP TABLE tasks"},
			"ORDER BY created_at DESC",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, buildOrderBy(tc.opts))
		})
	}
}
