package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/store"
)

const tagColumns = `id, user_id, name, color, created_at`

// TagStore implements store.TagStore using PostgreSQL.
type TagStore struct {
	db store.DBTX
}

// Ensure TagStore implements store.TagStore
var _ store.TagStore = (*TagStore)(nil)

// NewTagStore creates a new PostgreSQL-backed TagStore.
func NewTagStore(db store.DBTX) *TagStore {
	return &TagStore{db: db}
}

// WithTx implements store.TagStore.WithTx
func (s *TagStore) WithTx(tx *sql.Tx) store.TagStore {
	return &TagStore{db: tx}
}

// Create implements store.TagStore.Create
func (s *TagStore) Create(ctx context.Context, tag *domain.Tag) error {
	query := `
		INSERT INTO tags (id, user_id, name, color, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query,
		tag.ID,
		tag.UserID,
		tag.Name,
		tag.Color,
		tag.CreatedAt,
	)
	if err != nil {
		return MapUniqueViolation(err, store.ErrTagNameExists)
	}

	return nil
}

// GetByID implements store.TagStore.GetByID
func (s *TagStore) GetByID(ctx context.Context, userID, tagID uuid.UUID) (*domain.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags WHERE id = $1 AND user_id = $2`

	var tag domain.Tag
	err := s.db.QueryRowContext(ctx, query, tagID, userID).
		Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.Color, &tag.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTagNotFound
		}
		return nil, MapError(err)
	}

	return &tag, nil
}

// List implements store.TagStore.List
func (s *TagStore) List(ctx context.Context, userID uuid.UUID) ([]domain.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags WHERE user_id = $1 ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return scanTags(rows)
}

// CountForUser implements store.TagStore.CountForUser
func (s *TagStore) CountForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT count(*) FROM tags WHERE user_id = $1`
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, MapError(err)
	}

	return count, nil
}

// CountOwned implements store.TagStore.CountOwned
func (s *TagStore) CountOwned(
	ctx context.Context,
	userID uuid.UUID,
	tagIDs []uuid.UUID,
) (int, error) {
	if len(tagIDs) == 0 {
		return 0, nil
	}

	args := []any{userID}
	ph := make([]string, len(tagIDs))
	for i, id := range tagIDs {
		args = append(args, id)
		ph[i] = fmt.Sprintf("$%d", len(args))
	}

	var count int
	query := fmt.Sprintf(
		`SELECT count(*) FROM tags WHERE user_id = $1 AND id IN (%s)`,
		strings.Join(ph, ", "))
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, MapError(err)
	}

	return count, nil
}

// Update implements store.TagStore.Update
func (s *TagStore) Update(ctx context.Context, tag *domain.Tag) error {
	query := `UPDATE tags SET name = $1, color = $2 WHERE id = $3 AND user_id = $4`

	result, err := s.db.ExecContext(ctx, query, tag.Name, tag.Color, tag.ID, tag.UserID)
	if err != nil {
		return MapUniqueViolation(err, store.ErrTagNameExists)
	}

	return CheckRowsAffected(result, store.ErrTagNotFound)
}

// Delete implements store.TagStore.Delete. The tag's task associations are
// removed by ON DELETE CASCADE; the referenced tasks are untouched.
func (s *TagStore) Delete(ctx context.Context, userID, tagID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tags WHERE id = $1 AND user_id = $2`, tagID, userID)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrTagNotFound)
}

// ListForTask implements store.TagStore.ListForTask
func (s *TagStore) ListForTask(ctx context.Context, taskID uuid.UUID) ([]domain.Tag, error) {
	query := `
		SELECT t.id, t.user_id, t.name, t.color, t.created_at
		FROM tags t
		JOIN task_tags tt ON tt.tag_id = t.id
		WHERE tt.task_id = $1
		ORDER BY t.name
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return scanTags(rows)
}

// ListForTasks implements store.TagStore.ListForTasks
func (s *TagStore) ListForTasks(
	ctx context.Context,
	taskIDs []uuid.UUID,
) (map[uuid.UUID][]domain.Tag, error) {
	result := make(map[uuid.UUID][]domain.Tag)
	if len(taskIDs) == 0 {
		return result, nil
	}

	args := make([]any, len(taskIDs))
	ph := make([]string, len(taskIDs))
	for i, id := range taskIDs {
		args[i] = id
		ph[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`
		SELECT tt.task_id, t.id, t.user_id, t.name, t.color, t.created_at
		FROM tags t
		JOIN task_tags tt ON tt.tag_id = t.id
		WHERE tt.task_id IN (%s)
		ORDER BY t.name
	`, strings.Join(ph, ", "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var taskID uuid.UUID
		var tag domain.Tag
		if err := rows.Scan(
			&taskID, &tag.ID, &tag.UserID, &tag.Name, &tag.Color, &tag.CreatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		result[taskID] = append(result[taskID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return result, nil
}

// ReplaceForTask implements store.TagStore.ReplaceForTask
func (s *TagStore) ReplaceForTask(
	ctx context.Context,
	taskID uuid.UUID,
	tagIDs []uuid.UUID,
) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM task_tags WHERE task_id = $1`, taskID); err != nil {
		return MapError(err)
	}

	if len(tagIDs) == 0 {
		return nil
	}

	now := timeNow()
	args := []any{taskID, now}
	values := make([]string, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		args = append(args, tagID)
		values = append(values, fmt.Sprintf("($1, $%d, $2)", len(args)))
	}

	query := fmt.Sprintf(
		`INSERT INTO task_tags (task_id, tag_id, assigned_at) VALUES %s`,
		strings.Join(values, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return MapError(err)
	}

	return nil
}

func scanTags(rows *sql.Rows) ([]domain.Tag, error) {
	tags := make([]domain.Tag, 0)
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tags, nil
}
