package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/platform/logger"
	"github.com/taskvault/taskvault-api/internal/store"
)

// TagService provides tag operations. Tags are owner-scoped labels shared
// across the owner's tasks; deleting one only severs its associations.
type TagService interface {
	// CreateTag creates a tag, defaulting the color when empty. Fails with
	// ErrLimitExceeded at the per-owner ceiling and ErrTagNameExists on a
	// name collision.
	CreateTag(ctx context.Context, userID uuid.UUID, name, color string) (*domain.Tag, error)

	// ListTags returns the owner's tags ordered by name.
	ListTags(ctx context.Context, userID uuid.UUID) ([]domain.Tag, error)

	// UpdateTag renames and/or recolors a tag. Name uniqueness is re-checked
	// on rename.
	UpdateTag(
		ctx context.Context,
		userID, tagID uuid.UUID,
		update domain.TagUpdate,
	) (*domain.Tag, error)

	// DeleteTag deletes the tag and all its task associations; the tasks
	// themselves are unaffected.
	DeleteTag(ctx context.Context, userID, tagID uuid.UUID) error
}

// tagServiceImpl implements the TagService interface.
type tagServiceImpl struct {
	tags   store.TagStore
	logger *slog.Logger
	runTx  func(ctx context.Context, fn store.TxFn) error
}

// NewTagService creates a new TagService.
// It returns an error if any required dependency is nil.
func NewTagService(db *sql.DB, tags store.TagStore, log *slog.Logger) (TagService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", nil)
	}
	if tags == nil {
		return nil, domain.NewValidationError("tags", "cannot be nil", nil)
	}
	if log == nil {
		log = slog.Default()
	}

	return &tagServiceImpl{
		tags:   tags,
		logger: log.With(slog.String("component", "tag_service")),
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
	}, nil
}

// CreateTag implements TagService.CreateTag
func (s *tagServiceImpl) CreateTag(
	ctx context.Context,
	userID uuid.UUID,
	name, color string,
) (*domain.Tag, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tag, err := domain.NewTag(userID, name, color)
	if err != nil {
		return nil, err
	}

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTags := s.tags.WithTx(tx)

		count, err := txTags.CountForUser(ctx, userID)
		if err != nil {
			return err
		}
		if err := store.CheckLimit("tags per user", count, 1, domain.MaxTagsPerUser); err != nil {
			return err
		}

		return txTags.Create(ctx, tag)
	})
	if err != nil {
		return nil, err
	}

	log.Debug("created tag",
		slog.String("tag_id", tag.ID.String()),
		slog.String("user_id", userID.String()))
	return tag, nil
}

// ListTags implements TagService.ListTags
func (s *tagServiceImpl) ListTags(ctx context.Context, userID uuid.UUID) ([]domain.Tag, error) {
	return s.tags.List(ctx, userID)
}

// UpdateTag implements TagService.UpdateTag
func (s *tagServiceImpl) UpdateTag(
	ctx context.Context,
	userID, tagID uuid.UUID,
	update domain.TagUpdate,
) (*domain.Tag, error) {
	var tag *domain.Tag
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTags := s.tags.WithTx(tx)

		var err error
		tag, err = txTags.GetByID(ctx, userID, tagID)
		if err != nil {
			return err
		}

		if err := tag.Apply(update); err != nil {
			return err
		}

		return txTags.Update(ctx, tag)
	})
	if err != nil {
		return nil, err
	}

	return tag, nil
}

// DeleteTag implements TagService.DeleteTag
func (s *tagServiceImpl) DeleteTag(ctx context.Context, userID, tagID uuid.UUID) error {
	return s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.tags.WithTx(tx).Delete(ctx, userID, tagID)
	})
}
