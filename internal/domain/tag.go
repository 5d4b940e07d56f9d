package domain

import (
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Tag constraints.
const (
	MaxTagNameLength = 50

	// DefaultTagColor is used when a tag is created without an explicit color.
	DefaultTagColor = "#808080"
)

// tagColorPattern matches a hash-prefixed 6-hex-digit color code.
var tagColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Tag is a named, colored label scoped to one owner. Tag names are unique
// per owner. A tag is shared across all of that owner's tasks; deleting a
// tag never deletes a task.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTag creates a new Tag owned by userID. An empty color falls back to
// DefaultTagColor. Returns an error if validation fails.
func NewTag(userID uuid.UUID, name, color string) (*Tag, error) {
	if color == "" {
		color = DefaultTagColor
	}

	tag := &Tag{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Color:     color,
		CreatedAt: time.Now().UTC(),
	}

	if err := tag.Validate(); err != nil {
		return nil, err
	}

	return tag, nil
}

// Validate checks if the Tag has valid data.
func (g *Tag) Validate() error {
	if g.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}

	if g.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrInvalidID)
	}

	if nameLen := utf8.RuneCountInString(g.Name); nameLen == 0 {
		return NewValidationError("name", "cannot be empty", nil)
	} else if nameLen > MaxTagNameLength {
		return NewValidationError("name", "exceeds 50 characters", nil)
	}

	if !tagColorPattern.MatchString(g.Color) {
		return NewValidationError("color", "must be a #RRGGBB hex code", nil)
	}

	return nil
}

// TagUpdate carries the field mutations of a tag update request.
// Nil pointers leave the corresponding field untouched.
type TagUpdate struct {
	Name  *string
	Color *string
}

// Apply applies the update to the tag. On validation failure the tag is
// left unchanged. Name uniqueness is enforced by the store, not here.
func (g *Tag) Apply(u TagUpdate) error {
	next := *g

	if u.Name != nil {
		next.Name = *u.Name
	}
	if u.Color != nil {
		next.Color = *u.Color
	}

	if err := next.Validate(); err != nil {
		return err
	}

	*g = next
	return nil
}

// TaskTag is the association between a task and a tag. At most
// MaxTagsPerTask distinct tags may be attached to one task. The association
// is destroyed when either side is deleted or when the task's tag set is
// replaced on update.
type TaskTag struct {
	TaskID     uuid.UUID `json:"task_id"`
	TagID      uuid.UUID `json:"tag_id"`
	AssignedAt time.Time `json:"assigned_at"`
}
