package store

import (
	"context"
	"errors"

	"storyloom.app/api/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist, or exists
// but is not visible to the requesting owner.
var ErrNotFound = errors.New("not found")

// StoryStore defines the contract for story data access. Every read and
// write is scoped to the owning user; a story belonging to someone else
// behaves exactly like a missing one.
type StoryStore interface {
	GetByID(ctx context.Context, id int64, ownerID string) (*model.Story, error)
	GetBySlug(ctx context.Context, ownerID, slug string) (*model.Story, error)
	Create(ctx context.Context, story *model.Story) error
	Update(ctx context.Context, story *model.Story) error
	Delete(ctx context.Context, id int64, ownerID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]model.Story, error)
}

// ChapterStore defines the contract for chapter data access. Owner scoping
// goes through the parent story.
type ChapterStore interface {
	GetByID(ctx context.Context, id int64, ownerID string) (*model.Chapter, error)
	Create(ctx context.Context, chapter *model.Chapter) error
	Update(ctx context.Context, chapter *model.Chapter) error
	// UpdateContent replaces the chapter text without touching metadata.
	UpdateContent(ctx context.Context, id int64, ownerID, content string) error
	Delete(ctx context.Context, id int64, ownerID string) error
	ListByStory(ctx context.Context, storyID int64, ownerID string) ([]model.Chapter, error)
}

// RevisionStore defines the contract for the accepted-edit history.
type RevisionStore interface {
	Create(ctx context.Context, rev *model.ChapterRevision) error
	ListByChapter(ctx context.Context, chapterID int64, ownerID string, limit int32) ([]model.ChapterRevision, error)
}
