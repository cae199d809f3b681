package service

import (
	"context"
	"fmt"

	"storyloom.app/api/internal/model"
	"storyloom.app/api/internal/store"
)

// ChapterInput carries the writable chapter fields.
type ChapterInput struct {
	Title   string
	Content string
}

type ChapterService interface {
	Create(ctx context.Context, ownerID string, storyID int64, in ChapterInput) (*model.Chapter, error)
	Get(ctx context.Context, ownerID string, chapterID int64) (*model.Chapter, error)
	List(ctx context.Context, ownerID string, storyID int64) ([]model.Chapter, error)
	Update(ctx context.Context, ownerID string, chapterID int64, in ChapterInput) (*model.Chapter, error)
	Delete(ctx context.Context, ownerID string, chapterID int64) error
	History(ctx context.Context, ownerID string, chapterID int64, limit int32) ([]model.ChapterRevision, error)
}

type chapterService struct {
	stories   store.StoryStore
	chapters  store.ChapterStore
	revisions store.RevisionStore
}

func NewChapterService(stories store.StoryStore, chapters store.ChapterStore, revisions store.RevisionStore) ChapterService {
	return &chapterService{stories: stories, chapters: chapters, revisions: revisions}
}

func (s *chapterService) Create(ctx context.Context, ownerID string, storyID int64, in ChapterInput) (*model.Chapter, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("chapter title is required")
	}

	// The story lookup doubles as the ownership check.
	if _, err := s.stories.GetByID(ctx, storyID, ownerID); err != nil {
		return nil, err
	}

	chapter := &model.Chapter{
		StoryID: storyID,
		Title:   in.Title,
		Content: in.Content,
	}
	if err := s.chapters.Create(ctx, chapter); err != nil {
		return nil, fmt.Errorf("creating chapter: %w", err)
	}
	return chapter, nil
}

func (s *chapterService) Get(ctx context.Context, ownerID string, chapterID int64) (*model.Chapter, error) {
	return s.chapters.GetByID(ctx, chapterID, ownerID)
}

func (s *chapterService) List(ctx context.Context, ownerID string, storyID int64) ([]model.Chapter, error) {
	if _, err := s.stories.GetByID(ctx, storyID, ownerID); err != nil {
		return nil, err
	}
	return s.chapters.ListByStory(ctx, storyID, ownerID)
}

func (s *chapterService) Update(ctx context.Context, ownerID string, chapterID int64, in ChapterInput) (*model.Chapter, error) {
	chapter, err := s.chapters.GetByID(ctx, chapterID, ownerID)
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		chapter.Title = in.Title
	}
	chapter.Content = in.Content

	if err := s.chapters.Update(ctx, chapter); err != nil {
		return nil, fmt.Errorf("updating chapter: %w", err)
	}
	return chapter, nil
}

func (s *chapterService) Delete(ctx context.Context, ownerID string, chapterID int64) error {
	return s.chapters.Delete(ctx, chapterID, ownerID)
}

func (s *chapterService) History(ctx context.Context, ownerID string, chapterID int64, limit int32) ([]model.ChapterRevision, error) {
	return s.revisions.ListByChapter(ctx, chapterID, ownerID, limit)
}
