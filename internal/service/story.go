package service

import (
	"context"
	"errors"
	"fmt"

	"storyloom.app/api/common"
	"storyloom.app/api/internal/model"
	"storyloom.app/api/internal/store"
)

// StoryInput carries the writable story fields.
type StoryInput struct {
	Title           string
	Synopsis        string
	StyleDirectives string
}

type StoryService interface {
	Create(ctx context.Context, ownerID string, in StoryInput) (*model.Story, error)
	Get(ctx context.Context, ownerID string, storyID int64) (*model.Story, error)
	List(ctx context.Context, ownerID string) ([]model.Story, error)
	Update(ctx context.Context, ownerID string, storyID int64, in StoryInput) (*model.Story, error)
	Delete(ctx context.Context, ownerID string, storyID int64) error
}

type storyService struct {
	stories store.StoryStore
}

func NewStoryService(stories store.StoryStore) StoryService {
	return &storyService{stories: stories}
}

func (s *storyService) Create(ctx context.Context, ownerID string, in StoryInput) (*model.Story, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("story title is required")
	}

	slug, err := s.ensureSlug(ctx, ownerID, in.Title)
	if err != nil {
		return nil, err
	}

	story := &model.Story{
		OwnerID:         ownerID,
		Title:           in.Title,
		Slug:            slug,
		Synopsis:        in.Synopsis,
		StyleDirectives: in.StyleDirectives,
	}
	if err := s.stories.Create(ctx, story); err != nil {
		return nil, fmt.Errorf("creating story: %w", err)
	}
	return story, nil
}

func (s *storyService) Get(ctx context.Context, ownerID string, storyID int64) (*model.Story, error) {
	return s.stories.GetByID(ctx, storyID, ownerID)
}

func (s *storyService) List(ctx context.Context, ownerID string) ([]model.Story, error) {
	return s.stories.ListByOwner(ctx, ownerID)
}

func (s *storyService) Update(ctx context.Context, ownerID string, storyID int64, in StoryInput) (*model.Story, error) {
	story, err := s.stories.GetByID(ctx, storyID, ownerID)
	if err != nil {
		return nil, err
	}

	if in.Title != "" && in.Title != story.Title {
		slug, err := s.ensureSlug(ctx, ownerID, in.Title)
		if err != nil {
			return nil, err
		}
		story.Title = in.Title
		story.Slug = slug
	}
	story.Synopsis = in.Synopsis
	story.StyleDirectives = in.StyleDirectives

	if err := s.stories.Update(ctx, story); err != nil {
		return nil, fmt.Errorf("updating story: %w", err)
	}
	return story, nil
}

func (s *storyService) Delete(ctx context.Context, ownerID string, storyID int64) error {
	return s.stories.Delete(ctx, storyID, ownerID)
}

// ensureSlug derives a slug from the title and suffixes it until it is unique
// among the owner's stories.
func (s *storyService) ensureSlug(ctx context.Context, ownerID, title string) (string, error) {
	base, err := common.Slugify(title, "story")
	if err != nil {
		return "", fmt.Errorf("generating slug: %w", err)
	}

	if _, err := s.stories.GetBySlug(ctx, ownerID, base); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return base, nil
		}
		return "", fmt.Errorf("checking slug availability: %w", err)
	}

	for i := 1; i <= 20; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		_, err := s.stories.GetBySlug(ctx, ownerID, candidate)
		if errors.Is(err, store.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking slug availability: %w", err)
		}
	}

	return "", fmt.Errorf("unable to find available slug for %q", base)
}
