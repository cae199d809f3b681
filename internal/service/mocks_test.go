package service_test

import (
	"context"

	"storyloom.app/api/common/llm"
	"storyloom.app/api/internal/model"
	"storyloom.app/api/internal/revision"
)

type mockStoryStore struct {
	getByIDFn     func(ctx context.Context, id int64, ownerID string) (*model.Story, error)
	getBySlugFn   func(ctx context.Context, ownerID, slug string) (*model.Story, error)
	createFn      func(ctx context.Context, story *model.Story) error
	updateFn      func(ctx context.Context, story *model.Story) error
	deleteFn      func(ctx context.Context, id int64, ownerID string) error
	listByOwnerFn func(ctx context.Context, ownerID string) ([]model.Story, error)
}

func (m *mockStoryStore) GetByID(ctx context.Context, id int64, ownerID string) (*model.Story, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id, ownerID)
	}
	return nil, nil
}

func (m *mockStoryStore) GetBySlug(ctx context.Context, ownerID, slug string) (*model.Story, error) {
	if m.getBySlugFn != nil {
		return m.getBySlugFn(ctx, ownerID, slug)
	}
	return nil, nil
}

func (m *mockStoryStore) Create(ctx context.Context, story *model.Story) error {
	if m.createFn != nil {
		return m.createFn(ctx, story)
	}
	return nil
}

func (m *mockStoryStore) Update(ctx context.Context, story *model.Story) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, story)
	}
	return nil
}

func (m *mockStoryStore) Delete(ctx context.Context, id int64, ownerID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, ownerID)
	}
	return nil
}

func (m *mockStoryStore) ListByOwner(ctx context.Context, ownerID string) ([]model.Story, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

type mockChapterStore struct {
	getByIDFn       func(ctx context.Context, id int64, ownerID string) (*model.Chapter, error)
	createFn        func(ctx context.Context, chapter *model.Chapter) error
	updateFn        func(ctx context.Context, chapter *model.Chapter) error
	updateContentFn func(ctx context.Context, id int64, ownerID, content string) error
	deleteFn        func(ctx context.Context, id int64, ownerID string) error
	listByStoryFn   func(ctx context.Context, storyID int64, ownerID string) ([]model.Chapter, error)
}

func (m *mockChapterStore) GetByID(ctx context.Context, id int64, ownerID string) (*model.Chapter, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id, ownerID)
	}
	return nil, nil
}

func (m *mockChapterStore) Create(ctx context.Context, chapter *model.Chapter) error {
	if m.createFn != nil {
		return m.createFn(ctx, chapter)
	}
	return nil
}

func (m *mockChapterStore) Update(ctx context.Context, chapter *model.Chapter) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, chapter)
	}
	return nil
}

func (m *mockChapterStore) UpdateContent(ctx context.Context, id int64, ownerID, content string) error {
	if m.updateContentFn != nil {
		return m.updateContentFn(ctx, id, ownerID, content)
	}
	return nil
}

func (m *mockChapterStore) Delete(ctx context.Context, id int64, ownerID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, ownerID)
	}
	return nil
}

func (m *mockChapterStore) ListByStory(ctx context.Context, storyID int64, ownerID string) ([]model.Chapter, error) {
	if m.listByStoryFn != nil {
		return m.listByStoryFn(ctx, storyID, ownerID)
	}
	return nil, nil
}

type mockRevisionStore struct {
	createFn        func(ctx context.Context, rev *model.ChapterRevision) error
	listByChapterFn func(ctx context.Context, chapterID int64, ownerID string, limit int32) ([]model.ChapterRevision, error)
}

func (m *mockRevisionStore) Create(ctx context.Context, rev *model.ChapterRevision) error {
	if m.createFn != nil {
		return m.createFn(ctx, rev)
	}
	return nil
}

func (m *mockRevisionStore) ListByChapter(ctx context.Context, chapterID int64, ownerID string, limit int32) ([]model.ChapterRevision, error) {
	if m.listByChapterFn != nil {
		return m.listByChapterFn(ctx, chapterID, ownerID, limit)
	}
	return nil, nil
}

type mockLLMClient struct {
	generateFn func(ctx context.Context, req llm.Request) (*llm.Response, error)
}

func (m *mockLLMClient) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, req)
	}
	return &llm.Response{Text: ""}, nil
}

func (m *mockLLMClient) Model() string { return "mock" }

type mockEventSink struct {
	publishFn func(ctx context.Context, ev revision.Event)
}

func (m *mockEventSink) Publish(ctx context.Context, ev revision.Event) {
	if m.publishFn != nil {
		m.publishFn(ctx, ev)
	}
}
