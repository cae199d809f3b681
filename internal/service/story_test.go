package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"storyloom.app/api/internal/model"
	"storyloom.app/api/internal/service"
	"storyloom.app/api/internal/store"
)

var _ = Describe("StoryService", func() {
	var (
		svc     service.StoryService
		stories *mockStoryStore
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		stories = &mockStoryStore{}
		svc = service.NewStoryService(stories)
	})

	Describe("Create", func() {
		It("slugifies the title", func() {
			stories.getBySlugFn = func(_ context.Context, ownerID, slug string) (*model.Story, error) {
				Expect(ownerID).To(Equal("user-1"))
				return nil, store.ErrNotFound
			}
			var created *model.Story
			stories.createFn = func(_ context.Context, story *model.Story) error {
				story.ID = 101
				created = story
				return nil
			}

			story, err := svc.Create(ctx, "user-1", service.StoryInput{Title: "The Long Rain!"})
			Expect(err).NotTo(HaveOccurred())
			Expect(story.Slug).To(Equal("the-long-rain"))
			Expect(story.OwnerID).To(Equal("user-1"))
			Expect(created).To(Equal(story))
		})

		It("suffixes the slug when taken", func() {
			taken := map[string]bool{"duet": true, "duet-1": true}
			stories.getBySlugFn = func(_ context.Context, _, slug string) (*model.Story, error) {
				if taken[slug] {
					return &model.Story{Slug: slug}, nil
				}
				return nil, store.ErrNotFound
			}

			story, err := svc.Create(ctx, "user-1", service.StoryInput{Title: "Duet"})
			Expect(err).NotTo(HaveOccurred())
			Expect(story.Slug).To(Equal("duet-2"))
		})

		It("rejects an empty title", func() {
			_, err := svc.Create(ctx, "user-1", service.StoryInput{})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Update", func() {
		It("re-slugs only when the title changes", func() {
			stories.getByIDFn = func(_ context.Context, id int64, ownerID string) (*model.Story, error) {
				return &model.Story{ID: id, OwnerID: ownerID, Title: "Old Title", Slug: "old-title"}, nil
			}
			stories.getBySlugFn = func(_ context.Context, _, _ string) (*model.Story, error) {
				return nil, store.ErrNotFound
			}
			stories.updateFn = func(_ context.Context, story *model.Story) error { return nil }

			story, err := svc.Update(ctx, "user-1", 5, service.StoryInput{Title: "New Title", Synopsis: "s"})
			Expect(err).NotTo(HaveOccurred())
			Expect(story.Slug).To(Equal("new-title"))
			Expect(story.Synopsis).To(Equal("s"))

			same, err := svc.Update(ctx, "user-1", 5, service.StoryInput{Title: "Old Title"})
			Expect(err).NotTo(HaveOccurred())
			Expect(same.Slug).To(Equal("old-title"))
		})

		It("propagates not found", func() {
			stories.getByIDFn = func(_ context.Context, _ int64, _ string) (*model.Story, error) {
				return nil, store.ErrNotFound
			}
			_, err := svc.Update(ctx, "user-1", 5, service.StoryInput{Title: "x"})
			Expect(errors.Is(err, store.ErrNotFound)).To(BeTrue())
		})
	})
})
