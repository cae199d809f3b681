package dto

import (
	"time"

	"storyloom.app/api/internal/model"
)

type CreateStoryRequest struct {
	Title           string `json:"title" binding:"required,min=1,max=255"`
	Synopsis        string `json:"synopsis" binding:"max=10000"`
	StyleDirectives string `json:"style_directives" binding:"max=10000"`
}

type UpdateStoryRequest struct {
	Title           string `json:"title" binding:"omitempty,min=1,max=255"`
	Synopsis        string `json:"synopsis" binding:"max=10000"`
	StyleDirectives string `json:"style_directives" binding:"max=10000"`
}

type StoryResponse struct {
	ID              int64     `json:"id,string"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Synopsis        string    `json:"synopsis"`
	StyleDirectives string    `json:"style_directives"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func ToStoryResponse(s *model.Story) *StoryResponse {
	return &StoryResponse{
		ID:              s.ID,
		Title:           s.Title,
		Slug:            s.Slug,
		Synopsis:        s.Synopsis,
		StyleDirectives: s.StyleDirectives,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func ToStoryResponses(stories []model.Story) []StoryResponse {
	out := make([]StoryResponse, len(stories))
	for i := range stories {
		out[i] = *ToStoryResponse(&stories[i])
	}
	return out
}

type GenerateDraftRequest struct {
	ChapterTitle string `json:"chapter_title" binding:"max=255"`
	Guidance     string `json:"guidance" binding:"max=10000"`
	WebSearch    bool   `json:"web_search"`
}
