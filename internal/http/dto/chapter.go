package dto

import (
	"time"

	"storyloom.app/api/internal/model"
)

type CreateChapterRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=255"`
	Content string `json:"content"`
}

type UpdateChapterRequest struct {
	Title   string `json:"title" binding:"omitempty,min=1,max=255"`
	Content string `json:"content"`
}

type ChapterResponse struct {
	ID        int64     `json:"id,string"`
	StoryID   int64     `json:"story_id,string"`
	Position  int       `json:"position"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToChapterResponse(ch *model.Chapter) *ChapterResponse {
	return &ChapterResponse{
		ID:        ch.ID,
		StoryID:   ch.StoryID,
		Position:  ch.Position,
		Title:     ch.Title,
		Content:   ch.Content,
		CreatedAt: ch.CreatedAt,
		UpdatedAt: ch.UpdatedAt,
	}
}

func ToChapterResponses(chapters []model.Chapter) []ChapterResponse {
	out := make([]ChapterResponse, len(chapters))
	for i := range chapters {
		out[i] = *ToChapterResponse(&chapters[i])
	}
	return out
}

type ChapterRevisionResponse struct {
	ID             int64     `json:"id,string"`
	Kind           string    `json:"kind"`
	RequestExcerpt string    `json:"request_excerpt"`
	ResultLength   int       `json:"result_length"`
	CreatedAt      time.Time `json:"created_at"`
}

func ToChapterRevisionResponses(revs []model.ChapterRevision) []ChapterRevisionResponse {
	out := make([]ChapterRevisionResponse, len(revs))
	for i, rev := range revs {
		out[i] = ChapterRevisionResponse{
			ID:             rev.ID,
			Kind:           rev.Kind,
			RequestExcerpt: rev.RequestExcerpt,
			ResultLength:   rev.ResultLength,
			CreatedAt:      rev.CreatedAt,
		}
	}
	return out
}
