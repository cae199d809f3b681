package model

import "time"

// Chapter holds one chapter's text. Content is the canonical document the
// revision pipeline edits; only the latest accepted text is stored here.
type Chapter struct {
	ID        int64
	StoryID   int64
	Position  int
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
