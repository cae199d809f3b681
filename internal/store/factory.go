package store

import (
	"storyloom.app/api/core/db"
)

type Stores struct {
	db *db.DB
}

func NewStores(db *db.DB) *Stores {
	return &Stores{db: db}
}

func (s *Stores) Stories() StoryStore {
	return newStoryStore(s.db)
}

func (s *Stores) Chapters() ChapterStore {
	return newChapterStore(s.db)
}

func (s *Stores) Revisions() RevisionStore {
	return newRevisionStore(s.db)
}
