package model

import "time"

// ChapterRevision records one accepted edit. The chapter row keeps only the
// latest content; these rows give users a browsable history of what changed
// without storing full document snapshots.
type ChapterRevision struct {
	ID             int64
	ChapterID      int64
	Kind           string // replace, insert, delete, replace_all
	RequestExcerpt string // first part of the user request that produced the edit
	ResultLength   int    // length of the document after the edit
	CreatedAt      time.Time
}
