package store

import (
	"context"
	"fmt"

	"storyloom.app/api/common/id"
	"storyloom.app/api/core/db"
	"storyloom.app/api/internal/model"
)

type revisionStore struct {
	db *db.DB
}

func newRevisionStore(database *db.DB) RevisionStore {
	return &revisionStore{db: database}
}

func (s *revisionStore) Create(ctx context.Context, rev *model.ChapterRevision) error {
	rev.ID = id.New()
	row := s.db.Pool().QueryRow(ctx, `
		INSERT INTO chapter_revisions (id, chapter_id, kind, request_excerpt, result_length)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		rev.ID, rev.ChapterID, rev.Kind, rev.RequestExcerpt, rev.ResultLength)
	if err := row.Scan(&rev.CreatedAt); err != nil {
		return fmt.Errorf("insert chapter revision: %w", err)
	}
	return nil
}

func (s *revisionStore) ListByChapter(ctx context.Context, chapterID int64, ownerID string, limit int32) ([]model.ChapterRevision, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Pool().Query(ctx, `
		SELECT r.id, r.chapter_id, r.kind, r.request_excerpt, r.result_length, r.created_at
		FROM chapter_revisions r
		JOIN chapters c ON c.id = r.chapter_id
		JOIN stories st ON st.id = c.story_id
		WHERE r.chapter_id = $1 AND st.owner_id = $2
		ORDER BY r.created_at DESC
		LIMIT $3`,
		chapterID, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chapter revisions: %w", err)
	}
	defer rows.Close()

	var out []model.ChapterRevision
	for rows.Next() {
		var rev model.ChapterRevision
		if err := rows.Scan(&rev.ID, &rev.ChapterID, &rev.Kind, &rev.RequestExcerpt,
			&rev.ResultLength, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chapter revision: %w", err)
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}
