package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"storyloom.app/api/common/id"
	"storyloom.app/api/core/db"
	"storyloom.app/api/internal/model"
)

type chapterStore struct {
	db *db.DB
}

func newChapterStore(database *db.DB) ChapterStore {
	return &chapterStore{db: database}
}

const chapterColumns = `c.id, c.story_id, c.position, c.title, c.content, c.created_at, c.updated_at`

func (s *chapterStore) GetByID(ctx context.Context, chapterID int64, ownerID string) (*model.Chapter, error) {
	row := s.db.Pool().QueryRow(ctx, `
		SELECT `+chapterColumns+`
		FROM chapters c
		JOIN stories st ON st.id = c.story_id
		WHERE c.id = $1 AND st.owner_id = $2`,
		chapterID, ownerID)
	return scanChapter(row)
}

func (s *chapterStore) Create(ctx context.Context, chapter *model.Chapter) error {
	chapter.ID = id.New()
	// Position appends after the story's current last chapter.
	row := s.db.Pool().QueryRow(ctx, `
		INSERT INTO chapters (id, story_id, position, title, content)
		SELECT $1, $2, COALESCE(MAX(position) + 1, 0), $3, $4
		FROM chapters WHERE story_id = $2
		RETURNING position, created_at, updated_at`,
		chapter.ID, chapter.StoryID, chapter.Title, chapter.Content)
	if err := row.Scan(&chapter.Position, &chapter.CreatedAt, &chapter.UpdatedAt); err != nil {
		return fmt.Errorf("insert chapter: %w", err)
	}
	return nil
}

func (s *chapterStore) Update(ctx context.Context, chapter *model.Chapter) error {
	tag, err := s.db.Pool().Exec(ctx, `
		UPDATE chapters SET title = $2, content = $3, updated_at = NOW()
		WHERE id = $1`,
		chapter.ID, chapter.Title, chapter.Content)
	if err != nil {
		return fmt.Errorf("update chapter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *chapterStore) UpdateContent(ctx context.Context, chapterID int64, ownerID, content string) error {
	tag, err := s.db.Pool().Exec(ctx, `
		UPDATE chapters c SET content = $3, updated_at = NOW()
		FROM stories st
		WHERE c.id = $1 AND st.id = c.story_id AND st.owner_id = $2`,
		chapterID, ownerID, content)
	if err != nil {
		return fmt.Errorf("update chapter content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *chapterStore) Delete(ctx context.Context, chapterID int64, ownerID string) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM chapters c
			USING stories st
			WHERE c.id = $1 AND st.id = c.story_id AND st.owner_id = $2`,
			chapterID, ownerID)
		if err != nil {
			return fmt.Errorf("delete chapter: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM chapter_revisions WHERE chapter_id = $1`, chapterID); err != nil {
			return fmt.Errorf("delete chapter revisions: %w", err)
		}
		return nil
	})
}

func (s *chapterStore) ListByStory(ctx context.Context, storyID int64, ownerID string) ([]model.Chapter, error) {
	rows, err := s.db.Pool().Query(ctx, `
		SELECT `+chapterColumns+`
		FROM chapters c
		JOIN stories st ON st.id = c.story_id
		WHERE c.story_id = $1 AND st.owner_id = $2
		ORDER BY c.position`,
		storyID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer rows.Close()

	var out []model.Chapter
	for rows.Next() {
		var ch model.Chapter
		if err := rows.Scan(&ch.ID, &ch.StoryID, &ch.Position, &ch.Title, &ch.Content,
			&ch.CreatedAt, &ch.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func scanChapter(row pgx.Row) (*model.Chapter, error) {
	var ch model.Chapter
	err := row.Scan(&ch.ID, &ch.StoryID, &ch.Position, &ch.Title, &ch.Content,
		&ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ch, nil
}
