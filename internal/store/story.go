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

type storyStore struct {
	db *db.DB
}

func newStoryStore(database *db.DB) StoryStore {
	return &storyStore{db: database}
}

const storyColumns = `id, owner_id, title, slug, synopsis, style_directives, created_at, updated_at`

func (s *storyStore) GetByID(ctx context.Context, storyID int64, ownerID string) (*model.Story, error) {
	row := s.db.Pool().QueryRow(ctx,
		`SELECT `+storyColumns+` FROM stories WHERE id = $1 AND owner_id = $2`,
		storyID, ownerID)
	return scanStory(row)
}

func (s *storyStore) GetBySlug(ctx context.Context, ownerID, slug string) (*model.Story, error) {
	row := s.db.Pool().QueryRow(ctx,
		`SELECT `+storyColumns+` FROM stories WHERE owner_id = $1 AND slug = $2`,
		ownerID, slug)
	return scanStory(row)
}

func (s *storyStore) Create(ctx context.Context, story *model.Story) error {
	story.ID = id.New()
	row := s.db.Pool().QueryRow(ctx, `
		INSERT INTO stories (id, owner_id, title, slug, synopsis, style_directives)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		story.ID, story.OwnerID, story.Title, story.Slug, story.Synopsis, story.StyleDirectives)
	if err := row.Scan(&story.CreatedAt, &story.UpdatedAt); err != nil {
		return fmt.Errorf("insert story: %w", err)
	}
	return nil
}

func (s *storyStore) Update(ctx context.Context, story *model.Story) error {
	tag, err := s.db.Pool().Exec(ctx, `
		UPDATE stories
		SET title = $3, slug = $4, synopsis = $5, style_directives = $6, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2`,
		story.ID, story.OwnerID, story.Title, story.Slug, story.Synopsis, story.StyleDirectives)
	if err != nil {
		return fmt.Errorf("update story: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *storyStore) Delete(ctx context.Context, storyID int64, ownerID string) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM stories WHERE id = $1 AND owner_id = $2`, storyID, ownerID)
		if err != nil {
			return fmt.Errorf("delete story: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		// Chapters and their revisions go with the story.
		if _, err := tx.Exec(ctx, `
			DELETE FROM chapter_revisions
			WHERE chapter_id IN (SELECT id FROM chapters WHERE story_id = $1)`, storyID); err != nil {
			return fmt.Errorf("delete story revisions: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM chapters WHERE story_id = $1`, storyID); err != nil {
			return fmt.Errorf("delete story chapters: %w", err)
		}
		return nil
	})
}

func (s *storyStore) ListByOwner(ctx context.Context, ownerID string) ([]model.Story, error) {
	rows, err := s.db.Pool().Query(ctx,
		`SELECT `+storyColumns+` FROM stories WHERE owner_id = $1 ORDER BY updated_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	defer rows.Close()

	var out []model.Story
	for rows.Next() {
		var st model.Story
		if err := rows.Scan(&st.ID, &st.OwnerID, &st.Title, &st.Slug, &st.Synopsis,
			&st.StyleDirectives, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func scanStory(row pgx.Row) (*model.Story, error) {
	var st model.Story
	err := row.Scan(&st.ID, &st.OwnerID, &st.Title, &st.Slug, &st.Synopsis,
		&st.StyleDirectives, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}
