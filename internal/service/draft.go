package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"storyloom.app/api/common/llm"
	"storyloom.app/api/common/logger"
	"storyloom.app/api/core/config"
	"storyloom.app/api/internal/model"
	"storyloom.app/api/internal/store"
)

// previousTailLen bounds how much of the preceding chapter is quoted for
// continuity. Full chapters would blow the prompt for long works.
const previousTailLen = 4000

// DraftInput carries the parameters for one draft generation.
type DraftInput struct {
	ChapterTitle string
	Guidance     string // free-text direction for this chapter
	UseWebSearch bool   // allow the model to research factual detail
}

type DraftService interface {
	// Generate produces a fresh chapter draft from the story's synopsis and
	// style directives and appends it to the story.
	Generate(ctx context.Context, ownerID string, storyID int64, in DraftInput) (*model.Chapter, error)
}

type draftService struct {
	stories  store.StoryStore
	chapters store.ChapterStore
	client   llm.Client
	cfg      config.LLMConfig
}

func NewDraftService(stories store.StoryStore, chapters store.ChapterStore, client llm.Client, cfg config.LLMConfig) DraftService {
	return &draftService{stories: stories, chapters: chapters, client: client, cfg: cfg}
}

const draftSystemInstruction = `You are a fiction ghostwriter. Write a complete chapter draft in the voice the style directives describe. Output only the chapter prose, no headings, no commentary, no markdown.`

func (s *draftService) Generate(ctx context.Context, ownerID string, storyID int64, in DraftInput) (*model.Chapter, error) {
	story, err := s.stories.GetByID(ctx, storyID, ownerID)
	if err != nil {
		return nil, err
	}

	existing, err := s.chapters.ListByStory(ctx, storyID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("loading existing chapters: %w", err)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "storyloom.draft",
		StoryID:   logger.Ptr(storyID),
		OwnerID:   logger.Ptr(ownerID),
	})

	req := llm.Request{
		SystemInstruction: draftSystemInstruction,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: s.buildDraftPrompt(story, existing, in)},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: llm.Temp(s.cfg.Temperature),
	}
	if in.UseWebSearch && s.cfg.WebSearch {
		req.Tools = []llm.Tool{llm.ToolWebSearch}
	}

	resp, err := s.client.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generating draft: %w", err)
	}

	content := strings.TrimSpace(resp.Text)
	if content == "" {
		return nil, fmt.Errorf("generation service returned an empty draft")
	}

	title := in.ChapterTitle
	if title == "" {
		title = fmt.Sprintf("Chapter %d", len(existing)+1)
	}

	chapter := &model.Chapter{
		StoryID: storyID,
		Title:   title,
		Content: content,
	}
	if err := s.chapters.Create(ctx, chapter); err != nil {
		return nil, fmt.Errorf("saving draft chapter: %w", err)
	}

	slog.InfoContext(ctx, "draft chapter generated",
		"chapter_id", chapter.ID,
		"length", len(content),
		"prompt_tokens", resp.PromptTokens,
		"completion_tokens", resp.CompletionTokens)

	return chapter, nil
}

// buildDraftPrompt assembles the user message: synopsis, style directives,
// per-chapter guidance, then the tail of the previous chapter for continuity.
func (s *draftService) buildDraftPrompt(story *model.Story, existing []model.Chapter, in DraftInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Story: %s\n", story.Title)
	if story.Synopsis != "" {
		fmt.Fprintf(&b, "\nSynopsis:\n%s\n", story.Synopsis)
	}
	if story.StyleDirectives != "" {
		fmt.Fprintf(&b, "\nStyle directives:\n%s\n", story.StyleDirectives)
	}
	if in.ChapterTitle != "" {
		fmt.Fprintf(&b, "\nWrite the chapter titled %q.\n", in.ChapterTitle)
	} else {
		fmt.Fprintf(&b, "\nWrite chapter %d.\n", len(existing)+1)
	}
	if in.Guidance != "" {
		fmt.Fprintf(&b, "\nDirection for this chapter:\n%s\n", in.Guidance)
	}

	if len(existing) > 0 {
		tail := existing[len(existing)-1].Content
		if len(tail) > previousTailLen {
			tail = tail[len(tail)-previousTailLen:]
		}
		if tail != "" {
			fmt.Fprintf(&b, "\nThe previous chapter ends like this; continue from it:\n%s\n", tail)
		}
	}

	return b.String()
}
