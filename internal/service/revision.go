package service

import (
	"context"
	"log/slog"
	"sync"

	"storyloom.app/api/common/llm"
	"storyloom.app/api/common/logger"
	"storyloom.app/api/internal/model"
	"storyloom.app/api/internal/revision"
	"storyloom.app/api/internal/store"
)

// requestExcerptLen bounds what gets stored as the revision history excerpt.
const requestExcerptLen = 200

// RevisionSessions is the handler-facing contract of the session manager.
type RevisionSessions interface {
	SubmitRequest(ctx context.Context, ownerID string, chapterID int64, text string, sel revision.Selection) (revision.Result, error)
	Accept(ctx context.Context, ownerID string, chapterID int64) (revision.Proposal, string, error)
	Reject(ctx context.Context, ownerID string, chapterID int64) error
	Reset(ctx context.Context, ownerID string, chapterID int64) error
	Evict(chapterID int64)
}

// RevisionManager owns the live revision sessions, one per chapter. Sessions
// load the chapter text on first use and hold it in memory for the length of
// the interaction; accepted edits are written back through the chapter store.
type RevisionManager struct {
	chapters  store.ChapterStore
	revisions store.RevisionStore
	client    llm.Client
	events    revision.EventSink

	mu       sync.Mutex
	sessions map[int64]*sessionEntry
}

type sessionEntry struct {
	ownerID     string
	session     *revision.Session
	lastRequest string
}

func NewRevisionManager(chapters store.ChapterStore, revisions store.RevisionStore, client llm.Client, events revision.EventSink) *RevisionManager {
	return &RevisionManager{
		chapters:  chapters,
		revisions: revisions,
		client:    client,
		events:    events,
		sessions:  make(map[int64]*sessionEntry),
	}
}

// SubmitRequest routes a revision request to the chapter's session, creating
// it on first use.
func (m *RevisionManager) SubmitRequest(ctx context.Context, ownerID string, chapterID int64, text string, sel revision.Selection) (revision.Result, error) {
	entry, err := m.entry(ctx, ownerID, chapterID)
	if err != nil {
		return revision.Result{}, err
	}

	result, err := entry.session.SubmitRequest(ctx, text, sel)
	if err != nil {
		return revision.Result{}, err
	}

	m.mu.Lock()
	entry.lastRequest = text
	m.mu.Unlock()

	return result, nil
}

// Accept applies the chapter's pending proposal, persists the new content,
// and records a revision history row. Returns the accepted proposal and the
// resulting chapter text.
func (m *RevisionManager) Accept(ctx context.Context, ownerID string, chapterID int64) (revision.Proposal, string, error) {
	entry, err := m.entry(ctx, ownerID, chapterID)
	if err != nil {
		return revision.Proposal{}, "", err
	}

	accepted, newDoc, err := entry.session.AcceptProposal(ctx)
	if err != nil {
		return revision.Proposal{}, "", err
	}

	if err := m.chapters.UpdateContent(ctx, chapterID, ownerID, newDoc); err != nil {
		return revision.Proposal{}, "", err
	}

	m.mu.Lock()
	excerpt := logger.Truncate(entry.lastRequest, requestExcerptLen)
	m.mu.Unlock()

	rev := &model.ChapterRevision{
		ChapterID:      chapterID,
		Kind:           string(accepted.Kind),
		RequestExcerpt: excerpt,
		ResultLength:   len(newDoc),
	}
	if err := m.revisions.Create(ctx, rev); err != nil {
		// The content write already landed and the pending proposal is gone;
		// history is best-effort on top, so log instead of failing the accept.
		slog.WarnContext(ctx, "failed to record revision history",
			"chapter_id", chapterID,
			"error", err)
	}

	return accepted, newDoc, nil
}

// Reject discards the chapter's pending proposal.
func (m *RevisionManager) Reject(ctx context.Context, ownerID string, chapterID int64) error {
	entry, err := m.entry(ctx, ownerID, chapterID)
	if err != nil {
		return err
	}
	return entry.session.RejectProposal(ctx)
}

// Reset clears the chapter's conversation history so the next request starts
// fresh against the current text.
func (m *RevisionManager) Reset(ctx context.Context, ownerID string, chapterID int64) error {
	entry, err := m.entry(ctx, ownerID, chapterID)
	if err != nil {
		return err
	}
	entry.session.ResetConversation()
	return nil
}

// Evict drops a chapter's session, discarding in-memory conversation state.
// Called when the chapter is deleted or its content changes outside the
// session.
func (m *RevisionManager) Evict(chapterID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chapterID)
}

// entry returns the chapter's session, loading the chapter on first use. The
// load doubles as the ownership check; a cached session still verifies the
// caller against the owner that created it.
func (m *RevisionManager) entry(ctx context.Context, ownerID string, chapterID int64) (*sessionEntry, error) {
	m.mu.Lock()
	if entry, ok := m.sessions[chapterID]; ok {
		defer m.mu.Unlock()
		if entry.ownerID != ownerID {
			return nil, store.ErrNotFound
		}
		return entry, nil
	}
	m.mu.Unlock()

	chapter, err := m.chapters.GetByID(ctx, chapterID, ownerID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have raced the load.
	if entry, ok := m.sessions[chapterID]; ok {
		if entry.ownerID != ownerID {
			return nil, store.ErrNotFound
		}
		return entry, nil
	}

	entry := &sessionEntry{
		ownerID: ownerID,
		session: revision.NewSession(chapterID, chapter.Content, m.client, m.events),
	}
	m.sessions[chapterID] = entry
	return entry, nil
}
