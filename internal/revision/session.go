package revision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"storyloom.app/api/common/llm"
	"storyloom.app/api/common/logger"
)

// Session errors surfaced to the service layer.
var (
	// ErrSuperseded means a newer request was submitted while this one was
	// in flight; its response was discarded (last-request-wins).
	ErrSuperseded = errors.New("revision request superseded by a newer one")
	// ErrNoPendingProposal means accept/reject was called with nothing pending.
	ErrNoPendingProposal = errors.New("no pending proposal")
)

// Status distinguishes how a submit resolved, beyond the proposal itself.
type Status string

const (
	StatusOK             Status = "ok"
	StatusSafetyBlocked  Status = "safety_blocked"
	StatusAuthError      Status = "auth_error"
	StatusTransportError Status = "transport_error"
)

// Result is the outcome of one submitted request. Proposal is always
// displayable, including on failure statuses, where it is a clarification
// describing what went wrong.
type Result struct {
	Proposal Proposal
	Status   Status
	Seq      int64
}

// Selection carries the editor-side context for a request: paragraph numbers
// the user marked (valid only against this request's paragraph index) and
// free-text snippets they highlighted.
type Selection struct {
	ParagraphIndices []int
	Snippets         []string
}

// EventType enumerates proposal-lifecycle events published to the stream.
type EventType string

const (
	EventProposalReady EventType = "proposal_ready"
	EventAccepted      EventType = "accepted"
	EventRejected      EventType = "rejected"
	EventStaleDropped  EventType = "stale_dropped"
)

// Event is one proposal-lifecycle notification.
type Event struct {
	ChapterID   int64
	Type        EventType
	Seq         int64
	Kind        Kind
	Explanation string
}

// EventSink receives lifecycle events. Publishing is best-effort; sinks must
// not fail the pipeline.
type EventSink interface {
	Publish(ctx context.Context, ev Event)
}

// Session orchestrates one editing conversation over one chapter document.
// Single-writer: the session owns its document for the duration of the
// interaction; concurrent sessions never share state. The generation call is
// the only long-latency operation and runs outside the lock, so a newer
// request can supersede an in-flight one.
type Session struct {
	chapterID int64
	client    llm.Client
	events    EventSink // may be nil

	mu      sync.Mutex
	doc     string
	turns   []Turn
	pending *Proposal
	seq     int64
}

// NewSession creates a session over the given document text.
func NewSession(chapterID int64, doc string, client llm.Client, events EventSink) *Session {
	return &Session{
		chapterID: chapterID,
		doc:       doc,
		client:    client,
		events:    events,
	}
}

// SubmitRequest runs one request through the pipeline: prompt build,
// generation call, extraction, normalization. It returns the resulting
// proposal for display. Submitting while an earlier request is in flight
// supersedes it: the earlier response is dropped when it arrives.
//
// Generation failures never escape as errors; they come back as
// clarification proposals with a distinguishing Status.
func (s *Session) SubmitRequest(ctx context.Context, text string, sel Selection) (Result, error) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	doc := s.doc
	turns := append([]Turn(nil), s.turns...)
	s.pending = nil // a new request implicitly discards any pending proposal
	s.mu.Unlock()

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component:  "storyloom.revision.session",
		ChapterID:  logger.Ptr(s.chapterID),
		RequestSeq: logger.Ptr(seq),
	})

	paragraphs := ComputeParagraphs(doc)
	selected, invalid := SelectParagraphs(paragraphs, sel.ParagraphIndices)
	if len(invalid) > 0 {
		slog.DebugContext(ctx, "dropping unknown selected paragraphs", "indices", invalid)
	}

	prompt := BuildPrompt(PromptInput{
		Document:           doc,
		Request:            text,
		SelectedParagraphs: selected,
		Snippets:           sel.Snippets,
		History:            turns,
	})

	messages := append(prompt.History, llm.Message{Role: llm.RoleUser, Content: prompt.UserMessage})
	resp, genErr := s.client.Generate(ctx, llm.Request{
		SystemInstruction: prompt.SystemInstruction,
		Messages:          messages,
		ResponseFormat:    llm.FormatJSON,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		// A newer request won; this response must not become the pending
		// proposal. Logged, not surfaced.
		slog.InfoContext(ctx, "dropping stale revision response", "current_seq", s.seq)
		s.publish(ctx, Event{ChapterID: s.chapterID, Type: EventStaleDropped, Seq: seq})
		return Result{}, ErrSuperseded
	}

	var proposal Proposal
	status := StatusOK

	switch {
	case genErr != nil:
		proposal, status = failureProposal(genErr)
		slog.WarnContext(ctx, "generation failed", "status", status, "error", genErr)
		s.turns = append(s.turns, Turn{Request: text})

	default:
		proposal = s.extractAndNormalize(ctx, resp.Text, doc, paragraphs)
		s.turns = append(s.turns, Turn{Request: text, Proposal: &proposal})
	}

	if proposal.Kind.IsEdit() {
		s.pending = &proposal
	}

	slog.InfoContext(ctx, "revision request resolved",
		"kind", proposal.Kind,
		"status", status,
		"explanation", logger.Truncate(proposal.Explanation, 200))
	s.publish(ctx, Event{
		ChapterID:   s.chapterID,
		Type:        EventProposalReady,
		Seq:         seq,
		Kind:        proposal.Kind,
		Explanation: logger.Truncate(proposal.Explanation, 500),
	})

	return Result{Proposal: proposal, Status: status, Seq: seq}, nil
}

// extractAndNormalize parses the raw model output and validates the result.
// Unparseable output becomes a clarification carrying the raw text verbatim
// so the user always sees what the model said.
func (s *Session) extractAndNormalize(ctx context.Context, raw, doc string, paragraphs []Paragraph) Proposal {
	rawProposal, err := ExtractProposal(raw)
	if err != nil {
		slog.WarnContext(ctx, "unparseable model output",
			"error", err,
			"output", logger.Truncate(raw, 300))
		return Clarification(fmt.Sprintf(
			"I couldn't turn the assistant's reply into an edit. Here is what it said:\n\n%s", raw))
	}
	return Normalize(rawProposal, doc, paragraphs)
}

// AcceptProposal applies the pending proposal, replaces the session document,
// and clears the pending state. Returns the accepted proposal and the new
// document text so the caller can persist both.
func (s *Session) AcceptProposal(ctx context.Context) (Proposal, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return Proposal{}, "", ErrNoPendingProposal
	}

	accepted := *s.pending
	newDoc, err := Apply(s.doc, accepted)
	if err != nil {
		// Normalize guarantees applicable proposals; reaching this means the
		// document changed underneath the proposal.
		s.pending = nil
		return Proposal{}, "", fmt.Errorf("applying accepted proposal: %w", err)
	}

	s.doc = newDoc
	s.pending = nil

	slog.InfoContext(ctx, "proposal accepted",
		"chapter_id", s.chapterID,
		"kind", accepted.Kind,
		"doc_length", len(newDoc))
	s.publish(ctx, Event{ChapterID: s.chapterID, Type: EventAccepted, Seq: s.seq, Kind: accepted.Kind})

	return accepted, newDoc, nil
}

// RejectProposal clears the pending proposal without touching the document.
func (s *Session) RejectProposal(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return ErrNoPendingProposal
	}
	kind := s.pending.Kind
	s.pending = nil

	slog.InfoContext(ctx, "proposal rejected", "chapter_id", s.chapterID, "kind", kind)
	s.publish(ctx, Event{ChapterID: s.chapterID, Type: EventRejected, Seq: s.seq, Kind: kind})
	return nil
}

// ResetConversation clears the turn history without touching the document.
// Used when the user starts a fresh discussion context.
func (s *Session) ResetConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	s.pending = nil
}

// Document returns the current document text.
func (s *Session) Document() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// PendingProposal returns the pending proposal, if any.
func (s *Session) PendingProposal() (Proposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Proposal{}, false
	}
	return *s.pending, true
}

func (s *Session) publish(ctx context.Context, ev Event) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, ev)
}

// failureProposal maps a generation error to a user-visible clarification
// with a distinguishing message per failure class.
func failureProposal(err error) (Proposal, Status) {
	switch {
	case errors.Is(err, llm.ErrSafetyBlocked):
		return Clarification("The writing assistant declined this request on content-safety grounds. Try rephrasing it."), StatusSafetyBlocked
	case errors.Is(err, llm.ErrUnauthorized):
		return Clarification("The writing assistant is misconfigured on the server (authentication failed). Your text is untouched; please contact support."), StatusAuthError
	default:
		return Clarification("The writing assistant could not be reached. Your text is untouched; please try again."), StatusTransportError
	}
}
