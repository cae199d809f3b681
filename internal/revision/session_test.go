package revision_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"storyloom.app/api/common/llm"
	"storyloom.app/api/internal/revision"
)

// stubClient satisfies llm.Client with a per-test generate function.
type stubClient struct {
	generate func(ctx context.Context, req llm.Request) (*llm.Response, error)
}

func (c *stubClient) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return c.generate(ctx, req)
}

func (c *stubClient) Model() string { return "stub" }

// recordingSink collects published events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []revision.Event
}

func (r *recordingSink) Publish(_ context.Context, ev revision.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingSink) all() []revision.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]revision.Event(nil), r.events...)
}

func textResponse(s string) *llm.Response {
	return &llm.Response{Text: s}
}

var _ = Describe("Session", func() {
	var (
		ctx    context.Context
		client *stubClient
		sink   *recordingSink
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = &stubClient{}
		sink = &recordingSink{}
	})

	newSession := func(doc string) *revision.Session {
		return revision.NewSession(42, doc, client, sink)
	}

	Describe("submitting a request", func() {
		It("turns a valid model response into a pending edit", func() {
			client.generate = func(_ context.Context, _ llm.Request) (*llm.Response, error) {
				return textResponse(`{"type":"replace","explanation":"Shorter greeting.","text":"Hi","startIndex":0,"endIndex":5}`), nil
			}

			session := newSession("Hello world")
			result, err := session.SubmitRequest(ctx, "Make the greeting shorter.", revision.Selection{})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(revision.StatusOK))
			Expect(result.Proposal.Kind).To(Equal(revision.KindReplace))
			Expect(result.Proposal.Text).To(Equal("Hi"))

			pending, ok := session.PendingProposal()
			Expect(ok).To(BeTrue())
			Expect(pending).To(Equal(result.Proposal))
			Expect(session.Document()).To(Equal("Hello world"), "submit must not mutate the document")
		})

		It("sends the request, selections and document to the generation service", func() {
			var captured llm.Request
			client.generate = func(_ context.Context, req llm.Request) (*llm.Response, error) {
				captured = req
				return textResponse(`{"type":"none","explanation":"ok"}`), nil
			}

			session := newSession("A.\nB.\nC.")
			_, err := session.SubmitRequest(ctx, "Look at the middle.", revision.Selection{
				ParagraphIndices: []int{1},
				Snippets:         []string{"B."},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(captured.SystemInstruction).To(ContainSubstring("JSON"))
			Expect(captured.ResponseFormat).To(Equal(llm.FormatJSON))
			Expect(captured.Messages).To(HaveLen(1))
			msg := captured.Messages[0].Content
			Expect(msg).To(ContainSubstring("Look at the middle."))
			Expect(msg).To(ContainSubstring(`[Paragraph 1] "B."`))
			Expect(msg).To(ContainSubstring("A.\nB.\nC."))
		})

		It("does not keep clarifications as pending proposals", func() {
			client.generate = func(_ context.Context, _ llm.Request) (*llm.Response, error) {
				return textResponse(`{"type":"clarification","explanation":"Which paragraph did you mean?"}`), nil
			}

			session := newSession("Some text.")
			result, err := session.SubmitRequest(ctx, "Fix it.", revision.Selection{})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Proposal.Kind).To(Equal(revision.KindClarification))
			_, ok := session.PendingProposal()
			Expect(ok).To(BeFalse())
			_, _, acceptErr := session.AcceptProposal(ctx)
			Expect(acceptErr).To(MatchError(revision.ErrNoPendingProposal))
		})

		It("turns unparseable model output into a clarification carrying the raw text", func() {
			client.generate = func(_ context.Context, _ llm.Request) (*llm.Response, error) {
				return textResponse("I would just make it better overall!"), nil
			}

			session := newSession("Some text.")
			result, err := session.SubmitRequest(ctx, "Improve it.", revision.Selection{})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(revision.StatusOK))
			Expect(result.Proposal.Kind).To(Equal(revision.KindClarification))
			Expect(result.Proposal.Explanation).To(ContainSubstring("I would just make it better overall!"))
		})

		It("publishes a proposal_ready event", func() {
			client.generate = func(_ context.Context, _ llm.Request) (*llm.Response, error) {
				return textResponse(`{"type":"none","explanation":"nothing to do"}`), nil
			}

			session := newSession("Some text.")
			_, err := session.SubmitRequest(ctx, "Check it.", revision.Selection{})
			Expect(err).NotTo(HaveOccurred())

			events := sink.all()
			Expect(events).To(HaveLen(1))
			Expect(events[0].Type).To(Equal(revision.EventProposalReady))
			Expect(events[0].ChapterID).To(Equal(int64(42)))
			Expect(events[0].Kind).To(Equal(revision.KindNone))
		})
	})

	Describe("generation failures", func() {
		entries := []struct {
			name       string
			err        error
			wantStatus revision.Status
		}{
			{"safety block", fmt.Errorf("blocked: %w", llm.ErrSafetyBlocked), revision.StatusSafetyBlocked},
			{"bad credentials", fmt.Errorf("401: %w", llm.ErrUnauthorized), revision.StatusAuthError},
			{"transport error", errors.New("connection refused"), revision.StatusTransportError},
		}

		for _, entry := range entries {
			entry := entry
			It("maps a "+entry.name+" to a clarification", func() {
				client.generate = func(_ context.Context, _ llm.Request) (*llm.Response, error) {
					return nil, entry.err
				}

				session := newSession("Some text.")
				result, err := session.SubmitRequest(ctx, "Fix it.", revision.Selection{})

				Expect(err).NotTo(HaveOccurred())
				Expect(result.Status).To(Equal(entry.wantStatus))
				Expect(result.Proposal.Kind).To(Equal(revision.KindClarification))
				Expect(result.Proposal.Explanation).NotTo(BeEmpty())
				_, ok := session.PendingProposal()
				Expect(ok).To(BeFalse())
			})
		}
	})

	Describe("accepting and rejecting", func() {
		proposeReplace := func() {
			client.generate = func(_ context.Context, _ llm.Request) (*llm.Response, error) {
				return textResponse(`{"type":"replace","explanation":"Shorter.","text":"Hi","startIndex":0,"endIndex":5}`), nil
			}
		}

		It("applies the pending proposal on accept", func() {
			proposeReplace()
			session := newSession("Hello world")
			_, err := session.SubmitRequest(ctx, "Shorten the greeting.", revision.Selection{})
			Expect(err).NotTo(HaveOccurred())

			accepted, newDoc, err := session.AcceptProposal(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(accepted.Kind).To(Equal(revision.KindReplace))
			Expect(newDoc).To(Equal("Hi world"))
			Expect(session.Document()).To(Equal("Hi world"))

			_, ok := session.PendingProposal()
			Expect(ok).To(BeFalse())

			events := sink.all()
			Expect(events[len(events)-1].Type).To(Equal(revision.EventAccepted))
		})

		It("leaves the document alone on reject", func() {
			proposeReplace()
			session := newSession("Hello world")
			_, err := session.SubmitRequest(ctx, "Shorten the greeting.", revision.Selection{})
			Expect(err).NotTo(HaveOccurred())

			Expect(session.RejectProposal(ctx)).To(Succeed())
			Expect(session.Document()).To(Equal("Hello world"))
			_, ok := session.PendingProposal()
			Expect(ok).To(BeFalse())

			events := sink.all()
			Expect(events[len(events)-1].Type).To(Equal(revision.EventRejected))
		})

		It("rejects twice is an error", func() {
			proposeReplace()
			session := newSession("Hello world")
			_, err := session.SubmitRequest(ctx, "Shorten it.", revision.Selection{})
			Expect(err).NotTo(HaveOccurred())

			Expect(session.RejectProposal(ctx)).To(Succeed())
			Expect(session.RejectProposal(ctx)).To(MatchError(revision.ErrNoPendingProposal))
		})

		It("discards the pending proposal when a new request arrives", func() {
			proposeReplace()
			session := newSession("Hello world")
			_, err := session.SubmitRequest(ctx, "Shorten it.", revision.Selection{})
			Expect(err).NotTo(HaveOccurred())

			client.generate = func(_ context.Context, _ llm.Request) (*llm.Response, error) {
				return textResponse(`{"type":"clarification","explanation":"What instead?"}`), nil
			}
			_, err = session.SubmitRequest(ctx, "Actually, something else.", revision.Selection{})
			Expect(err).NotTo(HaveOccurred())

			_, ok := session.PendingProposal()
			Expect(ok).To(BeFalse(), "old proposal must not survive a new request")
		})
	})

	Describe("last-request-wins", func() {
		It("drops the response of a superseded request", func() {
			entered := make(chan struct{})
			release := make(chan struct{})
			first := true
			var mu sync.Mutex

			client.generate = func(_ context.Context, _ llm.Request) (*llm.Response, error) {
				mu.Lock()
				isFirst := first
				first = false
				mu.Unlock()

				if isFirst {
					close(entered)
					<-release
					return textResponse(`{"type":"replace","explanation":"Slow answer.","text":"SLOW","startIndex":0,"endIndex":5}`), nil
				}
				return textResponse(`{"type":"replace","explanation":"Fast answer.","text":"FAST","startIndex":0,"endIndex":5}`), nil
			}

			session := newSession("Hello world")

			type outcome struct {
				result revision.Result
				err    error
			}
			firstDone := make(chan outcome, 1)
			go func() {
				res, err := session.SubmitRequest(ctx, "Slow request.", revision.Selection{})
				firstDone <- outcome{res, err}
			}()

			Eventually(entered).Should(BeClosed())

			secondResult, err := session.SubmitRequest(ctx, "Fast request.", revision.Selection{})
			Expect(err).NotTo(HaveOccurred())
			Expect(secondResult.Proposal.Text).To(Equal("FAST"))

			close(release)
			var firstOutcome outcome
			Eventually(firstDone).Should(Receive(&firstOutcome))
			Expect(firstOutcome.err).To(MatchError(revision.ErrSuperseded))

			pending, ok := session.PendingProposal()
			Expect(ok).To(BeTrue())
			Expect(pending.Text).To(Equal("FAST"), "the stale response must never become pending")

			var stale []revision.Event
			for _, ev := range sink.all() {
				if ev.Type == revision.EventStaleDropped {
					stale = append(stale, ev)
				}
			}
			Expect(stale).To(HaveLen(1))
		})
	})

	Describe("conversation history", func() {
		It("replays prior turns to the generation service", func() {
			var lastMessages []llm.Message
			client.generate = func(_ context.Context, req llm.Request) (*llm.Response, error) {
				lastMessages = req.Messages
				return textResponse(`{"type":"none","explanation":"Looks good."}`), nil
			}

			session := newSession("Some text.")
			_, err := session.SubmitRequest(ctx, "First request.", revision.Selection{})
			Expect(err).NotTo(HaveOccurred())
			_, err = session.SubmitRequest(ctx, "Second request.", revision.Selection{})
			Expect(err).NotTo(HaveOccurred())

			Expect(lastMessages).To(HaveLen(3))
			Expect(lastMessages[0].Role).To(Equal(llm.RoleUser))
			Expect(lastMessages[0].Content).To(Equal("First request."))
			Expect(lastMessages[1].Role).To(Equal(llm.RoleModel))
			Expect(lastMessages[1].Content).To(Equal("Looks good."))
			Expect(lastMessages[2].Content).To(ContainSubstring("Second request."))
		})

		It("forgets prior turns after a reset", func() {
			var lastMessages []llm.Message
			client.generate = func(_ context.Context, req llm.Request) (*llm.Response, error) {
				lastMessages = req.Messages
				return textResponse(`{"type":"none","explanation":"ok"}`), nil
			}

			session := newSession("Some text.")
			_, err := session.SubmitRequest(ctx, "First request.", revision.Selection{})
			Expect(err).NotTo(HaveOccurred())

			session.ResetConversation()

			_, err = session.SubmitRequest(ctx, "Fresh start.", revision.Selection{})
			Expect(err).NotTo(HaveOccurred())
			Expect(lastMessages).To(HaveLen(1))
		})
	})
})
