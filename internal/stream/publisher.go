// Package stream publishes proposal-lifecycle events to Redis streams so
// editor clients can follow a revision session over SSE.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"storyloom.app/api/internal/revision"
)

// Publisher writes revision events to a per-chapter Redis stream. It
// implements revision.EventSink. Publishing is best-effort: a Redis outage
// degrades live updates, never the pipeline itself.
type Publisher struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

func NewPublisher(client *redis.Client, prefix string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{client: client, prefix: prefix, logger: logger}
}

// StreamKey returns the stream a chapter's events land on.
func (p *Publisher) StreamKey(chapterID int64) string {
	return fmt.Sprintf("%s:chapter-%d", p.prefix, chapterID)
}

func (p *Publisher) Publish(ctx context.Context, ev revision.Event) {
	if p.client == nil {
		return
	}

	fields := map[string]any{
		"type":       string(ev.Type),
		"chapter_id": ev.ChapterID,
		"seq":        ev.Seq,
		"at":         time.Now().UTC().Format(time.RFC3339Nano),
	}
	if ev.Kind != "" {
		fields["kind"] = string(ev.Kind)
	}
	if ev.Explanation != "" {
		fields["explanation"] = ev.Explanation
	}

	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.StreamKey(ev.ChapterID),
		MaxLen: 1000,
		Approx: true,
		Values: fields,
	}).Err()
	if err != nil {
		p.logger.WarnContext(ctx, "failed to publish revision event",
			"chapter_id", ev.ChapterID,
			"type", ev.Type,
			"error", err)
	}
}

func (p *Publisher) Close() error {
	return p.client.Close()
}
