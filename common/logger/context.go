package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Fields flow through context enrichment, enabling zero-touch logging where business
// context (story_id, chapter_id, etc.) is automatically included in all log statements.
type LogFields struct {
	StoryID    *int64  // Story being edited
	ChapterID  *int64  // Chapter under revision
	OwnerID    *string // Owner identity from the gateway
	RequestSeq *int64  // Revision-session request sequence number
	Component  string  // Component name (e.g., "storyloom.revision.session")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.StoryID != nil {
		result.StoryID = next.StoryID
	}
	if next.ChapterID != nil {
		result.ChapterID = next.ChapterID
	}
	if next.OwnerID != nil {
		result.OwnerID = next.OwnerID
	}
	if next.RequestSeq != nil {
		result.RequestSeq = next.RequestSeq
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{ChapterID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
// Useful for logging potentially long strings like documents or model output.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
