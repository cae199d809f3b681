package revision

import (
	"log/slog"
	"regexp"
	"strings"
)

// A paragraph boundary is a run of one or more newline characters.
var paragraphBreak = regexp.MustCompile(`\n+`)

// Paragraph is a derived, transient view of the document: a contiguous span
// [StartIndex, EndIndex) numbered in document order. Paragraphs are recomputed
// from the document text for every request; their indices are only valid for
// the request that computed them.
type Paragraph struct {
	Index      int
	Text       string
	StartIndex int
	EndIndex   int
}

// ComputeParagraphs splits the document into paragraph spans. It is a pure,
// deterministic function of the text: concatenating the spans in order and
// restoring the newline runs between them reconstructs the input exactly.
//
// Spans are located by forward scan from the end of the previous span, so
// duplicate paragraph text cannot cause misindexing.
func ComputeParagraphs(doc string) []Paragraph {
	if doc == "" {
		return nil
	}

	parts := paragraphBreak.Split(doc, -1)
	out := make([]Paragraph, 0, len(parts))
	cursor := 0

	for _, part := range parts {
		if part == "" {
			continue
		}
		rel := strings.Index(doc[cursor:], part)
		if rel < 0 {
			// Cannot happen for spans produced by Split, but a failed scan
			// must never silently misindex the remaining paragraphs.
			slog.Warn("paragraph span not found by forward scan, skipping",
				"paragraph", len(out),
				"cursor", cursor)
			continue
		}
		start := cursor + rel
		end := start + len(part)
		out = append(out, Paragraph{
			Index:      len(out),
			Text:       part,
			StartIndex: start,
			EndIndex:   end,
		})
		cursor = end
	}

	return out
}

// SelectParagraphs filters the index to the requested paragraph numbers,
// preserving document order. Unknown numbers are dropped; the second return
// lists them so callers can disclose the drop.
func SelectParagraphs(paragraphs []Paragraph, indices []int) (selected []Paragraph, invalid []int) {
	seen := make(map[int]bool, len(indices))
	want := make(map[int]bool, len(indices))
	for _, i := range indices {
		if seen[i] {
			continue
		}
		seen[i] = true
		if i < 0 || i >= len(paragraphs) {
			invalid = append(invalid, i)
			continue
		}
		want[i] = true
	}
	for _, p := range paragraphs {
		if want[p.Index] {
			selected = append(selected, p)
		}
	}
	return selected, invalid
}
