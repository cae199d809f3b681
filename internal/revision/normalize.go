package revision

import (
	"fmt"
	"sort"
	"strings"
)

// Normalize reconciles a raw proposal against the document it targets. It is
// total: every input yields a well-formed Proposal, with any inconsistency
// (wrong fields for the kind, out-of-range offsets, invalid paragraph
// numbers) downgraded to a clarification naming what failed. A Proposal with
// an edit kind coming out of Normalize is always safe to hand to Apply.
//
// Decision sequence, first match wins:
//  1. replace_all: requires text; offsets are stripped.
//  2. clarification/none: pass through, offsets and text ignored.
//  3. edit kinds with paragraph targeting: resolve the covering span over the
//     valid subset of the targeted paragraphs.
//  4. edit kinds with raw offsets: enforce the per-kind field requirements
//     and document bounds.
func Normalize(raw RawProposal, doc string, paragraphs []Paragraph) Proposal {
	kind := Kind(deref(raw.Type))
	explanation := deref(raw.Explanation)

	switch kind {
	case KindReplaceAll:
		if raw.Text == nil {
			return Clarification(clarifyPrefix(explanation) + "The proposed rewrite was missing its replacement text. Could you restate what the chapter should become?")
		}
		return Proposal{Kind: KindReplaceAll, Explanation: explanation, Text: *raw.Text}

	case KindClarification:
		return Proposal{Kind: KindClarification, Explanation: explanation}

	case KindNone:
		return Proposal{Kind: KindNone, Explanation: explanation}

	case KindReplace, KindInsert, KindDelete:
		if len(raw.ContextParagraphIndices) > 0 {
			return normalizeParagraphTarget(kind, raw, explanation, paragraphs)
		}
		return normalizeOffsets(kind, raw, explanation, len(doc))

	default:
		return Clarification(clarifyPrefix(explanation) + fmt.Sprintf("The proposal had an unrecognized edit type %q, so it was not applied.", deref(raw.Type)))
	}
}

// normalizeParagraphTarget resolves paragraph numbers into the covering
// character span: min start to max end over the targeted paragraphs,
// including any untargeted paragraphs between them.
func normalizeParagraphTarget(kind Kind, raw RawProposal, explanation string, paragraphs []Paragraph) Proposal {
	selected, invalid := SelectParagraphs(paragraphs, raw.ContextParagraphIndices)

	if len(selected) == 0 {
		return Clarification(clarifyPrefix(explanation) + fmt.Sprintf(
			"The edit targeted paragraph(s) %s, which do not exist in the current text (it has %d paragraphs). Which part did you mean?",
			formatIndices(invalid), len(paragraphs)))
	}

	if (kind == KindReplace || kind == KindInsert) && raw.Text == nil {
		return Clarification(clarifyPrefix(explanation) + "The proposed edit was missing its new text. Could you restate what the targeted paragraphs should say?")
	}

	start := selected[0].StartIndex
	end := selected[0].EndIndex
	for _, p := range selected[1:] {
		if p.StartIndex < start {
			start = p.StartIndex
		}
		if p.EndIndex > end {
			end = p.EndIndex
		}
	}

	if len(invalid) > 0 {
		explanation = strings.TrimSpace(explanation) + fmt.Sprintf(
			" (Note: requested paragraph(s) %s do not exist and were skipped.)",
			formatIndices(invalid))
	}

	p := Proposal{Kind: kind, Explanation: explanation, StartIndex: start, EndIndex: end}
	switch kind {
	case KindInsert:
		// Insert needs only a point; the covering end is meaningless.
		p.EndIndex = p.StartIndex
		p.Text = *raw.Text
	case KindReplace:
		p.Text = *raw.Text
	case KindDelete:
		// Any text on a delete is noise.
	}
	return p
}

// normalizeOffsets validates raw character offsets for the edit kinds.
// Requirements: replace needs text+start+end, insert needs text+start,
// delete needs start+end; both-given implies start <= end, and all offsets
// must fall inside [0, len(doc)].
func normalizeOffsets(kind Kind, raw RawProposal, explanation string, docLen int) Proposal {
	needsText := kind == KindReplace || kind == KindInsert
	needsEnd := kind == KindReplace || kind == KindDelete

	if needsText && raw.Text == nil {
		return Clarification(clarifyPrefix(explanation) + "The proposed edit was missing its new text, so it was not applied. Could you restate the change?")
	}
	if raw.StartIndex == nil {
		return Clarification(clarifyPrefix(explanation) + "The proposed edit did not say where in the chapter it applies. Could you point at the passage to change?")
	}
	start := *raw.StartIndex
	if start < 0 || start > docLen {
		return Clarification(clarifyPrefix(explanation) + fmt.Sprintf(
			"The proposed edit referenced position %d, outside the chapter (length %d).", start, docLen))
	}

	end := start
	if needsEnd {
		if raw.EndIndex == nil {
			return Clarification(clarifyPrefix(explanation) + "The proposed edit was missing the end of the range it applies to.")
		}
		end = *raw.EndIndex
		if end < start {
			return Clarification(clarifyPrefix(explanation) + fmt.Sprintf(
				"The proposed edit range was inverted (start %d after end %d).", start, end))
		}
		if end > docLen {
			return Clarification(clarifyPrefix(explanation) + fmt.Sprintf(
				"The proposed edit ran past the end of the chapter (end %d, length %d).", end, docLen))
		}
	}

	p := Proposal{Kind: kind, Explanation: explanation, StartIndex: start, EndIndex: end}
	if needsText {
		p.Text = *raw.Text
	}
	return p
}

func clarifyPrefix(explanation string) string {
	explanation = strings.TrimSpace(explanation)
	if explanation == "" {
		return ""
	}
	return explanation + "\n\n"
}

func formatIndices(indices []int) string {
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, n := range sorted {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
