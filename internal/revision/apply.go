package revision

import "fmt"

// Apply produces the new document text for an accepted proposal. Pure text
// transformation: no logging, no persistence. Clarification and none are
// no-ops returning the input unchanged.
//
// Bounds are enforced upstream by Normalize; they are re-checked here so a
// proposal that bypassed normalization can never index outside the document.
// Offsets are byte positions into the UTF-8 text, per the wire contract.
func Apply(doc string, p Proposal) (string, error) {
	switch p.Kind {
	case KindClarification, KindNone:
		return doc, nil

	case KindReplaceAll:
		return p.Text, nil

	case KindReplace:
		if err := checkBounds(p.StartIndex, p.EndIndex, len(doc)); err != nil {
			return "", err
		}
		return doc[:p.StartIndex] + p.Text + doc[p.EndIndex:], nil

	case KindInsert:
		if err := checkBounds(p.StartIndex, p.StartIndex, len(doc)); err != nil {
			return "", err
		}
		return doc[:p.StartIndex] + p.Text + doc[p.StartIndex:], nil

	case KindDelete:
		if err := checkBounds(p.StartIndex, p.EndIndex, len(doc)); err != nil {
			return "", err
		}
		return doc[:p.StartIndex] + doc[p.EndIndex:], nil

	default:
		return "", fmt.Errorf("cannot apply proposal of kind %q", p.Kind)
	}
}

func checkBounds(start, end, docLen int) error {
	if start < 0 || end < start || end > docLen {
		return fmt.Errorf("edit bounds [%d, %d) outside document of length %d", start, end, docLen)
	}
	return nil
}
