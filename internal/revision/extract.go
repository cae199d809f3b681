package revision

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Extraction failures. Callers substitute a clarification proposal carrying
// the raw model text; these errors never reach the user directly.
var (
	ErrNoJSON           = errors.New("no JSON object found in model output")
	ErrMissingType      = errors.New("proposal missing type field")
	ErrMissingExplained = errors.New("proposal missing explanation field")
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractProposal recovers a RawProposal from raw model output. Two ordered
// strategies: the interior of the first fenced code block, then the substring
// between the first '{' and the last '}'. Pure parser, no I/O.
func ExtractProposal(raw string) (RawProposal, error) {
	candidates := make([]string, 0, 2)

	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}

	open := strings.Index(raw, "{")
	close := strings.LastIndex(raw, "}")
	if open >= 0 && close > open {
		candidates = append(candidates, raw[open:close+1])
	}

	if len(candidates) == 0 {
		return RawProposal{}, ErrNoJSON
	}

	var lastErr error
	for _, candidate := range candidates {
		var p RawProposal
		if err := json.Unmarshal([]byte(candidate), &p); err != nil {
			lastErr = fmt.Errorf("parsing proposal JSON: %w", err)
			continue
		}
		if p.Type == nil {
			lastErr = ErrMissingType
			continue
		}
		if p.Explanation == nil {
			lastErr = ErrMissingExplained
			continue
		}
		return p, nil
	}

	return RawProposal{}, lastErr
}
