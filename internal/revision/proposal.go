// Package revision implements the edit-proposal pipeline: free-form revision
// requests go to the generation service, and the possibly malformed response
// is parsed, validated, and reduced to a structured edit that can be applied
// safely to the chapter text.
package revision

// Kind enumerates the edit kinds a proposal can carry.
type Kind string

const (
	KindReplace       Kind = "replace"
	KindInsert        Kind = "insert"
	KindDelete        Kind = "delete"
	KindReplaceAll    Kind = "replace_all"
	KindClarification Kind = "clarification"
	KindNone          Kind = "none"
)

// IsEdit reports whether the kind mutates the document when applied.
func (k Kind) IsEdit() bool {
	switch k {
	case KindReplace, KindInsert, KindDelete, KindReplaceAll:
		return true
	}
	return false
}

// RawProposal is the wire shape of a model response. Every field is optional
// because the model is untrusted: it can omit fields, invent indices, or emit
// the wrong types. Nothing downstream consumes a RawProposal directly;
// Normalize reduces it to a Proposal first.
//
// StartIndex and EndIndex are byte offsets into the UTF-8 document text, not
// rune counts. A model-supplied offset can land inside a multibyte rune;
// normalization only bounds-checks, it does not snap to rune boundaries.
type RawProposal struct {
	Type                    *string `json:"type"`
	Explanation             *string `json:"explanation"`
	Text                    *string `json:"text,omitempty"`
	StartIndex              *int    `json:"startIndex,omitempty"`
	EndIndex                *int    `json:"endIndex,omitempty"`
	ContextParagraphIndices []int   `json:"contextParagraphIndices,omitempty"`
}

// Proposal is a normalized edit proposal. After Normalize, the offsets are
// guaranteed valid for the document they were validated against, and Text is
// present whenever the kind requires it. Paragraph targeting never survives
// normalization; it is resolved into offsets.
type Proposal struct {
	Kind        Kind
	Explanation string
	Text        string
	StartIndex  int
	EndIndex    int
}

// Clarification builds a clarification proposal with the given explanation.
// Every failure path in the pipeline terminates in one of these so the user
// always sees something actionable.
func Clarification(explanation string) Proposal {
	return Proposal{Kind: KindClarification, Explanation: explanation}
}

// proposalSchema mirrors RawProposal with the constraints the model is asked
// to honor. It exists only to generate the JSON schema embedded in the system
// instruction; the decoder stays fully optional on purpose.
type proposalSchema struct {
	Type                    string `json:"type" jsonschema:"required,enum=replace,enum=insert,enum=delete,enum=replace_all,enum=clarification,enum=none,description=The edit kind"`
	Explanation             string `json:"explanation" jsonschema:"required,description=Rationale for the edit or the clarifying question to ask the user"`
	Text                    string `json:"text,omitempty" jsonschema:"description=New text content; required for replace and insert and replace_all"`
	StartIndex              int    `json:"startIndex,omitempty" jsonschema:"description=Character offset where the edit begins; required for replace and insert and delete"`
	EndIndex                int    `json:"endIndex,omitempty" jsonschema:"description=Character offset where the edit ends (exclusive); required for replace and delete"`
	ContextParagraphIndices []int  `json:"contextParagraphIndices,omitempty" jsonschema:"description=Paragraph numbers from the latest message to target instead of raw offsets"`
}
