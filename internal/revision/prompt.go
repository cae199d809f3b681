package revision

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"storyloom.app/api/common/llm"
)

// PromptInput carries everything the prompt builder needs for one request.
type PromptInput struct {
	Document           string
	Request            string
	SelectedParagraphs []Paragraph // already resolved against the current index
	Snippets           []string    // free-text selections from the editor
	History            []Turn
}

// Prompt is the assembled generation request. This is the only place that
// encodes the wire contract with the generation service; the extractor is
// written against the schema embedded here. The "character offsets" the
// instruction speaks of are byte positions into the UTF-8 chapter text as
// sent, matching how Normalize and Apply index the document.
type Prompt struct {
	SystemInstruction string
	UserMessage       string
	History           []llm.Message
}

// Turn is one request/proposal pair in the conversation. The history is
// append-only for the lifetime of a session.
type Turn struct {
	Request  string
	Proposal *Proposal // nil when the request produced no usable proposal
}

var systemInstruction = sync.OnceValue(func() string {
	schema, err := json.MarshalIndent(llm.GenerateSchemaFrom(proposalSchema{}), "", "  ")
	if err != nil {
		// Reflection over a static struct; this only fires on a programming error.
		panic(fmt.Sprintf("marshal proposal schema: %v", err))
	}

	var b strings.Builder
	b.WriteString(`You are an editing assistant for long-form fiction. The user will send a revision request together with the full current text of their chapter. Respond with a single JSON object describing one edit, matching this schema:

`)
	b.Write(schema)
	b.WriteString(`

Rules:
- Respond with JSON only. No prose before or after the object.
- "startIndex" and "endIndex" are character offsets into the chapter text exactly as provided, with endIndex exclusive.
- Use "replace_all" for whole-chapter rewrites; leave the offsets out, they are ignored.
- Use "contextParagraphIndices" only for paragraphs explicitly marked [Paragraph N] in the latest message. Paragraph numbers from earlier messages are stale.
- Use "insert" with just "startIndex" to add text at a point.
- Use "delete" with "startIndex" and "endIndex" to remove a span; omit "text".
- If the request is ambiguous or you cannot identify the target text, use "clarification" and ask your question in "explanation".
- If no change is needed, use "none" and say why in "explanation".
- "explanation" is always required and is shown to the user verbatim.`)
	return b.String()
})

// SystemInstruction returns the static instruction sent with every revision
// request. Exposed for tests asserting the wire contract.
func SystemInstruction() string {
	return systemInstruction()
}

// BuildPrompt assembles the generation request. Pure string assembly; the
// user message interpolates, in order: the raw request, the marked selected
// paragraphs, the quoted free-text selections, and the full document for
// grounding.
func BuildPrompt(in PromptInput) Prompt {
	var b strings.Builder
	b.WriteString(in.Request)

	for _, p := range in.SelectedParagraphs {
		b.WriteString(fmt.Sprintf("\n\n[Paragraph %d] %q", p.Index, p.Text))
	}

	for _, s := range in.Snippets {
		b.WriteString(fmt.Sprintf("\n\n- %q", s))
	}

	b.WriteString("\n\nCurrent chapter text:\n")
	b.WriteString(in.Document)

	return Prompt{
		SystemInstruction: systemInstruction(),
		UserMessage:       b.String(),
		History:           historyMessages(in.History),
	}
}

// historyMessages replays prior turns as alternating user/model messages.
// The model side carries the proposal's explanation rather than applied text:
// the current document already reflects accepted edits, so the explanation is
// the part of the exchange the model has not otherwise seen.
func historyMessages(turns []Turn) []llm.Message {
	if len(turns) == 0 {
		return nil
	}
	msgs := make([]llm.Message, 0, len(turns)*2)
	for _, t := range turns {
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: t.Request})
		reply := "(no proposal)"
		if t.Proposal != nil {
			reply = t.Proposal.Explanation
		}
		msgs = append(msgs, llm.Message{Role: llm.RoleModel, Content: reply})
	}
	return msgs
}
