package dto

import (
	"storyloom.app/api/internal/revision"
)

type RevisionRequest struct {
	Text             string   `json:"text" binding:"required,min=1,max=10000"`
	ParagraphIndices []int    `json:"paragraph_indices"`
	Snippets         []string `json:"snippets" binding:"max=20,dive,max=2000"`
}

// ProposalResponse is the displayable outcome of one revision request. Kind
// is always present; clarifications carry only an explanation.
type ProposalResponse struct {
	Kind        string `json:"kind"`
	Explanation string `json:"explanation"`
	Text        string `json:"text,omitempty"`
	StartIndex  int    `json:"start_index"`
	EndIndex    int    `json:"end_index"`
	Status      string `json:"status"`
	Seq         int64  `json:"seq"`
}

func ToProposalResponse(r revision.Result) *ProposalResponse {
	return &ProposalResponse{
		Kind:        string(r.Proposal.Kind),
		Explanation: r.Proposal.Explanation,
		Text:        r.Proposal.Text,
		StartIndex:  r.Proposal.StartIndex,
		EndIndex:    r.Proposal.EndIndex,
		Status:      string(r.Status),
		Seq:         r.Seq,
	}
}

type AcceptResponse struct {
	Kind    string `json:"kind"`
	Content string `json:"content"`
}
