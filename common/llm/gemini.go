package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"
)

type geminiClient struct {
	client *genai.Client
	model  string
	cfg    Config
}

// newGeminiClient creates a Client backed by the Gemini API.
func newGeminiClient(ctx context.Context, cfg Config) (Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &geminiClient{
		client: client,
		model:  model,
		cfg:    cfg,
	}, nil
}

func (c *geminiClient) Generate(ctx context.Context, req Request) (*Response, error) {
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		contents = append(contents, genai.NewContentFromText(msg.Content, geminiRole(msg.Role)))
	}

	genCfg := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.cfg.MaxTokens
	}
	if maxTokens > 0 {
		genCfg.MaxOutputTokens = int32(maxTokens)
	}

	if req.Temperature != nil {
		genCfg.Temperature = genai.Ptr(float32(*req.Temperature))
	} else if c.cfg.Temperature > 0 {
		genCfg.Temperature = genai.Ptr(float32(c.cfg.Temperature))
	}
	if req.TopP != nil {
		genCfg.TopP = genai.Ptr(float32(*req.TopP))
	} else if c.cfg.TopP > 0 {
		genCfg.TopP = genai.Ptr(float32(c.cfg.TopP))
	}
	if req.TopK != nil {
		genCfg.TopK = genai.Ptr(float32(*req.TopK))
	} else if c.cfg.TopK > 0 {
		genCfg.TopK = genai.Ptr(float32(c.cfg.TopK))
	}

	if req.ResponseFormat == FormatJSON {
		genCfg.ResponseMIMEType = "application/json"
	}

	for _, tool := range req.Tools {
		if tool == ToolWebSearch {
			genCfg.Tools = append(genCfg.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
		}
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, genCfg)
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: prompt blocked (%s)", ErrSafetyBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: response withheld", ErrSafetyBlocked)
	}

	out := &Response{Text: resp.Text()}
	if resp.UsageMetadata != nil {
		out.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	slog.DebugContext(ctx, "gemini generate completed",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", out.PromptTokens,
		"completion_tokens", out.CompletionTokens)

	return out, nil
}

func (c *geminiClient) Model() string {
	return c.model
}

// geminiRole maps a message role onto the genai role type. Unknown roles fall
// back to user.
func geminiRole(role string) genai.Role {
	if role == RoleModel {
		return genai.RoleModel
	}
	return genai.RoleUser
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
		}
	}
	return fmt.Errorf("gemini generate: %w", err)
}
