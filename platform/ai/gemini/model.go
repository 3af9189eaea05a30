// Package gemini adapts the Gemini generate-content API to the ADK model.LLM
// interface so callers can swap providers without touching prompt code.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.0-flash"

// ErrMissingAPIKey is returned from every call when no API key was configured.
var ErrMissingAPIKey = errors.New("gemini api key is not configured")

// Config for Gemini
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string       // optional override, e.g. a proxy or a test server
	HTTPClient *http.Client // optional
}

// Model implements model.LLM on top of the genai client.
// A Model without a usable client still constructs; its calls return the
// construction error instead.
type Model struct {
	name    string
	models  *genai.Models
	initErr error
}

// NewModel builds a Gemini-backed model.LLM. It never fails: a missing key or
// client error surfaces on the first call so the server can start without it.
func NewModel(ctx context.Context, cfg Config) *Model {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	m := &Model{name: cfg.Model}

	if strings.TrimSpace(cfg.APIKey) == "" {
		m.initErr = ErrMissingAPIKey
		return m
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		m.initErr = fmt.Errorf("create gemini client: %w", err)
		return m
	}
	m.models = client.Models
	return m
}

// Name returns the configured model name.
func (m *Model) Name() string {
	return m.name
}

// Ready reports the construction error, if any.
func (m *Model) Ready() error {
	return m.initErr
}

// GenerateContent issues one non-streaming generate-content call.
func (m *Model) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		resp, err := m.generate(ctx, req)
		yield(resp, err)
	}
}

func (m *Model) generate(ctx context.Context, req *model.LLMRequest) (*model.LLMResponse, error) {
	if m.initErr != nil {
		return nil, m.initErr
	}
	if req == nil {
		return nil, errors.New("gemini: nil request")
	}

	name := req.Model
	if name == "" {
		name = m.name
	}

	resp, err := m.models.GenerateContent(ctx, name, req.Contents, req.Config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	return toLLMResponse(resp), nil
}

// toLLMResponse keeps the first candidate, which is all a single-turn caller
// ever reads.
func toLLMResponse(resp *genai.GenerateContentResponse) *model.LLMResponse {
	out := &model.LLMResponse{}
	if resp == nil {
		return out
	}
	out.UsageMetadata = resp.UsageMetadata

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			out.ErrorCode = string(resp.PromptFeedback.BlockReason)
			out.ErrorMessage = resp.PromptFeedback.BlockReasonMessage
		}
		return out
	}

	candidate := resp.Candidates[0]
	if candidate == nil {
		return out
	}
	out.Content = candidate.Content
	out.GroundingMetadata = candidate.GroundingMetadata
	out.FinishReason = candidate.FinishReason
	return out
}

var _ model.LLM = (*Model)(nil)
