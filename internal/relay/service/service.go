// Package service is the AI relay: it turns symptom lists and location queries
// into provider requests and normalizes the replies. It holds no state besides
// its injected providers, so concurrent calls never contend.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"medportal_backend/internal/relay/transport"
	"medportal_backend/platform/apperr"
	"medportal_backend/platform/logger"
	"medportal_backend/platform/validator"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// DefaultTimeout bounds a single provider round trip when none is configured.
const DefaultTimeout = 30 * time.Second

// Service relays requests to the configured providers.
type Service struct {
	predictor model.LLM
	locator   model.LLM
	val       *validator.Validator
	log       *logger.Logger
	timeout   time.Duration
}

// New creates a relay service. predictor answers disease predictions and
// locator answers hospital searches; locator must support maps grounding.
func New(predictor, locator model.LLM, val *validator.Validator, log *logger.Logger, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		predictor: predictor,
		locator:   locator,
		val:       val,
		log:       log,
		timeout:   timeout,
	}
}

// rawRecommendation mirrors the provider payload with pointers so that absent
// fields can be told apart from zero values.
type rawRecommendation struct {
	Disease     *string   `json:"disease" validate:"required"`
	Confidence  *float64  `json:"confidence" validate:"required"`
	Suggestions *[]string `json:"suggestions" validate:"required"`
	Medicines   *[]string `json:"medicines" validate:"required"`
	Precautions *[]string `json:"precautions" validate:"required"`
	Urgency     *string   `json:"urgency" validate:"required"`
}

// PredictCondition asks the predictor for a structured recommendation.
// symptoms must be non-empty; order is preserved in the prompt.
func (s *Service) PredictCondition(ctx context.Context, symptoms []string) (transport.DiseaseRecommendation, error) {
	const op = "relay.PredictCondition"

	if len(symptoms) == 0 {
		return transport.DiseaseRecommendation{}, apperr.Validation("symptoms are required").WithOp(op)
	}

	req := &model.LLMRequest{
		Contents: genai.Text(buildPredictionPrompt(symptoms)),
		Config: &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   recommendationSchema(),
		},
	}

	resp, err := s.call(ctx, s.predictor, "predict_condition", req)
	if err != nil {
		return transport.DiseaseRecommendation{}, withOp(err, op)
	}

	text := responseText(resp)
	if text == "" {
		return transport.DiseaseRecommendation{}, apperr.EmptyResponse("empty response from AI").WithOp(op)
	}

	rec, err := s.decodeRecommendation(text)
	if err != nil {
		return transport.DiseaseRecommendation{}, withOp(err, op)
	}
	return rec, nil
}

// FindHospitals asks the locator for nearby venues and returns the maps
// venues found in its grounding metadata. A reply without venues is an empty
// result, not an error.
func (s *Service) FindHospitals(ctx context.Context, query string, location *transport.LatLng) ([]transport.Hospital, error) {
	const op = "relay.FindHospitals"

	clause := locationContext(strings.TrimSpace(query), location)
	req := &model.LLMRequest{
		Contents: genai.Text(buildHospitalPrompt(clause)),
		Config:   hospitalSearchConfig(location),
	}

	resp, err := s.call(ctx, s.locator, "find_hospitals", req)
	if err != nil {
		return nil, withOp(err, op)
	}
	if resp == nil {
		return hospitalsFromGrounding(nil), nil
	}
	return hospitalsFromGrounding(resp.GroundingMetadata), nil
}

// call performs exactly one provider round trip under the per-call deadline.
func (s *Service) call(ctx context.Context, llm model.LLM, operation string, req *model.LLMRequest) (*model.LLMResponse, error) {
	if llm == nil {
		return nil, apperr.Provider("no provider configured", nil)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	var (
		resp *model.LLMResponse
		err  error
	)
	for r, e := range llm.GenerateContent(callCtx, req, false) {
		resp, err = r, e
		break
	}
	s.log.WithContext(ctx).ProviderCall(llm.Name(), operation, time.Since(start), err)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, apperr.Timeout(fmt.Sprintf("provider did not answer within %s", s.timeout), err)
		}
		return nil, apperr.Provider("generate content", err)
	}
	if resp != nil && resp.ErrorCode != "" {
		return nil, apperr.Provider("provider rejected request", fmt.Errorf("%s: %s", resp.ErrorCode, resp.ErrorMessage))
	}
	return resp, nil
}

func (s *Service) decodeRecommendation(text string) (transport.DiseaseRecommendation, error) {
	var raw rawRecommendation
	if err := json.Unmarshal([]byte(trimCodeFence(text)), &raw); err != nil {
		return transport.DiseaseRecommendation{}, apperr.ParseFailure("decode recommendation", err)
	}
	if err := s.val.Struct(raw); err != nil {
		return transport.DiseaseRecommendation{}, apperr.ParseFailure("recommendation is missing fields", err).
			WithDetails(validator.FieldErrors(err))
	}

	rec := transport.DiseaseRecommendation{
		Disease:     strings.TrimSpace(*raw.Disease),
		Confidence:  *raw.Confidence,
		Suggestions: *raw.Suggestions,
		Medicines:   *raw.Medicines,
		Precautions: *raw.Precautions,
		Urgency:     transport.Urgency(strings.ToUpper(strings.TrimSpace(*raw.Urgency))),
	}
	if err := s.val.Struct(rec); err != nil {
		return transport.DiseaseRecommendation{}, apperr.ParseFailure("recommendation has invalid values", err).
			WithDetails(validator.FieldErrors(err))
	}
	return rec, nil
}

// responseText joins the non-thought text parts of a reply.
func responseText(resp *model.LLMResponse) string {
	if resp == nil || resp.Content == nil {
		return ""
	}
	var builder strings.Builder
	for _, part := range resp.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		builder.WriteString(part.Text)
	}
	return strings.TrimSpace(builder.String())
}

// trimCodeFence unwraps ```json fenced replies some providers emit even in
// JSON mode.
func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func withOp(err error, op string) error {
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) && domainErr.Op == "" {
		domainErr.Op = op
	}
	return err
}
