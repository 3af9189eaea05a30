// Package relay provides the AI relay bounded context module.
// This file wires the providers, the relay service and its routes.
package relay

import (
	"context"

	apphttp "medportal_backend/internal/http"
	"medportal_backend/internal/relay/handler"
	"medportal_backend/internal/relay/service"
	"medportal_backend/platform/ai/gemini"
	"medportal_backend/platform/ai/moonshot"
	"medportal_backend/platform/config"
	"medportal_backend/platform/logger"
	"medportal_backend/platform/validator"

	"google.golang.org/adk/model"
)

// Module is the relay bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the relay module. Hospital search always goes through
// Gemini because it needs maps grounding; predictions use the configured
// provider.
func NewModule(ctx context.Context, cfg config.AIConfig, val *validator.Validator, log *logger.Logger) *Module {
	locator := gemini.NewModel(ctx, gemini.Config{
		APIKey:  cfg.GetGeminiAPIKey(),
		Model:   cfg.GetGeminiModel(),
		BaseURL: cfg.GetGeminiBaseURL(),
	})
	if err := locator.Ready(); err != nil {
		log.Warn("gemini provider unavailable; relay calls will fail until GEMINI_API_KEY is set", "error", err)
	}

	var predictor model.LLM = locator
	if cfg.GetPredictionProvider() == config.ProviderMoonshot {
		predictor = moonshot.NewModel(moonshot.Config{
			APIKey:  cfg.GetMoonshotAPIKey(),
			BaseURL: cfg.GetMoonshotBaseURL(),
			Model:   cfg.GetMoonshotModel(),
		})
	}
	log.Info("relay providers configured", "predictor", predictor.Name(), "locator", locator.Name())

	svc := service.New(predictor, locator, val, log, cfg.GetAITimeout())
	return &Module{
		handler: handler.New(svc, val, log),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "relay"
}

// Service exposes the relay service for non-HTTP callers.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the relay endpoints under /api.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.API)
}

var _ apphttp.Module = (*Module)(nil)
