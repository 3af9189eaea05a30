package handler

import (
	"errors"
	"io"
	"net/http"

	"medportal_backend/internal/relay/service"
	"medportal_backend/internal/relay/transport"
	"medportal_backend/platform/apperr"
	"medportal_backend/platform/httpkit"
	"medportal_backend/platform/logger"
	"medportal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgSymptomsRequired = "Symptoms array is required"
	msgPredictFailed    = "Failed to predict disease"
	msgHospitalsFailed  = "Failed to fetch hospitals"
	msgInvalidRequest   = "invalid request"
	msgBodyTooLarge     = "request body too large"
)

// Handler serves the AI relay endpoints. Upstream failures are logged with
// their cause and answered with a fixed message.
type Handler struct {
	svc *service.Service
	val *validator.Validator
	log *logger.Logger
}

// New creates a new relay handler.
func New(svc *service.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, log: log}
}

// RegisterRoutes mounts the relay endpoints on an /api group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/predict-disease", h.PredictDisease)
	rg.POST("/hospitals", h.FindHospitals)
}

func (h *Handler) PredictDisease(c *gin.Context) {
	var req transport.PredictDiseaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isBodyTooLarge(err) {
			httpkit.Error(c, http.StatusRequestEntityTooLarge, msgBodyTooLarge, nil)
			return
		}
		httpkit.Error(c, http.StatusBadRequest, msgSymptomsRequired, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgSymptomsRequired, nil)
		return
	}

	rec, err := h.svc.PredictCondition(c.Request.Context(), req.Symptoms)
	if err != nil {
		h.fail(c, err, msgPredictFailed)
		return
	}

	httpkit.OK(c, rec)
}

func (h *Handler) FindHospitals(c *gin.Context) {
	var req transport.HospitalSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		if isBodyTooLarge(err) {
			httpkit.Error(c, http.StatusRequestEntityTooLarge, msgBodyTooLarge, nil)
			return
		}
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	hospitals, err := h.svc.FindHospitals(c.Request.Context(), req.QueryText(), req.Coordinates())
	if err != nil {
		h.fail(c, err, msgHospitalsFailed)
		return
	}

	httpkit.OK(c, hospitals)
}

// fail attaches err to the request for the access log and answers with
// message. Every upstream failure kind maps to 500.
func (h *Handler) fail(c *gin.Context, err error, message string) {
	attrs := []any{
		"path", c.Request.URL.Path,
		"kind", apperr.GetKind(err).String(),
	}
	if details := apperr.GetDetails(err); details != nil {
		attrs = append(attrs, "details", details)
	}
	h.log.WithContext(c.Request.Context()).Warn("relay request failed", attrs...)
	_ = c.Error(err)
	httpkit.Mask(c, err, message)
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
