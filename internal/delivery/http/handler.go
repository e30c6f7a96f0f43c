package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/originlens/backend/internal/domain"
	"github.com/originlens/backend/internal/usecase"
)

const serviceVersion = "1.4.1"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	detectionService *usecase.DetectionService
}

// NewHandler creates a new HTTP handler
func NewHandler(detectionService *usecase.DetectionService) *Handler {
	return &Handler{detectionService: detectionService}
}

// Request DTOs

type detectRequest struct {
	Description string `json:"description"`
	Model       string `json:"model"`
}

type detectProductRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Model       string `json:"model"`
}

type batchDetectRequest struct {
	Descriptions []string `json:"descriptions"`
	Model        string   `json:"model"`
}

type batchDetectProductRequest struct {
	Items []domain.ProductInput `json:"items"`
	Model string                `json:"model"`
}

// Response payloads

type detectionData struct {
	Attributes       *domain.Attributes   `json:"attributes"`
	HSCodeValidation *domain.HSValidation `json:"hscode_validation,omitempty"`
	Cache            bool                 `json:"cache"`
	Time             int64                `json:"time"`
	Model            string               `json:"model,omitempty"`
}

type batchItemData struct {
	Attributes *domain.Attributes `json:"attributes,omitempty"`
	Cache      bool               `json:"cache"`
	Error      *APIError          `json:"error,omitempty"`
}

type batchData struct {
	Results   []batchItemData `json:"results"`
	Total     int             `json:"total"`
	CacheHits int             `json:"cache_hits"`
	AICalls   int             `json:"ai_calls"`
	Time      int64           `json:"time"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "originlens-backend",
		"version": serviceVersion,
	})
}

// DetectCountry handles single-description detection requests
func (h *Handler) DetectCountry(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failedEnvelope("VALIDATION_ERROR", "Invalid request body"))
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		c.JSON(http.StatusBadRequest, failedEnvelope("VALIDATION_ERROR", "Missing 'description' field"))
		return
	}

	result, err := h.detectionService.DetectText(c.Request.Context(), req.Description, req.Model)
	if err != nil {
		c.JSON(statusFor(err), errorEnvelope(err))
		return
	}

	c.JSON(http.StatusOK, okEnvelope(detectionPayload(result, req.Model)))
}

// DetectProduct handles title+description detection requests
func (h *Handler) DetectProduct(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req detectProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failedEnvelope("VALIDATION_ERROR", "Invalid request body"))
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		c.JSON(http.StatusBadRequest, failedEnvelope("VALIDATION_ERROR", "Missing 'description' field"))
		return
	}

	result, err := h.detectionService.DetectProduct(c.Request.Context(), req.Title, req.Description, req.Model)
	if err != nil {
		c.JSON(statusFor(err), errorEnvelope(err))
		return
	}

	c.JSON(http.StatusOK, okEnvelope(detectionPayload(result, req.Model)))
}

// BatchDetect handles batch detection over plain descriptions
func (h *Handler) BatchDetect(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req batchDetectRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Descriptions) == 0 {
		c.JSON(http.StatusBadRequest, failedEnvelope("VALIDATION_ERROR", "Invalid 'descriptions' field"))
		return
	}

	batch, err := h.detectionService.BatchDetectTexts(c.Request.Context(), req.Descriptions, req.Model)
	if err != nil {
		c.JSON(statusFor(err), errorEnvelope(err))
		return
	}

	c.JSON(http.StatusOK, okEnvelope(batchPayload(batch)))
}

// BatchDetectProduct handles batch detection over title+description pairs
func (h *Handler) BatchDetectProduct(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req batchDetectProductRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, failedEnvelope("VALIDATION_ERROR", "Invalid 'items' field"))
		return
	}

	batch, err := h.detectionService.BatchDetectProducts(c.Request.Context(), req.Items, req.Model)
	if err != nil {
		c.JSON(statusFor(err), errorEnvelope(err))
		return
	}

	c.JSON(http.StatusOK, okEnvelope(batchPayload(batch)))
}

// ClearCache empties the result cache
func (h *Handler) ClearCache(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	removed := h.detectionService.ClearCache()
	c.JSON(http.StatusOK, okEnvelope(gin.H{"removed": removed}))
}

// SearchHSCodes searches the tariff reference table by keyword
func (h *Handler) SearchHSCodes(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	keyword := strings.TrimSpace(c.Query("q"))
	if keyword == "" {
		c.JSON(http.StatusBadRequest, failedEnvelope("VALIDATION_ERROR", "Missing 'q' query parameter"))
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, failedEnvelope("VALIDATION_ERROR", "Invalid 'limit' query parameter"))
			return
		}
		limit = parsed
	}

	items := h.detectionService.SearchHSCodes(keyword, limit)
	if items == nil {
		items = []domain.HSCodeItem{}
	}
	c.JSON(http.StatusOK, okEnvelope(gin.H{"items": items, "total": len(items)}))
}

// ValidateHSCode cross-references one code against the tariff table
func (h *Handler) ValidateHSCode(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	code := c.Param("code")
	validation := h.detectionService.ValidateHSCode(code, c.Query("keywords"))
	c.JSON(http.StatusOK, okEnvelope(validation))
}

// ready rejects requests when the detection service was not wired (e.g. the
// detector failed to initialize at startup).
func (h *Handler) ready(c *gin.Context) bool {
	if h.detectionService == nil {
		c.JSON(http.StatusServiceUnavailable, failedEnvelope("INTERNAL_ERROR", "Detection service not configured"))
		return false
	}
	return true
}

// detectionPayload converts a DetectionResult to the wire shape. The model
// field is echoed only when the caller overrode it.
func detectionPayload(result *domain.DetectionResult, modelOverride string) detectionData {
	data := detectionData{
		Attributes:       result.Attributes,
		HSCodeValidation: result.HSValidation,
		Cache:            result.Cache,
		Time:             result.TimeMS,
	}
	if strings.TrimSpace(modelOverride) != "" {
		data.Model = modelOverride
	}
	return data
}

// batchPayload converts a BatchResult, mapping per-item errors to their
// structured form. Item order matches input order.
func batchPayload(batch *domain.BatchResult) batchData {
	results := make([]batchItemData, len(batch.Items))
	for i, item := range batch.Items {
		if item.Err != nil {
			results[i] = batchItemData{
				Error: &APIError{Code: domain.ErrorCode(item.Err), Message: item.Err.Error()},
			}
			continue
		}
		results[i] = batchItemData{Attributes: item.Attributes, Cache: item.Cache}
	}

	return batchData{
		Results:   results,
		Total:     batch.Total,
		CacheHits: batch.CacheHits,
		AICalls:   batch.AICalls,
		Time:      batch.TimeMS,
	}
}
