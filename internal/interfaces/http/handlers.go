package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/vat-invoice-ocr/internal/application/service"
	"github.com/garyjia/vat-invoice-ocr/internal/domain/entity"
	"github.com/garyjia/vat-invoice-ocr/internal/export"
	"github.com/garyjia/vat-invoice-ocr/internal/extraction"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InvoiceExtractor is the application surface the handlers call
type InvoiceExtractor interface {
	ProcessFile(ctx context.Context, data []byte, contentType string, opts service.Options) (*entity.ExtractionResult, error)
	ProcessText(ctx context.Context, text string, opts service.Options) (*entity.ExtractionResult, error)
	ProcessVoice(ctx context.Context, audio []byte, mimeType string, opts service.Options) (*entity.ExtractionResult, error)
	ProcessURL(ctx context.Context, rawURL string, opts service.Options) (*entity.ExtractionResult, error)
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	extractor      InvoiceExtractor
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(extractor InvoiceExtractor, maxUploadBytes int64, logger *zap.Logger) *Handlers {
	return &Handlers{
		extractor:      extractor,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Response is the envelope for a completed extraction. JSON is null for a
// degraded success, which carries the unparsed model reply instead.
type Response struct {
	Status           string                  `json:"status"`
	JSON             *entity.InvoiceDocument `json:"json"`
	TextOCR          string                  `json:"text_ocr"`
	Confidence       float64                 `json:"confidence"`
	EngineUsed       string                  `json:"engine_used"`
	ModelUsed        string                  `json:"model_used"`
	ProcessingTimeMS int64                   `json:"processing_time_ms"`
	Outcome          entity.Outcome          `json:"outcome"`
	Message          string                  `json:"message,omitempty"`
	ModelReply       string                  `json:"model_reply,omitempty"`
}

// ErrorResponse is the envelope for a failed request
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string   `json:"status"`
	Timestamp string   `json:"timestamp"`
	Engines   []string `json:"engines"`
}

// TextRequest is the body of POST /ocr/text
type TextRequest struct {
	Text   string `json:"text"`
	Engine string `json:"engine"`
	Model  string `json:"model"`
}

// URLRequest is the body of POST /ocr/url
type URLRequest struct {
	URL    string `json:"url"`
	Engine string `json:"engine"`
	Model  string `json:"model"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Engines:   extraction.Engines(),
	})
}

// ProcessInvoice handles POST /ocr/invoice (multipart "file": image or PDF)
func (h *Handlers) ProcessInvoice(c *gin.Context) {
	opts, ok := h.queryOptions(c)
	if !ok {
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format != "json" && format != "xlsx" {
		h.respondError(c, http.StatusBadRequest, `Invalid format. Use "json" or "xlsx"`)
		return
	}

	data, contentType, ok := h.readUpload(c, "No file uploaded")
	if !ok {
		return
	}

	result, err := h.extractor.ProcessFile(c.Request.Context(), data, contentType, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if format == "xlsx" && result.Document != nil {
		h.respondXLSX(c, result)
		return
	}
	h.respondResult(c, result)
}

// ProcessText handles POST /ocr/text
func (h *Handlers) ProcessText(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		h.respondError(c, http.StatusBadRequest, "Text input is required")
		return
	}
	opts, ok := h.bodyOptions(c, req.Engine, req.Model)
	if !ok {
		return
	}

	result, err := h.extractor.ProcessText(c.Request.Context(), req.Text, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.respondResult(c, result)
}

// ProcessVoice handles POST /ocr/voice (multipart "file": audio)
func (h *Handlers) ProcessVoice(c *gin.Context) {
	opts, ok := h.queryOptions(c)
	if !ok {
		return
	}
	data, contentType, ok := h.readUpload(c, "No audio file uploaded")
	if !ok {
		return
	}

	result, err := h.extractor.ProcessVoice(c.Request.Context(), data, contentType, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.respondResult(c, result)
}

// ProcessURL handles POST /ocr/url
func (h *Handlers) ProcessURL(c *gin.Context) {
	var req URLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		h.respondError(c, http.StatusBadRequest, "URL is required")
		return
	}
	opts, ok := h.bodyOptions(c, req.Engine, req.Model)
	if !ok {
		return
	}

	result, err := h.extractor.ProcessURL(c.Request.Context(), req.URL, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.respondResult(c, result)
}

func (h *Handlers) queryOptions(c *gin.Context) (service.Options, bool) {
	return h.bodyOptions(c, c.Query("engine"), c.Query("model"))
}

// bodyOptions validates the engine at the boundary; unknown engines are a 400
func (h *Handlers) bodyOptions(c *gin.Context, engine, model string) (service.Options, bool) {
	parsed, err := extraction.ParseEngine(engine)
	if err != nil {
		h.respondError(c, http.StatusBadRequest,
			fmt.Sprintf("Invalid engine. Use %q or %q", extraction.EngineGemini, extraction.EngineGPT))
		return service.Options{}, false
	}
	return service.Options{Engine: parsed, Model: strings.TrimSpace(model)}, true
}

// readUpload reads the multipart "file" field under the upload limit
func (h *Handlers) readUpload(c *gin.Context, missingMessage string) ([]byte, string, bool) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Upload exceeds %d bytes", h.maxUploadBytes))
			return nil, "", false
		}
		h.respondError(c, http.StatusBadRequest, missingMessage)
		return nil, "", false
	}

	file, err := header.Open()
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "Failed to open uploaded file")
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return nil, "", false
	}
	if len(data) == 0 {
		h.respondError(c, http.StatusBadRequest, missingMessage)
		return nil, "", false
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, true
}

func (h *Handlers) respondResult(c *gin.Context, result *entity.ExtractionResult) {
	resp := Response{
		Status:           "success",
		JSON:             result.Document,
		TextOCR:          result.RawText,
		Confidence:       result.Confidence,
		EngineUsed:       result.EngineUsed,
		ModelUsed:        result.ModelUsed,
		ProcessingTimeMS: result.ElapsedMS,
		Outcome:          result.Outcome,
	}
	if result.Degraded() {
		resp.Message = "Model reply could not be parsed as an invoice: " + result.NormalizationError
		resp.ModelReply = result.ModelReply
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) respondXLSX(c *gin.Context, result *entity.ExtractionResult) {
	data, err := export.InvoiceXLSX(result.Document)
	if err != nil {
		h.handleError(c, err)
		return
	}
	name := "invoice.xlsx"
	if n := result.Document.GeneralInfo.InvoiceNumber; n != nil && *n != "" {
		name = "invoice-" + *n + ".xlsx"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *Handlers) respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Status: "error", Message: message})
}

// handleError maps the service error taxonomy onto HTTP status codes
func (h *Handlers) handleError(c *gin.Context, err error) {
	status := statusFor(err)
	logger := requestLogger(c, h.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.Int("status", status), zap.Error(err))
	} else {
		logger.Warn("Request rejected", zap.Int("status", status), zap.Error(err))
	}
	h.respondError(c, status, err.Error())
}

func statusFor(err error) int {
	var (
		acqErr      *entity.InputAcquisitionError
		cfgErr      *entity.ConfigurationError
		providerErr *entity.ProviderError
	)
	switch {
	case errors.Is(err, entity.ErrUnknownEngine), errors.Is(err, entity.ErrMissingPayload):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &acqErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &providerErr):
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
