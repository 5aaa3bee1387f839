package http

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-history-service/internal/client"
	"github.com/kjstillabower/weather-history-service/internal/lifecycle"
	"github.com/kjstillabower/weather-history-service/internal/models"
	"github.com/kjstillabower/weather-history-service/internal/store"
	"github.com/kjstillabower/weather-history-service/internal/validation"
)

const serviceName = "weather-history-service"

// maxBodyBytes caps POST bodies.
const maxBodyBytes = 1 << 20

//go:embed templates/index.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// WeatherService is the behaviour the handlers need from the service layer.
type WeatherService interface {
	Lookup(ctx context.Context, zipCode string) (models.LookupResult, error)
	SaveRecord(ctx context.Context, in models.WeatherRecordInput) (models.WeatherRecord, error)
	DeleteRecord(ctx context.Context, id int64) error
	APIKeyConfigured() bool
	Ping(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	weatherService WeatherService
	validator      *validation.RecordValidator
	state          *lifecycle.State
	logger         *zap.Logger

	healthStatusMu   sync.Mutex
	healthStatusPrev lifecycle.Status
}

// NewHandler returns a new Handler. A nil state is treated as never draining.
func NewHandler(weatherService WeatherService, state *lifecycle.State, logger *zap.Logger) *Handler {
	if state == nil {
		state = &lifecycle.State{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		weatherService: weatherService,
		validator:      validation.NewRecordValidator(),
		state:          state,
		logger:         logger,
	}
}

// GetPage handles GET /.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	data := struct {
		Title string
	}{"Weather by Zip Code"}
	if err := pageTemplate.Execute(&buf, data); err != nil {
		requestLogger(r, h.logger).Error("render page", zap.Error(err))
		http.Error(w, "Internal server error.", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// StaticHandler serves the embedded page assets under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// GetWeather handles GET /weather/{zipCode}.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	zipCode, err := validation.ValidateZipCode(mux.Vars(r)["zipCode"])
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.weatherService.Lookup(r.Context(), zipCode)
	if err != nil {
		h.writeLookupError(w, r, zipCode, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeLookupError maps weather client failures to responses. Unclassified errors
// are logged and reported as a generic 500.
func (h *Handler) writeLookupError(w http.ResponseWriter, r *http.Request, zipCode string, err error) {
	logger := requestLogger(r, h.logger)
	var upstream *client.UpstreamError
	switch {
	case errors.Is(err, client.ErrAPIKeyMissing):
		logger.Error("weather lookup without API key")
		writeError(w, r, http.StatusInternalServerError, "CONFIG_ERROR", "Server configuration error: API key not set.")
	case errors.Is(err, client.ErrLocationNotFound):
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Weather data not found for zip code %s.", zipCode))
	case errors.As(err, &upstream):
		logger.Warn("upstream error", zap.Int("status", upstream.StatusCode), zap.String("category", string(client.CategorizeError(err))))
		writeError(w, r, upstream.StatusCode, "UPSTREAM_ERROR", "Error fetching weather data: "+upstream.Body)
	case errors.Is(err, client.ErrUpstreamUnavailable):
		logger.Warn("upstream unavailable", zap.String("category", string(client.CategorizeError(err))), zap.Error(err))
		writeError(w, r, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Service unavailable: Could not connect to weather service.")
	default:
		logger.Error("weather lookup failed", zap.String("category", string(client.CategorizeError(err))), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error.")
	}
}

// PostHistory handles POST /weather/history.
func (h *Handler) PostHistory(w http.ResponseWriter, r *http.Request) {
	var in models.WeatherRecordInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body.")
		return
	}
	if err := h.validator.Validate(&in); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	rec, err := h.weatherService.SaveRecord(r.Context(), in)
	if err != nil {
		requestLogger(r, h.logger).Error("save weather record", zap.String("zip", in.ZipCode), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "PERSISTENCE_ERROR", "Failed to save weather record.")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// DeleteHistory handles DELETE /weather/history/{id}.
func (h *Handler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("Invalid record ID %q: must be an integer.", raw))
		return
	}

	err = h.weatherService.DeleteRecord(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{
			"message": fmt.Sprintf("Weather record with ID %d deleted successfully", id),
		})
	case errors.Is(err, store.ErrRecordNotFound):
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Weather record with ID %d not found", id))
	default:
		requestLogger(r, h.logger).Error("delete weather record", zap.Int64("id", id), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "PERSISTENCE_ERROR", "Failed to delete weather record.")
	}
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	var storeErr error
	if !h.state.Draining() {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		storeErr = h.weatherService.Ping(ctx)
		cancel()
	}
	status := h.state.Evaluate(storeErr)

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != status {
		fields := []zap.Field{
			zap.String("previous_status", string(prev)),
			zap.String("current_status", string(status)),
		}
		if storeErr != nil {
			fields = append(fields, zap.Error(storeErr))
		}
		h.logger.Info("health status transition", fields...)
	}
	h.healthStatusPrev = status
	h.healthStatusMu.Unlock()

	checks := map[string]string{"store": "healthy", "weatherApiKey": "configured"}
	if storeErr != nil {
		checks["store"] = "unhealthy"
	}
	if !h.weatherService.APIKeyConfigured() {
		checks["weatherApiKey"] = "missing"
	}

	statusCode := http.StatusOK
	if status != lifecycle.StatusHealthy {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, map[string]interface{}{
		"status":    status,
		"service":   serviceName,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": {"code", "message", "requestId"}}.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": correlationID(r.Context()),
		},
	})
}

func correlationID(ctx context.Context) string {
	if v, ok := ctx.Value("correlation_id").(string); ok {
		return v
	}
	return ""
}

// requestLogger returns the request-scoped logger set by CorrelationIDMiddleware, or fallback.
func requestLogger(r *http.Request, fallback *zap.Logger) *zap.Logger {
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
		return logger
	}
	return fallback
}
