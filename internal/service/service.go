package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-history-service/internal/client"
	"github.com/kjstillabower/weather-history-service/internal/models"
	"github.com/kjstillabower/weather-history-service/internal/observability"
	"github.com/kjstillabower/weather-history-service/internal/store"
)

// step names a persistence step. Failures of a non-critical step are logged
// and counted but never reach the caller.
type step struct {
	name     string
	critical bool
}

var (
	stepAutoSave    = step{name: "auto_save", critical: false}
	stepHistoryRead = step{name: "history_read", critical: false}
	stepCreate      = step{name: "create", critical: true}
	stepFind        = step{name: "find", critical: true}
	stepDelete      = step{name: "delete", critical: true}
)

// WeatherService combines upstream lookups with the history store.
type WeatherService struct {
	client client.WeatherClient
	store  store.HistoryStore
	logger *zap.Logger
}

// NewWeatherService creates a WeatherService. logger is used when the request
// context carries none; nil means no fallback logging.
func NewWeatherService(c client.WeatherClient, s store.HistoryStore, logger *zap.Logger) *WeatherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherService{client: c, store: s, logger: logger}
}

// loggerFromContext returns the request-scoped logger, or fallback when absent.
func loggerFromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return fallback
}

// APIKeyConfigured reports whether upstream lookups can be attempted.
func (s *WeatherService) APIKeyConfigured() bool {
	return s.client.Configured()
}

// Ping checks the history store.
func (s *WeatherService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Lookup fetches current weather for zipCode, records it, and returns it with
// every stored record for that zip, newest first. Only the fetch can fail.
func (s *WeatherService) Lookup(ctx context.Context, zipCode string) (models.LookupResult, error) {
	logger := loggerFromContext(ctx, s.logger)
	observability.RecordWeatherQuery(zipCode)

	latest, err := s.client.GetCurrentWeather(ctx, zipCode)
	if err != nil {
		return models.LookupResult{}, err
	}

	_, err = s.store.Create(ctx, models.RecordInputFromWeather(zipCode, latest))
	_ = s.settle(ctx, stepAutoSave, zipCode, err)

	history, err := s.store.ListByZip(ctx, zipCode)
	if s.settle(ctx, stepHistoryRead, zipCode, err) != nil || history == nil {
		history = []models.WeatherRecord{}
	}

	logger.Debug("weather served",
		zap.String("zip", zipCode),
		zap.Int("history", len(history)),
	)
	return models.LookupResult{Latest: latest, History: history}, nil
}

// SaveRecord stores a caller-supplied record.
func (s *WeatherService) SaveRecord(ctx context.Context, in models.WeatherRecordInput) (models.WeatherRecord, error) {
	rec, err := s.store.Create(ctx, in)
	if err := s.settle(ctx, stepCreate, in.ZipCode, err); err != nil {
		return models.WeatherRecord{}, err
	}
	return rec, nil
}

// DeleteRecord removes the record with id. Returns store.ErrRecordNotFound when
// the record is absent, including when it disappears between lookup and delete.
func (s *WeatherService) DeleteRecord(ctx context.Context, id int64) error {
	rec, err := s.store.FindByID(ctx, id)
	if err := s.settle(ctx, stepFind, "", err); err != nil {
		return err
	}
	if err := s.settle(ctx, stepDelete, rec.ZipCode, s.store.DeleteByID(ctx, id)); err != nil {
		return err
	}
	return nil
}

// settle applies the step's failure policy. Critical errors come back wrapped
// with the step name. Best-effort errors are logged and counted, and returned
// as-is so the caller can pick a fallback.
func (s *WeatherService) settle(ctx context.Context, st step, zipCode string, err error) error {
	if err == nil {
		return nil
	}
	if st.critical {
		return fmt.Errorf("%s: %w", st.name, err)
	}
	observability.BestEffortFailuresTotal.WithLabelValues(st.name).Inc()
	loggerFromContext(ctx, s.logger).Warn("best-effort persistence step failed",
		zap.String("step", st.name),
		zap.String("zip", zipCode),
		zap.Error(err),
	)
	return err
}
