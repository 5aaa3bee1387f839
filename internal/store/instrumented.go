package store

import (
	"context"
	"errors"
	"time"

	"github.com/kjstillabower/weather-history-service/internal/models"
	"github.com/kjstillabower/weather-history-service/internal/observability"
)

// Instrumented decorates a HistoryStore with operation metrics.
type Instrumented struct {
	next HistoryStore
}

// NewInstrumented wraps next so every call records historyStore* metrics.
func NewInstrumented(next HistoryStore) *Instrumented {
	return &Instrumented{next: next}
}

func observe(op string, start time.Time, err error) {
	status := "success"
	switch {
	case errors.Is(err, ErrRecordNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	observability.HistoryStoreOperationsTotal.WithLabelValues(op, status).Inc()
	observability.HistoryStoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *Instrumented) Create(ctx context.Context, in models.WeatherRecordInput) (models.WeatherRecord, error) {
	start := time.Now()
	rec, err := s.next.Create(ctx, in)
	observe("create", start, err)
	return rec, err
}

func (s *Instrumented) ListByZip(ctx context.Context, zipCode string) ([]models.WeatherRecord, error) {
	start := time.Now()
	recs, err := s.next.ListByZip(ctx, zipCode)
	observe("list_by_zip", start, err)
	return recs, err
}

func (s *Instrumented) FindByID(ctx context.Context, id int64) (models.WeatherRecord, error) {
	start := time.Now()
	rec, err := s.next.FindByID(ctx, id)
	observe("find_by_id", start, err)
	return rec, err
}

func (s *Instrumented) DeleteByID(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.next.DeleteByID(ctx, id)
	observe("delete_by_id", start, err)
	return err
}

func (s *Instrumented) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *Instrumented) Close() {
	s.next.Close()
}
