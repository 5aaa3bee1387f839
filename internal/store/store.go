package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/kjstillabower/weather-history-service/internal/models"
)

// HistoryStore persists weather lookups keyed by zip code.
type HistoryStore interface {
	// Create assigns ID and CreatedAt and returns the stored record.
	Create(ctx context.Context, in models.WeatherRecordInput) (models.WeatherRecord, error)
	// ListByZip returns every record for zipCode, newest first. Never nil on success.
	ListByZip(ctx context.Context, zipCode string) ([]models.WeatherRecord, error)
	FindByID(ctx context.Context, id int64) (models.WeatherRecord, error)
	DeleteByID(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
	Close()
}

var (
	// ErrRecordNotFound is returned by FindByID and DeleteByID for unknown ids.
	ErrRecordNotFound = errors.New("weather record not found")
	// ErrPersistence matches every *PersistenceError.
	ErrPersistence = errors.New("persistence failure")
)

// PersistenceError wraps a failure of the underlying storage.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("history store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

func persistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
