package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kjstillabower/weather-history-service/internal/models"
)

// MemoryStore implements HistoryStore in process memory. Safe for concurrent use.
// Records do not survive a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]models.WeatherRecord
	now    func() time.Time
}

// NewMemoryStore creates an empty in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		data:   make(map[int64]models.WeatherRecord),
		now:    time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, in models.WeatherRecordInput) (models.WeatherRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.WeatherRecord{}, persistenceError("create", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := models.WeatherRecord{
		ID:          s.nextID,
		ZipCode:     in.ZipCode,
		City:        in.City,
		WeatherMain: in.WeatherMain,
		Description: in.Description,
		Temperature: in.Temperature,
		FeelsLike:   in.FeelsLike,
		Humidity:    in.Humidity,
		WindSpeed:   in.WindSpeed,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		CreatedAt:   s.now().UTC(),
	}
	s.data[rec.ID] = rec
	s.nextID++
	return rec, nil
}

func (s *MemoryStore) ListByZip(ctx context.Context, zipCode string) ([]models.WeatherRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, persistenceError("list_by_zip", err)
	}
	s.mu.RLock()
	result := []models.WeatherRecord{}
	for _, rec := range s.data {
		if rec.ZipCode == zipCode {
			result = append(result, rec)
		}
	}
	s.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id int64) (models.WeatherRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.WeatherRecord{}, persistenceError("find_by_id", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[id]
	if !ok {
		return models.WeatherRecord{}, ErrRecordNotFound
	}
	return rec, nil
}

func (s *MemoryStore) DeleteByID(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return persistenceError("delete_by_id", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return ErrRecordNotFound
	}
	delete(s.data, id)
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return persistenceError("ping", ctx.Err())
}

func (s *MemoryStore) Close() {}
