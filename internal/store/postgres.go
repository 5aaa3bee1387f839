package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kjstillabower/weather-history-service/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS weather_history (
	id           BIGSERIAL PRIMARY KEY,
	zip_code     TEXT NOT NULL,
	city         TEXT,
	weather_main TEXT,
	description  TEXT,
	temperature  DOUBLE PRECISION,
	feels_like   DOUBLE PRECISION,
	humidity     INTEGER,
	wind_speed   DOUBLE PRECISION,
	latitude     DOUBLE PRECISION,
	longitude    DOUBLE PRECISION,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS weather_history_zip_created_idx
	ON weather_history (zip_code, created_at DESC);
`

const recordColumns = `id, zip_code, city, weather_main, description, temperature, feels_like,
	humidity, wind_speed, latitude, longitude, created_at`

// PostgresStore is a HistoryStore backed by a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore opens a pool and verifies connectivity. maxConns <= 0 keeps the pgx default.
func NewPostgresStore(ctx context.Context, dsn string, maxConns int32) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema creates the history table and index when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return persistenceError("ensure_schema", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return persistenceError("ping", s.pool.Ping(ctx))
}

func (s *PostgresStore) Create(ctx context.Context, in models.WeatherRecordInput) (models.WeatherRecord, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO weather_history (
			zip_code, city, weather_main, description, temperature, feels_like,
			humidity, wind_speed, latitude, longitude
		)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+recordColumns,
		in.ZipCode, in.City, in.WeatherMain, in.Description, in.Temperature, in.FeelsLike,
		in.Humidity, in.WindSpeed, in.Latitude, in.Longitude,
	)
	rec, err := scanRecord(row)
	if err != nil {
		return models.WeatherRecord{}, persistenceError("create", err)
	}
	return rec, nil
}

func (s *PostgresStore) ListByZip(ctx context.Context, zipCode string) ([]models.WeatherRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+recordColumns+`
		 FROM weather_history
		 WHERE zip_code = $1
		 ORDER BY created_at DESC, id DESC`,
		zipCode,
	)
	if err != nil {
		return nil, persistenceError("list_by_zip", err)
	}
	defer rows.Close()

	result := []models.WeatherRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, persistenceError("list_by_zip", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list_by_zip", err)
	}
	return result, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (models.WeatherRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+`
		 FROM weather_history
		 WHERE id = $1`,
		id,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.WeatherRecord{}, ErrRecordNotFound
	}
	if err != nil {
		return models.WeatherRecord{}, persistenceError("find_by_id", err)
	}
	return rec, nil
}

func (s *PostgresStore) DeleteByID(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM weather_history WHERE id = $1`, id)
	if err != nil {
		return persistenceError("delete_by_id", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func scanRecord(row pgx.Row) (models.WeatherRecord, error) {
	var r models.WeatherRecord
	err := row.Scan(
		&r.ID, &r.ZipCode, &r.City, &r.WeatherMain, &r.Description, &r.Temperature, &r.FeelsLike,
		&r.Humidity, &r.WindSpeed, &r.Latitude, &r.Longitude, &r.CreatedAt,
	)
	return r, err
}
