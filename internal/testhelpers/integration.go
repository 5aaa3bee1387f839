//go:build integration
// +build integration

package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/kjstillabower/weather-history-service/internal/client"
	"github.com/kjstillabower/weather-history-service/internal/service"
	"github.com/kjstillabower/weather-history-service/internal/store"
)

const defaultAPIURL = "https://api.openweathermap.org/data/2.5/weather"

// IntegrationTestConfig holds configuration for integration tests.
type IntegrationTestConfig struct {
	APIKey      string
	APIURL      string
	DatabaseURL string // empty selects the in-memory store
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips the test if OPENWEATHERMAP_API_KEY is not set.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	t.Helper()
	apiKey := os.Getenv("OPENWEATHERMAP_API_KEY")
	if apiKey == "" {
		t.Skip("OPENWEATHERMAP_API_KEY not set, skipping integration test")
	}
	apiURL := os.Getenv("OPENWEATHERMAP_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return IntegrationTestConfig{
		APIKey:      apiKey,
		APIURL:      apiURL,
		DatabaseURL: os.Getenv("TEST_DATABASE_URL"),
	}
}

// SetupIntegrationStore opens Postgres when DatabaseURL is set and reachable,
// otherwise an in-memory store. The store is closed on test cleanup.
func SetupIntegrationStore(t *testing.T, cfg IntegrationTestConfig) store.HistoryStore {
	t.Helper()
	var st store.HistoryStore = store.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL, 2)
		if err == nil {
			err = pg.EnsureSchema(ctx)
		}
		if err != nil {
			t.Logf("Postgres not available (%v), using in-memory store", err)
		} else {
			st = pg
			t.Logf("Using Postgres store")
		}
	}
	t.Cleanup(st.Close)
	return store.NewInstrumented(st)
}

// SetupIntegrationClient creates a weather client for integration tests.
func SetupIntegrationClient(t *testing.T, cfg IntegrationTestConfig) *client.OpenWeatherClient {
	t.Helper()
	c, err := client.NewOpenWeatherClient(cfg.APIKey, cfg.APIURL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	return c
}

// SetupIntegrationService wires a live client and the integration store.
func SetupIntegrationService(t *testing.T, cfg IntegrationTestConfig) *service.WeatherService {
	t.Helper()
	return service.NewWeatherService(SetupIntegrationClient(t, cfg), SetupIntegrationStore(t, cfg), nil)
}
