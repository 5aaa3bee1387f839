package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-history-service/internal/observability"
)

// NewRouter wires the handlers and middleware chain.
// History routes precede /weather/{zipCode}.
func NewRouter(h *Handler, tracker *InFlightTracker, logger *zap.Logger, requestTimeout time.Duration) *mux.Router {
	router := mux.NewRouter()
	router.Use(tracker.Middleware)
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)

	router.HandleFunc("/", h.GetPage).Methods(http.MethodGet)
	router.PathPrefix("/static/").Handler(StaticHandler()).Methods(http.MethodGet)
	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)

	weatherRouter := router.PathPrefix("/weather").Subrouter()
	weatherRouter.Use(TimeoutMiddleware(requestTimeout))
	weatherRouter.HandleFunc("/history", h.PostHistory).Methods(http.MethodPost)
	weatherRouter.HandleFunc("/history/{id}", h.DeleteHistory).Methods(http.MethodDelete)
	weatherRouter.HandleFunc("/{zipCode}", h.GetWeather).Methods(http.MethodGet)

	return router
}
