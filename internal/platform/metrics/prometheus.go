package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
)

// MetricsManager holds custom Prometheus metrics.
type MetricsManager struct {
	Registry                  *prometheus.Registry
	RestaurantsCreatedTotal   prometheus.Counter
	ReviewsCreatedTotal       prometheus.Counter
	RepliesCreatedTotal       prometheus.Counter
	NotificationsCreatedTotal prometheus.Counter
	HTTPErrorsTotal           *prometheus.CounterVec
	HTTPLatency               *prometheus.HistogramVec
}

// NewMetricsManager initializes and registers custom Prometheus metrics.
func NewMetricsManager(serviceName string) *MetricsManager {
	registry := prometheus.NewRegistry()

	restaurantsCreatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "restaurants_created_total",
		Help:      "Total number of restaurants created.",
	})
	reviewsCreatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "reviews_created_total",
		Help:      "Total number of reviews created.",
	})
	repliesCreatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "replies_created_total",
		Help:      "Total number of owner replies created.",
	})
	notificationsCreatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "notifications_created_total",
		Help:      "Total number of notifications created.",
	})
	httpErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "http_errors_total",
		Help:      "Total number of HTTP errors by route and status.",
	}, []string{"route", "status"})
	httpLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "http_request_latency_seconds",
		Help:      "Latency of HTTP requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	registry.MustRegister(
		restaurantsCreatedTotal,
		reviewsCreatedTotal,
		repliesCreatedTotal,
		notificationsCreatedTotal,
		httpErrorsTotal,
		httpLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:                  registry,
		RestaurantsCreatedTotal:   restaurantsCreatedTotal,
		ReviewsCreatedTotal:       reviewsCreatedTotal,
		RepliesCreatedTotal:       repliesCreatedTotal,
		NotificationsCreatedTotal: notificationsCreatedTotal,
		HTTPErrorsTotal:           httpErrorsTotal,
		HTTPLatency:               httpLatency,
	}
}

// StartMetricsServer starts an HTTP server to expose Prometheus metrics.
func StartMetricsServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	return server.ListenAndServe()
}
