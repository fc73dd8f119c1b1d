package metrics

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	registry              *prometheus.Registry
	transactionsIngested  prometheus.Counter
	malformedRecords      prometheus.Counter
	alertsEmitted         *prometheus.CounterVec
	riskScoreDistribution prometheus.Histogram
	logger                *slog.Logger
}

func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		transactionsIngested: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "transactions_ingested_total",
			Help: "Total number of raw transaction records fed to the pipeline",
		}),
		malformedRecords: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "malformed_records_total",
			Help: "Total number of records rejected during validation",
		}),
		alertsEmitted: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "fraud_alerts_emitted_total",
			Help: "Total number of fraud alerts emitted, by fraud type",
		}, []string{"fraud_type"}),
		riskScoreDistribution: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "alert_risk_score_distribution",
			Help:    "Distribution of alert risk scores",
			Buckets: []float64{0, 20, 40, 60, 80, 100},
		}),
		logger: logger,
	}
}

func (c *Collector) RecordIngested() {
	c.transactionsIngested.Inc()
}

func (c *Collector) RecordMalformed() {
	c.malformedRecords.Inc()
}

func (c *Collector) RecordAlert(fraudType string, riskScore float64) {
	c.alertsEmitted.WithLabelValues(fraudType).Inc()
	c.riskScoreDistribution.Observe(riskScore)
}

func (c *Collector) GetHandler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) StartMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.GetHandler())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		c.logger.Info("Starting metrics server", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()

	return server
}

func (c *Collector) Shutdown(ctx context.Context) error {
	c.logger.Info("Metrics collector shutdown complete")
	return nil
}
