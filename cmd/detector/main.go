package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fraudstream/internal/api"
	"fraudstream/internal/config"
	"fraudstream/internal/domain"
	"fraudstream/internal/generator"
	"fraudstream/internal/processor"
	"fraudstream/internal/repository/memory"
	"fraudstream/internal/scheduler"
	"fraudstream/internal/service"
	"fraudstream/internal/sink"
	"fraudstream/pkg/crypto"
	"fraudstream/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "configs/app.yaml", "path to pipeline configuration")
	flag.Parse()

	logger := setupLogger()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error("Configuration error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	registry, err := processor.BuildRegistry(cfg.Rules)
	if err != nil {
		logger.Error("Configuration error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Starting application",
		slog.String("name", cfg.App.Name),
		slog.Int("rules", registry.Len()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsCollector := metrics.NewCollector(logger)
	store := memory.NewAlertRepository(cfg.Pipeline.RecentAlerts)
	synth := processor.NewSynthesizer(logger)
	pipe := processor.NewPipeline(registry, synth, cfg.Pipeline.Buffer, metricsCollector, logger)

	// Generator and HTTP ingest share the source channel; it is never
	// closed, shutdown happens through ctx.
	source := make(chan []byte, cfg.Pipeline.Buffer)
	gen := generator.New(cfg.Generator.Users, cfg.Generator.FraudProbability, cfg.Generator.Seed, logger)
	go gen.Run(ctx, source, cfg.Generator.Count, time.Duration(cfg.Generator.Interval))

	sinks := buildSinks(cfg, logger)
	notifier := service.NewNotifier(
		&service.MockEmailService{},
		&service.MockSlackService{},
		cfg.Pipeline.CriticalScore,
		3,
		logger,
	)

	outcomes := pipe.Run(ctx, source)
	dispatchDone := make(chan struct{})
	go dispatch(ctx, outcomes, store, sinks, notifier, logger, dispatchDone)

	apiHandler := api.NewAPIHandler(source, store, logger)
	httpServer := startHTTPServer(cfg, apiHandler, logger)
	metricsServer := metricsCollector.StartMetricsServer(cfg.Metrics.Addr)

	sched := scheduler.New(store, logger)
	if err := sched.Start(); err != nil {
		logger.Error("Failed to start scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	waitForShutdown(cancel, dispatchDone, httpServer, metricsServer, notifier, sched, sinks, logger)
	logger.Info("Application shutdown complete")
}

func setupLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

func buildSinks(cfg *config.Config, logger *slog.Logger) []sink.Sink {
	sinks := []sink.Sink{sink.NewConsoleSink(logger)}

	if cfg.NATS.Enabled {
		var signer *crypto.Signer
		if cfg.NATS.SigningKey != "" {
			signer = crypto.NewSigner(cfg.NATS.SigningKey, logger)
		}

		natsSink, err := sink.NewNATSSink(cfg.NATS.URL, cfg.NATS.SubjectPrefix, signer, logger)
		if err != nil {
			logger.Error("Failed to connect NATS sink, continuing without it",
				slog.String("error", err.Error()))
		} else {
			sinks = append(sinks, natsSink)
		}
	}

	return sinks
}

// dispatch drains the merged outcome stream into the store, the sinks and
// the notifier. It is the only consumer of the pipeline output.
func dispatch(
	ctx context.Context,
	outcomes <-chan domain.Outcome,
	store *memory.AlertRepository,
	sinks []sink.Sink,
	notifier *service.Notifier,
	logger *slog.Logger,
	done chan<- struct{},
) {
	defer close(done)

	for outcome := range outcomes {
		if err := store.SaveOutcome(ctx, outcome); err != nil {
			logger.Error("Failed to store outcome", slog.String("error", err.Error()))
		}

		for _, s := range sinks {
			if err := s.Write(ctx, outcome); err != nil {
				logger.Error("Sink write failed", slog.String("error", err.Error()))
			}
		}

		if alert, ok := outcome.(domain.FraudAlert); ok {
			if err := notifier.NotifyAlert(ctx, alert); err != nil {
				logger.Error("Failed to queue notification",
					slog.String("alert_id", alert.AlertID),
					slog.String("error", err.Error()))
			}
		}
	}
}

func startHTTPServer(cfg *config.Config, apiHandler *api.APIHandler, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()

	apiHandler.RegisterRoutes(mux)

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"name": "%s", "status": "ok"}`, cfg.App.Name)
	})

	server := &http.Server{
		Addr:         cfg.API.Port,
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.API.ReadTimeout),
		WriteTimeout: time.Duration(cfg.API.WriteTimeout),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	return server
}

func waitForShutdown(
	cancel context.CancelFunc,
	dispatchDone <-chan struct{},
	httpServer *http.Server,
	metricsServer *http.Server,
	notifier *service.Notifier,
	sched *scheduler.Scheduler,
	sinks []sink.Sink,
	logger *slog.Logger,
) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Info("Shutdown signal received")

	cancel()
	sched.Stop()

	ctx, cancelTimeout := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelTimeout()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.Error("Metrics server shutdown failed", slog.String("error", err.Error()))
	}

	select {
	case <-dispatchDone:
	case <-ctx.Done():
		logger.Error("Outcome dispatch did not drain before timeout")
	}

	if err := notifier.Shutdown(ctx); err != nil {
		logger.Error("Notifier shutdown failed", slog.String("error", err.Error()))
	}

	for _, s := range sinks {
		if err := s.Close(); err != nil {
			logger.Error("Sink close failed", slog.String("error", err.Error()))
		}
	}
}
