package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	appservice "github.com/turtacn/naps/internal/application/service"
	"github.com/turtacn/naps/internal/config"
	domainservice "github.com/turtacn/naps/internal/domain/service"
	"github.com/turtacn/naps/internal/infrastructure/aimodel"
	"github.com/turtacn/naps/internal/infrastructure/monitoring"
	"github.com/turtacn/naps/internal/infrastructure/persistence/memory"
	"github.com/turtacn/naps/internal/infrastructure/publish"
	"github.com/turtacn/naps/internal/interfaces/http"
	"github.com/turtacn/naps/internal/interfaces/http/handlers"
	"github.com/turtacn/naps/internal/simulator"
	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/logger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx := context.Background()

	tracing, err := monitoring.NewTracingManager(&cfg.Tracing, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize tracing", err)
	}
	defer tracing.Shutdown(ctx)

	metrics := monitoring.NewMetrics()
	policyStore := memory.NewPolicyStore()

	// Broker publisher, or a noop when kafka is not configured.
	var publisher domainservice.EventPublisher
	if cfg.Kafka.Enabled {
		publisher, err = publish.NewKafkaPublisher(cfg.Kafka, appLogger)
		if err != nil {
			appLogger.Fatal(ctx, "Failed to create kafka publisher", err)
		}
	} else {
		publisher = publish.NewNoopPublisher()
	}
	defer publisher.Close()

	riskScorer, detector, recommender := buildAnalysisStrategies(cfg, appLogger)

	orchestrator := appservice.NewAnalysisOrchestrator(
		riskScorer, detector, recommender, policyStore, metrics, appLogger)

	pipeline := appservice.NewPipeline(
		orchestrator, cfg.Pipeline.QueueSize, cfg.Pipeline.Workers, metrics, appLogger)
	pipeline.Start(ctx)

	pool := simulator.NewDevicePool(metrics, appLogger)
	eventGen := simulator.NewEventGenerator(publisher, pipeline, metrics, appLogger)
	sim := simulator.New(cfg.Simulator, pool, eventGen, metrics, appLogger)
	sim.Start(ctx)

	// Hot-reload simulator tuning on config file changes.
	config.Watch(
		func(updated *config.Config) {
			sim.Configure(updated.Simulator)
		},
		func(err error) {
			appLogger.Warn(ctx, "rejected config reload", logger.Fields{"error": err.Error()})
		},
	)

	middleware := handlers.NewMiddleware(appLogger, metrics)
	router := http.NewRouter(
		cfg,
		appLogger,
		middleware,
		handlers.NewHealthHandler(version),
		handlers.NewSessionHandler(orchestrator, pipeline, appLogger),
		handlers.NewSimulatorHandler(sim, pool, eventGen, appLogger),
		handlers.NewThreatHandler(orchestrator, appLogger),
		handlers.NewPolicyHandler(policyStore, orchestrator, appLogger),
	)

	go func() {
		if err := router.Start(); err != nil {
			appLogger.Fatal(ctx, "HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info(ctx, "shutting down")

	sim.Stop()
	if err := pipeline.Stop(); err != nil {
		appLogger.Error(ctx, "pipeline shutdown failed", err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := router.Stop(shutdownCtx); err != nil {
		appLogger.Error(ctx, "HTTP server shutdown failed", err)
	}

	appLogger.Info(ctx, "shutdown complete")
}

// buildAnalysisStrategies selects the analysis implementations from config.
// The llm provider wraps the heuristics so any model failure falls back
// transparently.
func buildAnalysisStrategies(cfg *config.Config, log logger.Logger) (
	domainservice.RiskScorer, domainservice.ThreatDetector, domainservice.PolicyRecommender,
) {
	riskScorer := appservice.NewHeuristicRiskScorer(log)
	detector := appservice.NewHeuristicThreatDetector(log)
	recommender := appservice.NewHeuristicPolicyRecommender(log)

	if constants.AIProvider(cfg.AI.Provider) == constants.ProviderLLM {
		client := aimodel.NewClient(cfg.AI, log)
		riskScorer = appservice.NewLLMRiskScorer(client, riskScorer, log)
		recommender = appservice.NewLLMPolicyRecommender(client, recommender, log)
	}
	return riskScorer, detector, recommender
}
