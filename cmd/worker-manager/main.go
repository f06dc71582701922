// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"grantmatch-workers/internal/common/camunda"
	"grantmatch-workers/internal/common/config"
	"grantmatch-workers/internal/common/database"
	"grantmatch-workers/internal/common/errors"
	commonhttp "grantmatch-workers/internal/common/http"
	"grantmatch-workers/internal/common/logger"
	"grantmatch-workers/internal/common/metrics"
	"grantmatch-workers/internal/common/observability"
	"grantmatch-workers/internal/matching/engine"
	"grantmatch-workers/internal/matching/explain"
	"grantmatch-workers/internal/matching/partner"
	"grantmatch-workers/internal/matching/taxonomy"

	// Matching Workers (6)
	ce "grantmatch-workers/internal/workers/matching/check-eligibility"
	em "grantmatch-workers/internal/workers/matching/explain-match"
	fmp "grantmatch-workers/internal/workers/matching/find-matching-programs"
	mpo "grantmatch-workers/internal/workers/matching/match-partner-organizations"
	pmr "grantmatch-workers/internal/workers/matching/parse-match-request"
	smr "grantmatch-workers/internal/workers/matching/save-match-results"

	// Data Access Workers (2)
	qe "grantmatch-workers/internal/workers/data-access/query-elasticsearch"
	qp "grantmatch-workers/internal/workers/data-access/query-postgresql"

	// Profile Workers (1)
	vpd "grantmatch-workers/internal/workers/profile/validate-profile-data"

	// Communication Workers (1)
	smn "grantmatch-workers/internal/workers/communication/send-match-notification"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	// Bootstrap logger until the config is loaded.
	zapLog := logger.New("info", "console", "")
	defer func() { _ = zapLog.Sync() }()

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Configuration loaded",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	tracer, err := observability.NewTracer(cfg.App.Name, cfg.Tracing.JaegerEndpoint)
	if err != nil {
		zapLog.Fatal("tracer init failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection with context
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Shared matching components ---
	// One taxonomy table and one engine serve every matching worker, so
	// threshold tuning lands in a single place.
	table := taxonomy.New(taxonomy.Options{DefaultRelevance: cfg.Matching.DefaultRelevance})

	matchEngine := engine.New(table, engine.Config{
		CompatibilityThreshold: cfg.Matching.CompatibilityThreshold,
		CrossIndustryThreshold: cfg.Matching.CrossIndustryThreshold,
		MinimumScore:           cfg.Matching.MinimumScore,
		DefaultLimit:           cfg.Matching.DefaultLimit,
		HistoricalTRLSlack:     cfg.Matching.HistoricalTRLSlack,
	})

	partnerScorer := partner.New(table, partner.Config{
		DefaultLimit: cfg.Matching.Partner.DefaultLimit,
		MinimumScore: cfg.Matching.Partner.MinimumScore,
	})

	explainGen := explain.New()

	// --- START: Register ALL 10 Workers ---
	var activeWorkers []*camunda.Worker
	jobErrors := errors.NewErrorHandler(log)

	// --- 1. Matching Workers (6) ---
	if cfg.Workers[pmr.TaskType].Enabled {
		handler := pmr.NewHandler(
			&pmr.Config{
				Timeout:             config.GetDuration(cfg.Workers[pmr.TaskType].Timeout),
				DefaultLimit:        cfg.Matching.DefaultLimit,
				MaxLimit:            45,
				DefaultMinimumScore: cfg.Matching.MinimumScore,
			},
			log,
		)
		activeWorkers = append(activeWorkers, startWorker(camundaClient, pmr.TaskType, cfg.Workers[pmr.TaskType], handler.Handle, obs, jobErrors, zapLog))
	}

	if cfg.Workers[fmp.TaskType].Enabled {
		handler := fmp.NewHandler(
			&fmp.Config{
				CacheTTL:      config.GetDuration(cfg.Matching.ProfileCacheTTL),
				Timeout:       config.GetDuration(cfg.Workers[fmp.TaskType].Timeout),
				MaxCandidates: 500,
			},
			pg.DB, redis.Client, matchEngine, log,
		)
		activeWorkers = append(activeWorkers, startWorker(camundaClient, fmp.TaskType, cfg.Workers[fmp.TaskType], handler.Handle, obs, jobErrors, zapLog))
	}

	if cfg.Workers[ce.TaskType].Enabled {
		handler := ce.NewHandler(
			&ce.Config{
				Timeout: config.GetDuration(cfg.Workers[ce.TaskType].Timeout),
			},
			pg.DB, log,
		)
		activeWorkers = append(activeWorkers, startWorker(camundaClient, ce.TaskType, cfg.Workers[ce.TaskType], handler.Handle, obs, jobErrors, zapLog))
	}

	if cfg.Workers[mpo.TaskType].Enabled {
		handler := mpo.NewHandler(
			&mpo.Config{
				Timeout:       config.GetDuration(cfg.Workers[mpo.TaskType].Timeout),
				MaxCandidates: 200,
			},
			pg.DB, partnerScorer, log,
		)
		activeWorkers = append(activeWorkers, startWorker(camundaClient, mpo.TaskType, cfg.Workers[mpo.TaskType], handler.Handle, obs, jobErrors, zapLog))
	}

	if cfg.Workers[em.TaskType].Enabled {
		handler := em.NewHandler(
			&em.Config{
				Timeout: config.GetDuration(cfg.Workers[em.TaskType].Timeout),
			},
			pg.DB, explainGen, log,
		)
		activeWorkers = append(activeWorkers, startWorker(camundaClient, em.TaskType, cfg.Workers[em.TaskType], handler.Handle, obs, jobErrors, zapLog))
	}

	if cfg.Workers[smr.TaskType].Enabled {
		handler := smr.NewHandler(
			&smr.Config{
				Timeout: config.GetDuration(cfg.Workers[smr.TaskType].Timeout),
			},
			pg.DB, log,
		)
		activeWorkers = append(activeWorkers, startWorker(camundaClient, smr.TaskType, cfg.Workers[smr.TaskType], handler.Handle, obs, jobErrors, zapLog))
	}

	// --- 2. Data Access Workers (2) ---
	if cfg.Workers[qp.TaskType].Enabled {
		handler := qp.NewHandler(
			&qp.Config{
				Timeout:  config.GetDuration(cfg.Workers[qp.TaskType].Timeout),
				MaxLimit: 100,
			},
			pg.DB, log,
		)
		activeWorkers = append(activeWorkers, startWorker(camundaClient, qp.TaskType, cfg.Workers[qp.TaskType], handler.Handle, obs, jobErrors, zapLog))
	}

	if cfg.Workers[qe.TaskType].Enabled {
		handler := qe.NewHandler(
			&qe.Config{
				Timeout:     config.GetDuration(cfg.Workers[qe.TaskType].Timeout),
				DefaultSize: 10,
				MaxSize:     50,
			},
			esClient.Client, log,
		)
		activeWorkers = append(activeWorkers, startWorker(camundaClient, qe.TaskType, cfg.Workers[qe.TaskType], handler.Handle, obs, jobErrors, zapLog))
	}

	// --- 3. Profile Workers (1) ---
	if cfg.Workers[vpd.TaskType].Enabled {
		handler := vpd.NewHandler(
			&vpd.Config{
				Timeout: config.GetDuration(cfg.Workers[vpd.TaskType].Timeout),
			},
			log,
		)
		activeWorkers = append(activeWorkers, startWorker(camundaClient, vpd.TaskType, cfg.Workers[vpd.TaskType], handler.Handle, obs, jobErrors, zapLog))
	}

	// --- 4. Communication Workers (1) ---
	if cfg.Workers[smn.TaskType].Enabled {
		handler, err := smn.NewHandler(
			&smn.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				AWSRegion:    cfg.Notifications.AWS.Region,
				Timeout:      config.GetDuration(cfg.Workers[smn.TaskType].Timeout),
			},
			pg.DB, log,
		)
		if err != nil {
			zapLog.Fatal("failed to create send-match-notification handler", zap.Error(err))
		}
		activeWorkers = append(activeWorkers, startWorker(camundaClient, smn.TaskType, cfg.Workers[smn.TaskType], handler.Handle, obs, jobErrors, zapLog))
	}

	zapLog.Info("All 10 workers registered successfully")

	// --- Health & Metrics Server ---
	readiness := map[string]commonhttp.ReadinessCheck{
		"postgres":      pg.Ping,
		"redis":         redis.Ping,
		"elasticsearch": esClient.Ping,
		"zeebe":         camundaClient.HealthCheck,
	}

	healthSrv := commonhttp.NewServer(":8080", cfg.App.Name, cfg.App.Version, readiness)
	go func() {
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop polling before tearing down the connection so in-flight
	// jobs can still complete or fail cleanly.
	for _, w := range activeWorkers {
		w.Close()
	}

	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	if err := tracer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping tracer", zap.Error(err))
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client *camunda.Client, taskType string, wcfg config.WorkerConfig, handlerFunc camunda.JobHandler, obs *observability.Observability, jobErrors *errors.ErrorHandler, log *zap.Logger) *camunda.Worker {
	instrumented := func(jobClient worker.JobClient, job entities.Job) {
		start := time.Now()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer func() {
			metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
			if r := recover(); r != nil {
				// A panicking handler fails its job instead of taking
				// the manager down.
				obs.RecordJobPanicked(context.Background(), taskType)
				jobErrors.HandleJobError(context.Background(), jobClient, job,
					fmt.Errorf("%s handler panicked: %v", taskType, r))
			}
			obs.RecordJobProcessed(context.Background(), taskType)
			obs.RecordJobDuration(context.Background(), time.Since(start), taskType)
		}()
		handlerFunc(jobClient, job)
	}

	return client.NewWorker(camunda.WorkerOptions{
		TaskType:      taskType,
		MaxJobsActive: wcfg.MaxJobsActive,
		Timeout:       config.GetDuration(wcfg.Timeout),
		Handler:       instrumented,
	}, log)
}
