// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"lead-distribution-workers/internal/common/camunda"
	"lead-distribution-workers/internal/common/config"
	"lead-distribution-workers/internal/common/database"
	"lead-distribution-workers/internal/common/logger"
	"lead-distribution-workers/internal/common/observability"

	// Lead Workers (4)
	clp "lead-distribution-workers/internal/workers/lead/check-lead-priority"
	dl "lead-distribution-workers/internal/workers/lead/distribute-lead"
	pa "lead-distribution-workers/internal/workers/lead/persist-assignment"
	vl "lead-distribution-workers/internal/workers/lead/validate-lead"

	// Communication Workers (1)
	na "lead-distribution-workers/internal/workers/communication/notify-assignment"

	// Data Access Workers (2)
	ia "lead-distribution-workers/internal/workers/data-access/index-assignment"
	sa "lead-distribution-workers/internal/workers/data-access/search-assignments"

	// CRM Workers (1)
	cls "lead-distribution-workers/internal/workers/crm/crm-lead-sync"
)

// connectWithRetry dials infrastructure that may come up after the workers
// in a compose or rolling deployment. The delay doubles per attempt, capped
// so a slow dependency does not push the next try out by minutes.
func connectWithRetry(attempts int, log *zap.Logger, target string, dial func() error) error {
	delay := 2 * time.Second
	var err error

	for i := 1; i <= attempts; i++ {
		if err = dial(); err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		log.Warn("connection attempt failed",
			zap.String("target", target),
			zap.Error(err),
			zap.Int("attempt", i),
			zap.Duration("retryIn", delay),
		)
		time.Sleep(delay)
		if delay *= 2; delay > 30*time.Second {
			delay = 30 * time.Second
		}
	}

	return fmt.Errorf("connect %s: %d attempts exhausted: %w", target, attempts, err)
}

func main() {
	zapLog := logger.New("info", "console")

	zapLog.Info("starting worker manager")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Rebuild the logger with the configured level and format now that the
	// config is available; the bootstrap logger only covers load failures.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	// Registers the global tracer provider; spans stay no-ops unless
	// JAEGER_ENDPOINT is set.
	tracing := observability.NewTracing("worker-manager")
	defer tracing.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	// camunda.NewClient verifies broker topology before returning, so a
	// successful attempt means the gateway is actually reachable.
	var camundaClient *camunda.Client
	err = connectWithRetry(10, zapLog, "zeebe gateway", func() error {
		var err error
		camundaClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected")

	// --- Deploy process models ---
	// Worker-only deployments may ship without models; that is fine, the
	// broker already has them. A rejected deployment is fatal because the
	// workers would poll for jobs the engine can never create correctly.
	models, _ := filepath.Glob("bpmn/*.bpmn")
	if len(models) == 0 {
		zapLog.Info("no process models found, skipping deployment", zap.String("dir", "bpmn"))
	} else {
		deployCtx, span := tracing.StartSpan(ctx, "deploy-process-models")
		key, err := camundaClient.DeployResources(deployCtx, models...)
		span.End()
		if err != nil {
			zapLog.Fatal("process model deployment failed", zap.Error(err))
		}
		zapLog.Info("process models deployed",
			zap.Int64("deploymentKey", key),
			zap.Strings("files", models),
		)
	}

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = connectWithRetry(15, zapLog, "postgres", func() error {
		var err error
		if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
			return err
		}
		return pg.Ping(ctx)
	})
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = connectWithRetry(15, zapLog, "elasticsearch", func() error {
		var err error
		if esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
			return err
		}
		return esClient.Ping()
	})
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected")

	// --- Ensure search index ---
	esIndex := ia.LoadConfig().IndexName
	if err := esClient.EnsureIndex(ctx, esIndex, ia.IndexMapping); err != nil {
		zapLog.Fatal("elasticsearch index bootstrap failed", zap.Error(err))
	}
	zapLog.Info("Elasticsearch index ready", zap.String("index", esIndex))

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = connectWithRetry(10, zapLog, "redis", func() error {
		var err error
		if redis, err = database.NewRedis(cfg.Database.Redis); err != nil {
			return err
		}
		return redis.Ping(ctx)
	})
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected")

	// --- START: Register ALL 8 Workers ---

	// --- 1. Lead Workers (4) ---
	if wcfg := config.GetWorkerConfig(cfg, vl.TaskType); wcfg.Enabled {
		handler := vl.NewHandler(
			&vl.Config{
				Timeout: config.GetDuration(wcfg.Timeout),
			},
			log,
		)
		startWorker(zeebeClient, vl.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	if wcfg := config.GetWorkerConfig(cfg, clp.TaskType); wcfg.Enabled {
		handler := clp.NewHandler(
			&clp.Config{
				CacheTTL: 30 * time.Minute,
				Timeout:  config.GetDuration(wcfg.Timeout),
			},
			pg.DB, redis.Client, log,
		)
		startWorker(zeebeClient, clp.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	if wcfg := config.GetWorkerConfig(cfg, dl.TaskType); wcfg.Enabled {
		// An invalid startup distribution config is a deployment error, not
		// something to discover one failed job at a time.
		handler, err := dl.NewHandler(dl.ConfigFromApp(cfg), pg.DB, redis.Client, log)
		if err != nil {
			zapLog.Fatal("failed to create distribute-lead handler", zap.Error(err))
		}
		startWorker(zeebeClient, dl.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	if wcfg := config.GetWorkerConfig(cfg, pa.TaskType); wcfg.Enabled {
		handler := pa.NewHandler(
			&pa.Config{
				Timeout: config.GetDuration(wcfg.Timeout),
			},
			pg.DB, redis.Client, log,
		)
		startWorker(zeebeClient, pa.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	// --- 2. Communication Workers (1) ---
	if wcfg := config.GetWorkerConfig(cfg, na.TaskType); wcfg.Enabled {
		handler, err := na.NewHandler(
			&na.Config{
				FromEmail: cfg.Notifications.Email.FromEmail,
				AWSRegion: cfg.Notifications.AWS.Region,
				Timeout:   config.GetDuration(wcfg.Timeout),
			},
			pg.DB, log,
		)
		if err != nil {
			zapLog.Fatal("failed to create notify-assignment handler", zap.Error(err))
		}
		startWorker(zeebeClient, na.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	// --- 3. Data Access Workers (2) ---
	if wcfg := config.GetWorkerConfig(cfg, ia.TaskType); wcfg.Enabled {
		iaCfg := ia.LoadConfig()
		iaCfg.Timeout = config.GetDuration(wcfg.Timeout)
		handler := ia.NewHandler(iaCfg, esClient.Client, log)
		startWorker(zeebeClient, ia.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	if wcfg := config.GetWorkerConfig(cfg, sa.TaskType); wcfg.Enabled {
		saCfg := sa.LoadConfig()
		saCfg.Timeout = config.GetDuration(wcfg.Timeout)
		handler := sa.NewHandler(saCfg, esClient.Client, log)
		startWorker(zeebeClient, sa.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	// --- 4. CRM Workers (1) ---
	// Registers itself through the camunda wrapper. Its config is keyed by
	// the worker directory name "crm-lead-sync"; the job type it subscribes
	// to is cls.TaskType.
	crmHandler, err := cls.NewHandler(cls.HandlerOptions{
		AppConfig: cfg,
		Camunda:   camundaClient,
		Logger:    log,
	})
	if err != nil {
		zapLog.Fatal("failed to create crm-lead-sync handler", zap.Error(err))
	}
	if err := crmHandler.Register(); err != nil {
		zapLog.Fatal("failed to register crm-lead-sync worker", zap.Error(err))
	}

	zapLog.Info("all 8 workers registered")

	go serveOps(camundaClient, zapLog)

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("shutdown signal received, stopping workers")

	crmHandler.Close()
	if err := camundaClient.Close(); err != nil {
		zapLog.Error("error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("worker manager stopped")
}

// serveOps exposes liveness, readiness and Prometheus metrics on :8080.
// Readiness follows the broker connection: a manager that lost its gateway
// should fall out of rotation even though the process is alive.
func serveOps(camundaClient *camunda.Client, log *zap.Logger) {
	writeJSON := func(w http.ResponseWriter, status int, body map[string]string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := camundaClient.HealthCheck(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	http.Handle("/metrics", promhttp.Handler())

	log.Info("ops server listening on :8080")
	if err := http.ListenAndServe(":8080", nil); err != nil {
		log.Error("ops server failed", zap.Error(err))
	}
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), obs *observability.Observability, log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	// Handlers report their own outcome metrics; this wrapper only covers
	// the cross-worker count and duration instruments.
	instrumented := func(jobClient worker.JobClient, job entities.Job) {
		start := time.Now()
		handlerFunc(jobClient, job)
		obs.RecordJobProcessed(context.Background(), taskType)
		obs.RecordJobDuration(context.Background(), taskType, time.Since(start))
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(instrumented).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
