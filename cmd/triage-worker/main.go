// cmd/triage-worker/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	awsc "doctor-ranking/internal/common/aws"
	"doctor-ranking/internal/common/camunda"
	"doctor-ranking/internal/common/config"
	"doctor-ranking/internal/common/database"
	"doctor-ranking/internal/common/logger"
	"doctor-ranking/internal/common/observability"
	"doctor-ranking/internal/services/alerts"
	"doctor-ranking/internal/services/directory"
	"doctor-ranking/internal/services/doctorpool"
	"doctor-ranking/internal/services/prediction"
	"doctor-ranking/internal/services/ratings"
	"doctor-ranking/internal/services/ratings/migrations"
	"doctor-ranking/internal/triage/personalization"
	"doctor-ranking/internal/triage/pipeline"
	"doctor-ranking/pkg/registry"

	gur "doctor-ranking/internal/workers/preferences/get-user-preferences"
	uup "doctor-ranking/internal/workers/preferences/update-user-preferences"
	gdr "doctor-ranking/internal/workers/ratings/get-doctor-ratings"
	sdr "doctor-ranking/internal/workers/ratings/submit-doctor-rating"
	rd "doctor-ranking/internal/workers/triage/rank-doctors"
	sta "doctor-ranking/internal/workers/triage/send-triage-alert"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.Build(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting triage worker...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var broker *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		broker, err = camunda.NewClient(cfg.Camunda.BrokerAddress, config.GetDuration(cfg.Camunda.RequestTimeout))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := broker.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL (rating store) ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	if cfg.Database.Postgres.MigrateOnStart {
		if err := migrations.Up(cfg.Database.Postgres.GetURL()); err != nil {
			zapLog.Fatal("rating store migration failed", zap.Error(err))
		}
		zapLog.Info("Rating store schema is up to date")
	}

	// --- Elasticsearch (doctor directory) ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	if err := esClient.EnsureIndex(ctx, cfg.Directory.Index, directory.DoctorIndexMapping); err != nil {
		zapLog.Fatal("doctor index setup failed", zap.Error(err), zap.String("index", cfg.Directory.Index))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Redis (profiles, rating statistics) ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Knowledge base and local doctor pool ---
	kb := registry.Default()
	if path := cfg.Triage.KnowledgeBasePath; path != "" {
		kb, err = registry.LoadRegistry(path)
		if err != nil {
			zapLog.Fatal("knowledge base load failed", zap.Error(err), zap.String("path", path))
		}
	}

	var localPool pipeline.LocalPool
	if path := cfg.Triage.DoctorPoolPath; path != "" {
		pool, err := doctorpool.Load(path)
		if err != nil {
			zapLog.Warn("local doctor pool unavailable", zap.Error(err), zap.String("path", path))
		} else {
			localPool = pool
			zapLog.Info("Local doctor pool loaded", zap.Int("doctors", pool.Len()))
		}
	}

	// --- Domain services ---
	var profiles personalization.ProfileStore
	switch cfg.Triage.ProfileStore {
	case "memory":
		profiles = personalization.NewMemoryStore()
	default:
		profiles = personalization.NewRedisStore(redis.GetClient(), time.Duration(cfg.Triage.ProfileTTL)*time.Second)
	}
	personalizer := personalization.NewRecommender(profiles, log)

	oracle := prediction.NewClient(prediction.Config{
		BaseURL: cfg.APIs.Prediction.BaseURL,
		Path:    cfg.APIs.Prediction.Path,
		APIKey:  cfg.APIs.Prediction.APIKey,
		Timeout: config.GetDuration(cfg.APIs.Prediction.Timeout),
	}, log)

	doctors := directory.NewService(directory.Config{
		Index:         cfg.Directory.Index,
		PerSpecialist: cfg.Directory.PerSpecialist,
		MaxResults:    cfg.Directory.MaxResults,
		Timeout:       config.GetDuration(cfg.Directory.Timeout),
	}, esClient.Client, log)

	ratingStore := ratings.NewStore(pg.GetDB(), redis.GetClient(), time.Duration(cfg.Directory.RatingsCacheTTL)*time.Second, log)

	alertService, err := newAlertService(ctx, cfg.Alerts, log)
	if err != nil {
		zapLog.Fatal("alert channels setup failed", zap.Error(err))
	}

	ranker := pipeline.New(pipeline.Config{
		SearchThreshold:     cfg.Triage.SearchThreshold,
		MinDirectoryResults: cfg.Triage.MinDirectoryResults,
		MaxDoctors:          cfg.Triage.MaxDoctors,
		AlertOnUrgent:       cfg.Triage.AlertOnUrgent,
	}, pipeline.Deps{
		KnowledgeBase: kb,
		Oracle:        oracle,
		Directory:     doctors,
		LocalPool:     localPool,
		Ratings:       ratingStore,
		Personalizer:  personalizer,
		Alerter:       alertService,
		Tracer:        obs,
	}, log)

	zapLog.Info("All domain services initialized")

	// --- Workers ---
	var workers []worker.JobWorker
	register := func(taskType string, handle func(worker.JobClient, entities.Job)) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		if w := startWorker(zeebeClient, taskType, wcfg, handle, zapLog); w != nil {
			workers = append(workers, w)
		}
	}
	// Worker defaults apply unless workers.<taskType>.timeout is set.
	timeout := func(taskType string, fallback time.Duration) time.Duration {
		if ms := config.GetWorkerConfig(cfg, taskType).Timeout; ms > 0 {
			return config.GetDuration(ms)
		}
		return fallback
	}

	rdCfg := rd.LoadConfig()
	rdCfg.Timeout = timeout(rd.TaskType, rdCfg.Timeout)
	register(rd.TaskType, rd.NewHandler(rdCfg, ranker, log).Handle)

	staCfg := sta.LoadConfig()
	staCfg.Timeout = timeout(sta.TaskType, staCfg.Timeout)
	register(sta.TaskType, sta.NewHandler(staCfg, alertService, log).Handle)

	sdrCfg := sdr.LoadConfig()
	sdrCfg.Timeout = timeout(sdr.TaskType, sdrCfg.Timeout)
	register(sdr.TaskType, sdr.NewHandler(sdrCfg, ratingStore, personalizer, log).Handle)

	gdrCfg := gdr.LoadConfig()
	gdrCfg.Timeout = timeout(gdr.TaskType, gdrCfg.Timeout)
	register(gdr.TaskType, gdr.NewHandler(gdrCfg, ratingStore, log).Handle)

	uupCfg := uup.LoadConfig()
	uupCfg.Timeout = timeout(uup.TaskType, uupCfg.Timeout)
	register(uup.TaskType, uup.NewHandler(uupCfg, personalizer, log).Handle)

	gurCfg := gur.LoadConfig()
	gurCfg.Timeout = timeout(gur.TaskType, gurCfg.Timeout)
	register(gur.TaskType, gur.NewHandler(gurCfg, personalizer, log).Handle)

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health, readiness & metrics ---
	srv := &http.Server{
		Addr: cfg.Server.Address,
		Handler: newOpsRouter(cfg.App.Version, map[string]readinessCheck{
			"zeebe":         broker.HealthCheck,
			"postgres":      pg.Ping,
			"redis":         redis.Ping,
			"elasticsearch": esClient.Ping,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	for _, w := range workers {
		w.Close()
	}
	for _, w := range workers {
		w.AwaitClose()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if err := broker.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Triage worker stopped gracefully")
}

// newAlertService wires the enabled AWS channels. With both channels disabled the
// service still runs and reports every notification as disabled.
func newAlertService(ctx context.Context, cfg config.AlertsConfig, log logger.Logger) (*alerts.Service, error) {
	var (
		email alerts.EmailSender
		topic alerts.Publisher
	)
	if cfg.Email.Enabled || cfg.SNS.Enabled {
		awsCfg, err := awsc.LoadConfig(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		if cfg.Email.Enabled {
			email = awsc.NewSESClient(awsCfg)
		}
		if cfg.SNS.Enabled {
			topic = awsc.NewSNSClient(awsCfg)
		}
	}
	return alerts.NewService(alerts.Config{
		EmailEnabled: cfg.Email.Enabled,
		FromEmail:    cfg.Email.FromEmail,
		CareTeam:     cfg.Email.CareTeam,
		SNSEnabled:   cfg.SNS.Enabled,
		TopicARN:     cfg.SNS.TopicARN,
	}, email, topic, log), nil
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	w := client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return w
}
