package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"dealflow-backend/internal/classify"
	"dealflow-backend/internal/companies"
	"dealflow-backend/internal/documents"
	"dealflow-backend/internal/evaluations"
	"dealflow-backend/internal/export"
	"dealflow-backend/internal/llm"
	"dealflow-backend/internal/llm/ollama"
	"dealflow-backend/internal/llm/openai"
	"dealflow-backend/internal/pipeline"
	"dealflow-backend/internal/rules"
	"dealflow-backend/internal/scheduler"
	"dealflow-backend/internal/score"
	"dealflow-backend/internal/services/health"
	"dealflow-backend/internal/shared/config"
	"dealflow-backend/internal/shared/metrics"
	"dealflow-backend/internal/shared/server"
	"dealflow-backend/internal/shared/storage/db"
	"dealflow-backend/internal/shared/storage/object"
	localstore "dealflow-backend/internal/shared/storage/object/local"
	miniostore "dealflow-backend/internal/shared/storage/object/minio"
	s3store "dealflow-backend/internal/shared/storage/object/s3"
	"dealflow-backend/internal/shared/telemetry"
	"dealflow-backend/internal/summarize"
	"dealflow-backend/internal/usage"
)

// App holds the shared dependencies for a process.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	DocumentsRepo   documents.DocumentsRepo
	CompaniesRepo   companies.CompaniesRepo
	EvaluationsRepo evaluations.EvaluationsRepo

	LocalBackend  llm.Backend
	RemoteBackend llm.Backend
	ModelRouter   *llm.Router

	Scheduler *scheduler.Scheduler
	Pipeline  *pipeline.Service

	DocumentsService   *documents.Service
	CompaniesService   *companies.Service
	EvaluationsService *evaluations.Service
	ExportService      *export.Service
	UsageService       *usage.Service
	HealthService      *health.Service

	DocumentsHandler   *documents.Handler
	CompaniesHandler   *companies.Handler
	EvaluationsHandler *evaluations.Handler
	ExportHandler      *export.Handler
	UsageHandler       *usage.Handler
}

var registerMetricsOnce sync.Once

// Build prepares shared dependencies and the HTTP router. The scheduler is
// constructed but not started; callers own its lifecycle.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	registerMetricsOnce.Do(func() {
		metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	})

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ruleset, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}

	if err := buildServices(app, ruleset); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             app.Config,
		Health:             app.HealthService,
		Scheduler:          app.Scheduler,
		DocumentsHandler:   app.DocumentsHandler,
		CompaniesHandler:   app.CompaniesHandler,
		EvaluationsHandler: app.EvaluationsHandler,
		ExportHandler:      app.ExportHandler,
		UsageHandler:       app.UsageHandler,
	})

	return app, nil
}

// RecoverUnfinished re-enqueues documents that were mid-pipeline when the
// previous process stopped. Call after the scheduler has started.
func (a *App) RecoverUnfinished(ctx context.Context) (int, error) {
	ids, err := a.DocumentsRepo.ListUnfinishedIDs(ctx)
	if err != nil {
		return 0, err
	}
	recovered := 0
	for _, id := range ids {
		if err := a.Scheduler.Enqueue(scheduler.Job{DocumentID: id}); err != nil {
			telemetry.Error("boot recovery enqueue failed", map[string]any{
				"document_id": id,
				"error":       err.Error(),
			})
			continue
		}
		recovered++
	}
	if recovered > 0 {
		telemetry.Info("boot recovery enqueued", map[string]any{"count": recovered})
	}
	return recovered, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "minio":
		return miniostore.New(ctx, miniostore.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildBackends(cfg config.Config) (llm.Backend, llm.Backend) {
	var local llm.Backend
	if client, err := ollama.New(cfg.LocalLLMBaseURL, cfg.LocalLLMModel); err != nil {
		log.Printf("bootstrap: local backend disabled: %v", err)
	} else {
		local = client
	}

	var remote llm.Backend
	if strings.TrimSpace(cfg.RemoteLLMAPIKey) == "" {
		log.Printf("bootstrap: REMOTE_LLM_API_KEY empty; remote backend disabled")
	} else if client, err := openai.New(cfg.RemoteLLMBaseURL, cfg.RemoteLLMAPIKey, cfg.RemoteLLMModel, cfg.RemoteLLMRPS); err != nil {
		log.Printf("bootstrap: remote backend disabled: %v", err)
	} else {
		remote = client
	}

	return local, remote
}

func buildServices(app *App, ruleset rules.Ruleset) error {
	cfg := app.Config

	var docRepo documents.DocumentsRepo
	var companyRepo companies.CompaniesRepo
	var evalRepo evaluations.EvaluationsRepo
	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		companyRepo = &companies.PGRepo{DB: app.DB}
		evalRepo = &evaluations.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		companyRepo = companies.NewMemoryRepo()
		evalRepo = evaluations.NewMemoryRepo()
	}

	var usageSvc *usage.Service
	if app.DB != nil {
		usageSvc = usage.NewPostgresService(usage.NewPGStore(app.DB))
	} else {
		usageSvc = usage.NewService()
	}

	local, remote := buildBackends(cfg)
	modelRouter := llm.NewRouter(local, remote, cfg.LocalFallback)

	classifier := classify.New(ruleset.Classifier)
	summarizer := summarize.New(cfg.MaxPromptChars, cfg.SummaryMaxTokens, cfg.FallbackSummaryLen)
	scorer, err := score.NewEngine(ruleset)
	if err != nil {
		return err
	}

	pipelineSvc := &pipeline.Service{
		Repo:       docRepo,
		Store:      app.Store,
		Classifier: classifier,
		Summarizer: summarizer,
		Router:     modelRouter,
		Usage:      usageSvc,
		Policy: scheduler.Policy{
			MaxAttempts: cfg.StageMaxAttempts,
			BaseDelay:   time.Duration(cfg.RetryBaseMs) * time.Millisecond,
		},
	}
	sched := scheduler.New(cfg.WorkerPoolSize, cfg.QueueDepth, pipelineSvc)

	docSvc := &documents.Service{
		Store:          app.Store,
		Repo:           docRepo,
		Jobs:           sched,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	companySvc := &companies.Service{Repo: companyRepo, Docs: docRepo}
	evalSvc := &evaluations.Service{
		Repo:      evalRepo,
		Companies: companyRepo,
		Docs:      docRepo,
		Store:     app.Store,
		Router:    modelRouter,
		Scorer:    scorer,
		Usage:     usageSvc,
	}
	exportSvc := &export.Service{Companies: companyRepo, Evals: evalRepo}

	probes := []health.Probe{
		health.DatabaseProbe(app.DB),
		health.ObjectStoreProbe(app.Store),
	}
	if pinger, ok := local.(health.Pinger); ok {
		probes = append(probes, health.LocalBackendProbe(pinger))
	}

	app.DocumentsRepo = docRepo
	app.CompaniesRepo = companyRepo
	app.EvaluationsRepo = evalRepo
	app.LocalBackend = local
	app.RemoteBackend = remote
	app.ModelRouter = modelRouter
	app.Scheduler = sched
	app.Pipeline = pipelineSvc
	app.DocumentsService = docSvc
	app.CompaniesService = companySvc
	app.EvaluationsService = evalSvc
	app.ExportService = exportSvc
	app.UsageService = usageSvc
	app.HealthService = health.NewService(probes...)
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.CompaniesHandler = companies.NewHandler(companySvc)
	app.EvaluationsHandler = evaluations.NewHandler(evalSvc)
	app.ExportHandler = export.NewHandler(exportSvc)
	app.UsageHandler = usage.NewHandler(usageSvc)

	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
