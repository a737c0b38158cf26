package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arnelahh/eDiploma-app-sub000/internal/delivery"
	"github.com/arnelahh/eDiploma-app-sub000/internal/documents"
	"github.com/arnelahh/eDiploma-app-sub000/internal/notify"
	"github.com/arnelahh/eDiploma-app-sub000/internal/pipeline"
	"github.com/arnelahh/eDiploma-app-sub000/internal/render"
	"github.com/arnelahh/eDiploma-app-sub000/internal/shared/config"
	"github.com/arnelahh/eDiploma-app-sub000/internal/shared/server"
	"github.com/arnelahh/eDiploma-app-sub000/internal/shared/storage/db"
	"github.com/arnelahh/eDiploma-app-sub000/internal/shared/storage/object"
	localstore "github.com/arnelahh/eDiploma-app-sub000/internal/shared/storage/object/local"
	s3store "github.com/arnelahh/eDiploma-app-sub000/internal/shared/storage/object/s3"
	"github.com/arnelahh/eDiploma-app-sub000/internal/theses"
	"github.com/arnelahh/eDiploma-app-sub000/internal/workflow"
)

// App holds shared dependencies for the API server and the worker.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           object.ObjectStore
	Notify          notify.Client
	DocumentsRepo   documents.Repo
	ThesesProvider  theses.Provider
	Gate            *pipeline.Gate
	WorkflowService *workflow.Service
	WorkflowHandler *workflow.Handler
	Delivery        *delivery.Processor
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	notifyClient, err := buildNotify(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var (
		docsRepo documents.Repo
		provider theses.Provider
	)
	if sqlDB != nil {
		docsRepo = &documents.PGRepo{DB: sqlDB}
		provider = &theses.PGProvider{DB: sqlDB}
	} else {
		docsRepo = documents.NewMemoryRepo()
		provider = theses.NewMemoryProvider()
	}

	gate := &pipeline.Gate{Docs: docsRepo}
	svc := &workflow.Service{
		Docs:     docsRepo,
		Gate:     gate,
		Theses:   provider,
		Renderer: render.New(nil),
		Notify:   notifyClient,
	}
	handler := workflow.NewHandler(svc)

	app := &App{
		Config:          cfg,
		DB:              sqlDB,
		Store:           store,
		Notify:          notifyClient,
		DocumentsRepo:   docsRepo,
		ThesesProvider:  provider,
		Gate:            gate,
		WorkflowService: svc,
		WorkflowHandler: handler,
		Delivery:        &delivery.Processor{Docs: docsRepo, Store: store},
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		WorkflowHandler: handler,
	})

	return app, nil
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
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildNotify(ctx context.Context, cfg config.Config) (notify.Client, error) {
	if strings.TrimSpace(cfg.QueueURL) == "" {
		return notify.Noop{}, nil
	}
	return notify.NewSQSClient(ctx, cfg.AWSRegion, cfg.QueueURL)
}

func isDevLike(env string) bool {
	switch env {
	case "dev", "local":
		return true
	default:
		return false
	}
}
