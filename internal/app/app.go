package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ersauravadhikari/blueberry-go/blueberry"
	"github.com/ersauravadhikari/blueberry-go/blueberry/store"
	"github.com/gin-gonic/gin"

	"social-insights-orchestrator/internal/api"
	"social-insights-orchestrator/internal/config"
	"social-insights-orchestrator/internal/graph"
	"social-insights-orchestrator/internal/insights"
	"social-insights-orchestrator/internal/pipeline"
	"social-insights-orchestrator/internal/storage"
	"social-insights-orchestrator/internal/tasks"
)

type App struct {
	Config      *config.Config
	BlueBerry   *blueberry.BlueBerry
	Storage     storage.StorageInterface
	Client      graph.ClientInterface
	Pipeline    pipeline.PipelineInterface
	TaskManager tasks.TaskManagerInterface
	Trigger     *gin.Engine
}

func Initialize() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	mongoStore, err := storage.NewMongoStorage(cfg.MongoDBURI, cfg.DatabaseName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB storage: %w", err)
	}

	blueBerryStore, err := store.NewMongoDB(cfg.MongoDBURI, cfg.DatabaseName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize BlueBerry MongoDB store: %w", err)
	}

	bb := blueberry.NewBlueBerryInstance(blueBerryStore)

	if cfg.WebAuthUser == "" || cfg.WebAuthPassword == "" {
		return nil, fmt.Errorf("web authentication credentials are required")
	}
	bb.AddWebOnlyPasswordAuth(cfg.WebAuthUser, cfg.WebAuthPassword)

	strategy, err := insights.ParseStrategy(cfg.EngagementStrategy)
	if err != nil {
		return nil, fmt.Errorf("invalid engagement strategy: %w", err)
	}

	mode, err := pipeline.ParseInsightMode(cfg.InsightMode)
	if err != nil {
		return nil, fmt.Errorf("invalid insight mode: %w", err)
	}

	graphClient := graph.NewClient(cfg.RequestTimeout, cfg.MaxPages)
	normalizer := insights.NewNormalizer(strategy)

	ingestPipeline := pipeline.NewPipeline(
		mongoStore, graphClient, normalizer,
		cfg.Clients, cfg.GraphAPIVersion, mode,
	)

	taskManager := tasks.NewIngestTaskManager(bb, ingestPipeline, cfg)

	app := &App{
		Config:      cfg,
		BlueBerry:   bb,
		Storage:     mongoStore,
		Client:      graphClient,
		Pipeline:    ingestPipeline,
		TaskManager: taskManager,
		Trigger:     api.NewServer(ingestPipeline, mongoStore),
	}

	if err := app.TaskManager.RegisterTasks(); err != nil {
		return nil, fmt.Errorf("failed to register tasks: %w", err)
	}

	return app, nil
}

func (a *App) Start() error {
	slog.Info("Initializing task scheduler")
	a.BlueBerry.InitTaskScheduler()

	go func() {
		slog.Info("Starting trigger API", "port", a.Config.ServerPort)
		if err := a.Trigger.Run(":" + a.Config.ServerPort); err != nil && err != http.ErrServerClosed {
			slog.Error("Trigger API stopped", "error", err)
		}
	}()

	slog.Info("Starting scheduler dashboard", "port", a.Config.DashboardPort)
	a.BlueBerry.RunAPI(a.Config.DashboardPort)

	return nil
}

func (a *App) Shutdown() {
	slog.Info("Shutting down orchestrator")
	a.BlueBerry.Shutdown()
	if a.Storage != nil {
		a.Storage.Close()
	}
}
