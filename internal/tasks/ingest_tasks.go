package tasks

import (
	"fmt"
	"time"

	"github.com/ersauravadhikari/blueberry-go/blueberry"

	"social-insights-orchestrator/internal/config"
	"social-insights-orchestrator/internal/models"
	"social-insights-orchestrator/internal/pipeline"
)

type TaskManagerInterface interface {
	RegisterTasks() error
}

// Ensure IngestTaskManager implements TaskManagerInterface
var _ TaskManagerInterface = (*IngestTaskManager)(nil)

// IngestTaskManager registers the scheduled ingest and refresh tasks with
// BlueBerry. Each task takes an optional client parameter; empty means all
// configured clients.
type IngestTaskManager struct {
	blueBerry *blueberry.BlueBerry
	pipeline  pipeline.PipelineInterface
	config    *config.Config
}

func NewIngestTaskManager(
	bb *blueberry.BlueBerry,
	p pipeline.PipelineInterface,
	cfg *config.Config,
) *IngestTaskManager {
	return &IngestTaskManager{
		blueBerry: bb,
		pipeline:  p,
		config:    cfg,
	}
}

// RegisterTasks registers both passes and puts them on their schedules.
func (tm *IngestTaskManager) RegisterTasks() error {
	schema := blueberry.NewTaskSchema(blueberry.TaskParamDefinition{
		"client": blueberry.TypeString,
	})

	ingestTask, err := tm.blueBerry.RegisterTask(
		"ingest_social_media",
		tm.runIngest,
		schema,
	)
	if err != nil {
		return fmt.Errorf("failed to register ingest task: %w", err)
	}

	refreshTask, err := tm.blueBerry.RegisterTask(
		"refresh_post_insights",
		tm.runRefresh,
		schema,
	)
	if err != nil {
		return fmt.Errorf("failed to register refresh task: %w", err)
	}

	allClients := blueberry.TaskParams{"client": ""}

	if _, err := ingestTask.RegisterSchedule(allClients, tm.config.IngestSchedule); err != nil {
		return fmt.Errorf("failed to schedule ingest task: %w", err)
	}
	if _, err := refreshTask.RegisterSchedule(allClients, tm.config.RefreshSchedule); err != nil {
		return fmt.Errorf("failed to schedule refresh task: %w", err)
	}

	fmt.Printf("Scheduled ingest (%s) and refresh (%s) for %d clients\n",
		tm.config.IngestSchedule, tm.config.RefreshSchedule, len(tm.config.Clients))
	return nil
}

func clientParam(params blueberry.TaskParams) string {
	if c, exists := params["client"]; exists {
		if name, ok := c.(string); ok {
			return name
		}
	}
	return ""
}

func (tm *IngestTaskManager) runIngest(tctx *blueberry.TaskContext) error {
	ctx := tctx.GetContext()
	logger := tctx.GetLogger()

	onlyClient := clientParam(tctx.GetParams())
	logger.Info(fmt.Sprintf("Starting ingest pass (client filter: %q)", onlyClient))

	report, err := tm.pipeline.Ingest(ctx, onlyClient)
	if err != nil {
		logger.Error(fmt.Sprintf("Ingest pass failed: %v", err))
		return err
	}

	logReport(logger, "Ingest", report)
	return nil
}

func (tm *IngestTaskManager) runRefresh(tctx *blueberry.TaskContext) error {
	ctx := tctx.GetContext()
	logger := tctx.GetLogger()

	onlyClient := clientParam(tctx.GetParams())
	logger.Info(fmt.Sprintf("Starting refresh pass (client filter: %q)", onlyClient))

	report, err := tm.pipeline.Refresh(ctx, onlyClient)
	if err != nil {
		logger.Error(fmt.Sprintf("Refresh pass failed: %v", err))
		return err
	}

	logReport(logger, "Refresh", report)
	return nil
}

func logReport(logger *blueberry.Logger, pass string, report *models.RunReport) {
	logger.Success(fmt.Sprintf(
		"%s pass completed: %d clients, %d networks, %d fetched, %d inserted, %d skipped, %d refreshed, %d failures in %v",
		pass, report.Clients, report.Networks, report.PostsFetched,
		report.PostsInserted, report.PostsSkipped, report.PostsRefreshed,
		report.Failures, report.Duration.Round(time.Millisecond)))
}
