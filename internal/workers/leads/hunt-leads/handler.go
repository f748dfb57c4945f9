package huntleads

import (
	"context"
	"fmt"
	"time"

	"lead-hunter/internal/common/camunda"
	"lead-hunter/internal/common/config"
	"lead-hunter/internal/common/errors"
	"lead-hunter/internal/common/logger"
	"lead-hunter/internal/common/metrics"
	"lead-hunter/internal/common/validation"
	"lead-hunter/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "lead.hunter.search"

type Handler struct {
	config       *Config
	logger       logger.Logger
	camunda      *camunda.Client
	hunts        HuntRunner
	errorHandler *errors.ErrorHandler
	jobWorker    *camunda.JobWorker
}

type HandlerOptions struct {
	AppConfig    *config.Config
	Camunda      *camunda.Client
	CustomConfig *Config
	Hunts        HuntRunner
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for hunt-leads: %w", err)
	}
	if opts.Hunts == nil {
		return nil, fmt.Errorf("hunt runner is required")
	}

	loggerInstance := opts.Logger
	if loggerInstance == nil {
		loggerInstance = logger.NewStructured("info", "json")
	}
	loggerInstance = loggerInstance.Named(TaskType)

	return &Handler{
		config:       workerConfig,
		logger:       loggerInstance,
		camunda:      opts.Camunda,
		hunts:        opts.Hunts,
		errorHandler: errors.NewErrorHandler(loggerInstance),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing hunt job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	variables, err := job.GetVariablesAsMap()
	if err != nil {
		h.failJob(ctx, client, job, errors.NewInputValidationError(fmt.Sprintf("unreadable variables: %v", err)))
		return
	}

	input, err := parseInput(variables)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	summary, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, summary)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

// Execute runs the hunt. A hunt that ended early comes back as its
// StandardError, alongside the partial summary.
func (h *Handler) Execute(ctx context.Context, input *Input) (*models.HuntSummary, error) {
	query := models.NewSearchQuery(input.Query, input.City, input.RequesterID)

	summary, err := h.hunts.Run(ctx, query)
	if err != nil {
		return nil, err
	}
	if !summary.Success {
		return summary, huntError(summary)
	}
	return summary, nil
}

func parseInput(variables map[string]interface{}) (*Input, error) {
	result := validation.ValidateInput(variables, GetInputSchema())
	if !result.Valid {
		return nil, errors.NewInputValidationError(result.Error())
	}

	return &Input{
		Query:       variables["query"].(string),
		City:        variables["city"].(string),
		RequesterID: variables["requesterId"].(string),
	}, nil
}

func huntError(summary *models.HuntSummary) *errors.StandardError {
	return &errors.StandardError{
		Code:      errors.ErrorCode(summary.ErrorCode),
		Message:   summary.Error,
		Retryable: false,
		Timestamp: summary.FinishedAt,
		Metadata: map[string]interface{}{
			"huntId":       summary.HuntID,
			"totalResults": summary.TotalResults,
			"foundLeads":   summary.FoundLeads,
		},
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, summary *models.HuntSummary) {
	send := func(ctx context.Context) (interface{}, error) {
		request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(summary.ToVariables())
		if err != nil {
			return nil, err
		}
		return request.Send(ctx)
	}

	var err error
	if h.camunda != nil {
		_, err = h.camunda.ExecuteWithRetry(ctx, send, "complete-job")
	} else {
		_, err = send(ctx)
	}
	if err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"huntId": summary.HuntID,
			"error":  err.Error(),
		})
		return
	}

	h.logger.Info("Hunt job completed", map[string]interface{}{
		"jobKey":     job.GetKey(),
		"huntId":     summary.HuntID,
		"foundLeads": summary.FoundLeads,
	})
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()

	if sendErr := h.errorHandler.HandleJobError(ctx, client, job, err); sendErr != nil {
		h.logger.Error("Failed to report job error to Camunda", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  sendErr.Error(),
		})
	}
}

// Register opens the job worker. It is a no-op when the worker is disabled
// or no gateway is configured.
func (h *Handler) Register() error {
	if !h.config.Enabled {
		h.logger.Info("Worker is disabled, skipping registration", nil)
		return nil
	}
	if h.camunda == nil {
		return fmt.Errorf("camunda client is required to register %s", TaskType)
	}

	h.jobWorker = camunda.NewWorker(h.camunda.GetClient(), camunda.WorkerOptions{
		TaskType:      TaskType,
		MaxJobsActive: h.config.MaxJobsActive,
		Timeout:       h.config.Timeout,
	}, h, h.logger)
	return nil
}

func (h *Handler) Close() {
	if h.jobWorker != nil {
		h.jobWorker.Stop()
		h.jobWorker = nil
	}
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}
