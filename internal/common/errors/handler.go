// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// Logger is the slice of logger.Logger the handler needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// JobAction is what the handler does with a failed job.
type JobAction int

const (
	// ActionThrow raises a BPMN error so the process can route on it.
	ActionThrow JobAction = iota
	// ActionFail hands the job back to the broker with retries left.
	ActionFail
)

// ErrorHandler reports failed Zeebe jobs in the standard error shape.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Decide picks the job action and the retry count to report.
func Decide(job entities.Job, stdErr *StandardError) (JobAction, int) {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable || retries == 0 || job.Retries <= 0 {
		return ActionThrow, 0
	}
	if int(job.Retries) < retries {
		retries = int(job.Retries)
	}
	// Zeebe counts remaining attempts, so one fewer than what the job holds now.
	return ActionFail, retries - 1
}

// HandleJobError normalizes err, logs it and either fails or throws the job.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) error {
	stdErr, ok := As(err)
	if !ok {
		stdErr = NewInternalError(err)
	}
	bpmnErr := ConvertToBPMNError(stdErr)
	action, retries := Decide(job, stdErr)

	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"bpmnErrorCode":    bpmnErr.Code,
		"message":          bpmnErr.Message,
		"details":          stdErr.Details,
		"retries":          retries,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})

	varsJSON, mErr := json.Marshal(bpmnErr.ToErrorVariables())
	if mErr != nil {
		return fmt.Errorf("marshal error variables: %w", mErr)
	}

	if action == ActionFail {
		cmd := client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(int32(retries)).
			ErrorMessage(bpmnErr.Message)
		withVars, vErr := cmd.VariablesFromString(string(varsJSON))
		if vErr != nil {
			_, sendErr := cmd.Send(ctx)
			return sendErr
		}
		_, sendErr := withVars.Send(ctx)
		return sendErr
	}

	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)
	withVars, vErr := cmd.VariablesFromString(string(varsJSON))
	if vErr != nil {
		_, sendErr := cmd.Send(ctx)
		return sendErr
	}
	_, sendErr := withVars.Send(ctx)
	return sendErr
}
