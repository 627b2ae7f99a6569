package handler

import (
	"errors"

	"github.com/fyerfyer/travel-plan/api/middleware"
	"github.com/fyerfyer/travel-plan/internal/models"
	"github.com/fyerfyer/travel-plan/internal/services"
	"github.com/fyerfyer/travel-plan/pkg/storage"
	"github.com/fyerfyer/travel-plan/pkg/taskqueue"
)

// toAppError 把服务层错误映射为HTTP错误
func toAppError(err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidAnswers):
		return middleware.NewValidationError("Invalid answers", err.Error())
	case errors.Is(err, models.ErrPlanNotFound):
		return middleware.NewNotFoundError("Plan not found")
	case errors.Is(err, taskqueue.ErrTaskTimeout):
		return middleware.NewUnavailableError("Timed out waiting for task")
	case errors.Is(err, taskqueue.ErrTaskNotFound):
		return middleware.NewNotFoundError("Task not found")
	case errors.Is(err, models.ErrInvalidPlanStatus), errors.Is(err, services.ErrNoRawText):
		return middleware.NewConflictError("Plan is not in a valid state for this operation", err.Error())
	case errors.Is(err, storage.ErrNotFound):
		return middleware.NewConflictError("Plan text is missing from storage", err.Error())
	case errors.Is(err, services.ErrGenerationFailed):
		return middleware.NewUpstreamError("Failed to generate plan", err.Error())
	case errors.Is(err, services.ErrGeneratorUnavailable):
		return middleware.NewUnavailableError("Plan generation is not configured")
	case errors.Is(err, services.ErrQueueDisabled):
		return middleware.NewUnavailableError("Task queue is not enabled")
	default:
		return middleware.NewInternalError("Internal server error", err.Error())
	}
}
