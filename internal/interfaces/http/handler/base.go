package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/shared"
	"github.com/hawaiibiz/intel/internal/infrastructure/logger"
	"github.com/hawaiibiz/intel/internal/infrastructure/scheduler"
	"github.com/hawaiibiz/intel/internal/interfaces/http/dto"
	"github.com/hawaiibiz/intel/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Accepted sends a 202 response
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// Page sends a paginated 200 response
func Page[T any](c *gin.Context, page shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// Error sends an error response
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// ValidationError sends a 400 response with per-field details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		middleware.GetRequestID(c),
		details,
	))
}

// bindError answers a failed ShouldBind*. Validator failures get field
// details; anything else is malformed input.
func (h *BaseHandler) bindError(c *gin.Context, err error) {
	if details := middleware.ValidationDetails(err); details != nil {
		h.ValidationError(c, details)
		return
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeTooLarge, "Request body exceeds maximum allowed size")
		return
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Malformed request")
}

// BindQuery binds and validates query parameters, answering the request
// itself on failure
func (h *BaseHandler) BindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

// BindOptionalJSON binds a JSON body that may be absent
func (h *BaseHandler) BindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

// ParseID reads a UUID path parameter, answering 400 when it is malformed
func (h *BaseHandler) ParseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

// HandleError converts service errors to responses. Domain errors keep
// their message; anything else is logged and reported as internal.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	switch {
	case errors.As(err, &domainErr):
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	case errors.Is(err, scheduler.ErrJobQueueFull):
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeQueueFull, "Scoring queue is full, try again later")
		return
	case errors.Is(err, scheduler.ErrSchedulerNotRunning):
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeScoringOffline, "Scoring is not running")
		return
	}

	logger.GetGinLogger(c).Error("Unhandled request error", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}
