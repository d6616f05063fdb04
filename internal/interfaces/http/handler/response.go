package handler

import "github.com/hawaiibiz/intel/internal/interfaces/http/dto"

// APIResponse represents a generic API response for OpenAPI documentation
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse represents an error API response for OpenAPI documentation
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// SuccessResponse represents a success response without data
// @Description Simple success response without data
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// QueuedData acknowledges a queued rescore
// @Description Rescore acknowledgement
type QueuedData struct {
	BusinessID string `json:"business_id" example:"3f0c7a4e-5a8e-4f7b-9b7e-1c2d3e4f5a6b"`
	Queued     bool   `json:"queued" example:"true"`
}
