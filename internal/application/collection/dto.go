package collection

import (
	"time"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/collection"
)

// TriggerRunRequest starts a collection run
type TriggerRunRequest struct {
	Source string `json:"source" binding:"omitempty,max=50"`
}

// RunListFilter represents query options for the run list
type RunListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=running success partial failed"`
	Source   string `form:"source" binding:"omitempty,max=50"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// RunResponse represents a collection run in API responses
type RunResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Source              string     `json:"source"`
	Status              string     `json:"status"`
	StartedAt           time.Time  `json:"started_at"`
	FinishedAt          *time.Time `json:"finished_at,omitempty"`
	BusinessesFound     int        `json:"businesses_found"`
	BusinessesProcessed int        `json:"businesses_processed"`
	BusinessesAdded     int        `json:"businesses_added"`
	Errors              int        `json:"errors"`
	ErrorDetails        []string   `json:"error_details"`
	DurationSeconds     float64    `json:"duration_seconds"`
}

// ToRunResponse converts a domain Run to RunResponse
func ToRunResponse(r *collection.Run) RunResponse {
	details := r.ErrorDetails
	if details == nil {
		details = []string{}
	}
	return RunResponse{
		ID:                  r.ID,
		Source:              r.Source,
		Status:              string(r.Status),
		StartedAt:           r.StartedAt,
		FinishedAt:          r.FinishedAt,
		BusinessesFound:     r.Found,
		BusinessesProcessed: r.Processed,
		BusinessesAdded:     r.Added,
		Errors:              r.Errors,
		ErrorDetails:        append([]string(nil), details...),
		DurationSeconds:     r.DurationSeconds,
	}
}
