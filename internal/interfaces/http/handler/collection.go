package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcollection "github.com/hawaiibiz/intel/internal/application/collection"
	"github.com/hawaiibiz/intel/internal/domain/shared"
	"github.com/hawaiibiz/intel/internal/infrastructure/logger"
	"github.com/hawaiibiz/intel/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// CollectionRunner starts and reports collection runs
type CollectionRunner interface {
	Sources() []string
	StartRun(ctx context.Context, source string) (*appcollection.RunResponse, error)
	GetRun(ctx context.Context, id uuid.UUID) (*appcollection.RunResponse, error)
	ListRuns(ctx context.Context, filter appcollection.RunListFilter) (shared.Paginated[appcollection.RunResponse], error)
}

// CollectionHandler serves collection runs
type CollectionHandler struct {
	BaseHandler
	collection CollectionRunner
}

// NewCollectionHandler creates a new CollectionHandler
func NewCollectionHandler(collection CollectionRunner) *CollectionHandler {
	return &CollectionHandler{collection: collection}
}

// SourcesData lists the accepted source names
// @Description Accepted collection sources
type SourcesData struct {
	Sources []string `json:"sources" example:"all,news,directory"`
}

// TriggerRun godoc
// @ID           triggerCollectionRun
// @Summary      Start a collection run
// @Description  Starts a run for one source, or every enabled source when source is empty or "all". The run executes in the background; poll it by ID.
// @Tags         collection
// @Accept       json
// @Produce      json
// @Param        request  body      appcollection.TriggerRunRequest  false  "Source to collect"
// @Success      202      {object}  APIResponse[appcollection.RunResponse]
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Failure      403      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /collection/runs [post]
func (h *CollectionHandler) TriggerRun(c *gin.Context) {
	var req appcollection.TriggerRunRequest
	if !h.BindOptionalJSON(c, &req) {
		return
	}
	run, err := h.collection.StartRun(c.Request.Context(), req.Source)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	logger.GetGinLogger(c).Info("Collection run started",
		zap.String("run_id", run.ID.String()),
		zap.String("source", run.Source),
		zap.String("operator", middleware.GetSubject(c)),
	)
	h.Accepted(c, run)
}

// ListRuns godoc
// @ID           listCollectionRuns
// @Summary      List collection runs
// @Tags         collection
// @Produce      json
// @Param        status     query  string  false  "Run status"  Enums(running, success, partial, failed)
// @Param        source     query  string  false  "Source label"
// @Param        page       query  int     false  "Page number"  default(1)
// @Param        page_size  query  int     false  "Page size"  default(20) maximum(100)
// @Param        order_by   query  string  false  "Sort field"  Enums(started_at, finished_at, source, status)
// @Param        order_dir  query  string  false  "Sort direction"  Enums(asc, desc)
// @Success      200  {object}  APIResponse[[]appcollection.RunResponse]
// @Failure      400  {object}  ErrorResponse
// @Router       /collection/runs [get]
func (h *CollectionHandler) ListRuns(c *gin.Context) {
	var filter appcollection.RunListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.collection.ListRuns(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetRun godoc
// @ID           getCollectionRun
// @Summary      Get a collection run
// @Tags         collection
// @Produce      json
// @Param        id   path      string  true  "Run ID"  format(uuid)
// @Success      200  {object}  APIResponse[appcollection.RunResponse]
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /collection/runs/{id} [get]
func (h *CollectionHandler) GetRun(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	run, err := h.collection.GetRun(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, run)
}

// Sources godoc
// @ID           listCollectionSources
// @Summary      List collection sources
// @Tags         collection
// @Produce      json
// @Success      200  {object}  APIResponse[SourcesData]
// @Router       /collection/sources [get]
func (h *CollectionHandler) Sources(c *gin.Context) {
	h.Success(c, SourcesData{Sources: h.collection.Sources()})
}
