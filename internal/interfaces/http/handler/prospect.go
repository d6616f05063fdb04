package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbusiness "github.com/hawaiibiz/intel/internal/application/business"
	"github.com/hawaiibiz/intel/internal/application/scoring"
	"github.com/hawaiibiz/intel/internal/domain/shared"
	"github.com/hawaiibiz/intel/internal/infrastructure/logger"
	"github.com/hawaiibiz/intel/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// ProspectService lists scores and queues rescoring
type ProspectService interface {
	ListProspects(ctx context.Context, filter scoring.ProspectListFilter) (shared.Paginated[appbusiness.ScoreResponse], error)
	Rescore(ctx context.Context, id uuid.UUID) error
}

// ProspectHandler serves prospect scores
type ProspectHandler struct {
	BaseHandler
	prospects ProspectService
}

// NewProspectHandler creates a new ProspectHandler
func NewProspectHandler(prospects ProspectService) *ProspectHandler {
	return &ProspectHandler{prospects: prospects}
}

// List godoc
// @ID           listProspects
// @Summary      List prospects
// @Description  Scored businesses, highest score first
// @Tags         prospects
// @Produce      json
// @Param        priority   query  string  false  "Priority level"  Enums(High, Medium, Low)
// @Param        min_score  query  int     false  "Minimum score"  minimum(0) maximum(100)
// @Param        page       query  int     false  "Page number"  default(1)
// @Param        page_size  query  int     false  "Page size"  default(20) maximum(100)
// @Success      200  {object}  APIResponse[[]appbusiness.ScoreResponse]
// @Failure      400  {object}  ErrorResponse
// @Router       /prospects [get]
func (h *ProspectHandler) List(c *gin.Context) {
	var filter scoring.ProspectListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.prospects.ListProspects(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Rescore godoc
// @ID           rescoreProspect
// @Summary      Queue a business for rescoring
// @Tags         prospects
// @Produce      json
// @Param        id   path      string  true  "Business ID"  format(uuid)
// @Success      202  {object}  APIResponse[QueuedData]
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /prospects/{id}/rescore [post]
func (h *ProspectHandler) Rescore(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.prospects.Rescore(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	logger.GetGinLogger(c).Info("Rescore queued",
		zap.String("business_id", id.String()),
		zap.String("operator", middleware.GetSubject(c)),
	)
	h.Accepted(c, QueuedData{BusinessID: id.String(), Queued: true})
}
