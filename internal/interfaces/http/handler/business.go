package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbusiness "github.com/hawaiibiz/intel/internal/application/business"
	"github.com/hawaiibiz/intel/internal/domain/shared"
)

// BusinessReader is the read side of the business service
type BusinessReader interface {
	List(ctx context.Context, filter appbusiness.BusinessListFilter) (shared.Paginated[appbusiness.BusinessResponse], error)
	GetByID(ctx context.Context, id uuid.UUID) (*appbusiness.BusinessDetailResponse, error)
}

// BusinessHandler serves the business catalogue
type BusinessHandler struct {
	BaseHandler
	businesses BusinessReader
}

// NewBusinessHandler creates a new BusinessHandler
func NewBusinessHandler(businesses BusinessReader) *BusinessHandler {
	return &BusinessHandler{businesses: businesses}
}

// List godoc
// @ID           listBusinesses
// @Summary      List businesses
// @Description  Paginated business list with search, island, industry and minimum score filters
// @Tags         businesses
// @Produce      json
// @Param        search     query    string  false  "Case-insensitive name or description match"
// @Param        island     query    string  false  "Island"  Enums(Oahu, Maui, Big Island, Kauai, Molokai, Lanai)
// @Param        industry   query    string  false  "Industry"
// @Param        min_score  query    int     false  "Only businesses scored at least this"  minimum(0) maximum(100)
// @Param        page       query    int     false  "Page number"  default(1)
// @Param        page_size  query    int     false  "Page size"  default(20) maximum(100)
// @Param        order_by   query    string  false  "Sort field"  Enums(name, island, industry, created_at, updated_at)
// @Param        order_dir  query    string  false  "Sort direction"  Enums(asc, desc)
// @Success      200  {object}  APIResponse[[]appbusiness.BusinessResponse]
// @Failure      400  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /businesses [get]
func (h *BusinessHandler) List(c *gin.Context) {
	var filter appbusiness.BusinessListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.businesses.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Get godoc
// @ID           getBusiness
// @Summary      Get a business
// @Description  A business with its prospect score when one exists
// @Tags         businesses
// @Produce      json
// @Param        id   path      string  true  "Business ID"  format(uuid)
// @Success      200  {object}  APIResponse[appbusiness.BusinessDetailResponse]
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /businesses/{id} [get]
func (h *BusinessHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	detail, err := h.businesses.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}
