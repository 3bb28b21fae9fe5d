package curation

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/runreview/core/internal/models"
	"github.com/runreview/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, secretMW gin.HandlerFunc) {
	g := rg.Group("/shoes/:id/curation")
	g.GET("", h.listSources)
	g.GET("/aggregate", h.aggregate)
	g.POST("/refresh", secretMW, h.refresh)
}

type refreshDTO struct {
	IncludeWeb         *bool `json:"includeWeb"`
	IncludeVideos      *bool `json:"includeVideos"`
	IncludeMarketplace *bool `json:"includeMarketplace"`
	MaxResults         int   `json:"maxResults"`
}

// POST /shoes/:id/curation/refresh  [secret]
func (h *Handler) refresh(c *gin.Context) {
	var dto refreshDTO
	if err := c.ShouldBindJSON(&dto); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, err.Error())
		return
	}

	opts := CollectOptions{MaxResults: dto.MaxResults}
	if dto.IncludeWeb != nil && !*dto.IncludeWeb {
		opts.SkipWeb = true
	}
	if dto.IncludeVideos != nil && !*dto.IncludeVideos {
		opts.SkipVideos = true
	}
	if dto.IncludeMarketplace != nil && !*dto.IncludeMarketplace {
		opts.SkipMarketplace = true
	}

	summary, err := h.svc.RefreshSources(c.Request.Context(), c.Param("id"), opts)
	switch {
	case errors.Is(err, ErrItemNotFound):
		response.NotFound(c)
	case errors.Is(err, ErrNoSources):
		response.UnprocessableEntity(c, err.Error())
	case err != nil:
		response.InternalError(c, err)
	default:
		response.OK(c, summary)
	}
}

// GET /shoes/:id/curation?type=...
func (h *Handler) listSources(c *gin.Context) {
	if _, err := h.svc.GetShoe(c.Param("id")); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}

	sources, err := h.svc.GetSources(c.Param("id"), models.SourceType(c.Query("type")))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, sources)
}

// GET /shoes/:id/curation/aggregate
func (h *Handler) aggregate(c *gin.Context) {
	data, err := h.svc.AggregateForShoe(c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, data)
}
