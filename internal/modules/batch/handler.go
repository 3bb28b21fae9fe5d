package batch

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/runreview/core/internal/modules/curation"
	"github.com/runreview/core/internal/modules/synthesis"
	"github.com/runreview/core/internal/pkg/pagination"
	"github.com/runreview/core/internal/pkg/response"
	"github.com/runreview/core/internal/pkg/taskqueue"
)

type Handler struct {
	orch  *Orchestrator
	tasks *taskqueue.Service
}

func NewHandler(orch *Orchestrator, tasks *taskqueue.Service) *Handler {
	return &Handler{orch: orch, tasks: tasks}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, secretMW gin.HandlerFunc) {
	g := rg.Group("/batch", secretMW)
	g.POST("/reviews", h.trigger)
	g.GET("/tasks", h.listTasks)
	g.GET("/tasks/:taskId", h.getTask)
	g.POST("/tasks/:taskId/cancel", h.cancelTask)
	g.DELETE("/tasks/:taskId", h.deleteTask)

	rg.POST("/reviews/:reviewId/regenerate", secretMW, h.regenerate)
}

type triggerDTO struct {
	MaxItems  int `json:"max_items"`
	SourceCap int `json:"source_cap"`
}

// POST /batch/reviews  [secret]
func (h *Handler) trigger(c *gin.Context) {
	var dto triggerDTO
	if err := c.ShouldBindJSON(&dto); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.orch.EnqueueRun(c.Request.Context(), RunOptions{
		MaxItems:  dto.MaxItems,
		SourceCap: dto.SourceCap,
	})
	if errors.Is(err, ErrAlreadyRunning) {
		response.Conflict(c, err.Error())
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Accepted(c, task)
}

// POST /reviews/:reviewId/regenerate  [secret]
func (h *Handler) regenerate(c *gin.Context) {
	review, err := h.orch.Regenerate(c.Request.Context(), c.Param("reviewId"))
	switch {
	case errors.Is(err, ErrReviewNotFound), errors.Is(err, curation.ErrItemNotFound):
		response.NotFound(c)
	case errors.Is(err, curation.ErrInsufficientSources), errors.Is(err, synthesis.ErrNoSources):
		response.UnprocessableEntity(c, err.Error())
	case err != nil:
		response.InternalError(c, err)
	default:
		response.OK(c, review)
	}
}

// GET /batch/tasks?page=&size=&status=  [secret]
func (h *Handler) listTasks(c *gin.Context) {
	p := pagination.FromContext(c)

	var statusFilter *taskqueue.TaskStatus
	if s := c.Query("status"); s != "" {
		status := taskqueue.TaskStatus(s)
		statusFilter = &status
	}
	taskType := TaskTypeGenerateReviews

	tasks, total, err := h.tasks.List(c.Request.Context(), p.Page, p.Size, &taskType, statusFilter)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	totalPage := int((total + int64(p.Size) - 1) / int64(p.Size))
	response.Paged(c, tasks, response.Pagination{
		Total:       total,
		CurrentPage: p.Page,
		TotalPage:   totalPage,
		Size:        p.Size,
		HasNextPage: p.Page < totalPage,
	})
}

// GET /batch/tasks/:taskId  [secret]
func (h *Handler) getTask(c *gin.Context) {
	task, err := h.tasks.GetByID(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if task == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, task)
}

// POST /batch/tasks/:taskId/cancel  [secret]
func (h *Handler) cancelTask(c *gin.Context) {
	if err := h.tasks.Cancel(c.Request.Context(), c.Param("taskId")); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.NoContent(c)
}

// DELETE /batch/tasks/:taskId  [secret]
func (h *Handler) deleteTask(c *gin.Context) {
	if err := h.tasks.DeleteByID(c.Request.Context(), c.Param("taskId")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
