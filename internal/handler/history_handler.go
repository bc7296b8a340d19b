package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/tracemap-backend-go/internal/models"
	"github.com/jengzang/tracemap-backend-go/internal/service"
	"github.com/jengzang/tracemap-backend-go/pkg/response"
)

// HistoryHandler serves persisted route runs, points and segments
type HistoryHandler struct {
	service *service.GlobeService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(service *service.GlobeService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// GetRuns handles GET /api/v1/runs
func (h *HistoryHandler) GetRuns(c *gin.Context) {
	var filter models.RunFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	runs, total, err := h.service.Runs(filter)
	if err != nil {
		response.InternalError(c, "Failed to get runs", err)
		return
	}

	// Calculate pagination info
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 50
	}
	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	response.Success(c, gin.H{
		"data":       runs,
		"total":      total,
		"page":       filter.Page,
		"pageSize":   filter.PageSize,
		"totalPages": totalPages,
	})
}

// GetRunByID handles GET /api/v1/runs/:id
func (h *HistoryHandler) GetRunByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid run ID", err)
		return
	}

	run, err := h.service.Run(id)
	if err != nil {
		response.InternalError(c, "Failed to get run", err)
		return
	}
	if run == nil {
		response.NotFound(c, "Run not found")
		return
	}

	response.Success(c, run)
}

// ClearRuns handles DELETE /api/v1/runs
func (h *HistoryHandler) ClearRuns(c *gin.Context) {
	if err := h.service.ClearHistory(); err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to clear runs", err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}

// GetStoredPoints handles GET /api/v1/history/points
func (h *HistoryHandler) GetStoredPoints(c *gin.Context) {
	var filter models.PointFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	points, err := h.service.StoredPoints(filter)
	if err != nil {
		response.InternalError(c, "Failed to get stored points", err)
		return
	}

	response.Success(c, gin.H{
		"data":  points,
		"total": len(points),
	})
}

// GetStoredSegments handles GET /api/v1/history/segments
func (h *HistoryHandler) GetStoredSegments(c *gin.Context) {
	var filter models.SegmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	segments, err := h.service.StoredSegments(filter)
	if err != nil {
		response.InternalError(c, "Failed to get stored segments", err)
		return
	}

	response.Success(c, gin.H{
		"data":  segments,
		"total": len(segments),
	})
}
