package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/tracemap-backend-go/internal/models"
	"github.com/jengzang/tracemap-backend-go/internal/service"
	"github.com/jengzang/tracemap-backend-go/pkg/response"
)

// MaxRouteBody caps the size of an uploaded route
const MaxRouteBody = 16 << 20

// GlobeHandler handles HTTP requests for routes, points and segments
type GlobeHandler struct {
	service *service.GlobeService
}

// NewGlobeHandler creates a new globe handler
func NewGlobeHandler(service *service.GlobeService) *GlobeHandler {
	return &GlobeHandler{service: service}
}

// ProcessRoute handles POST /api/v1/routes/:routeId with the raw CSV as body
func (h *GlobeHandler) ProcessRoute(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxRouteBody))
	if err != nil {
		response.BadRequest(c, "Failed to read route body", err)
		return
	}

	result, err := h.service.ProcessRoute(c.Param("routeId"), string(body))
	if errors.Is(err, service.ErrInvalidRouteID) {
		response.BadRequest(c, "Invalid route ID", err)
		return
	}
	if err != nil {
		response.InternalError(c, "Failed to process route", err)
		return
	}

	response.Created(c, result)
}

// ProcessBatch handles POST /api/v1/batches
func (h *GlobeHandler) ProcessBatch(c *gin.Context) {
	var req models.BatchRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			response.BadRequest(c, "Invalid request body", err)
			return
		}
	}

	summary, err := h.service.ProcessBatch(c.Request.Context(), req.RouteIDs)
	switch {
	case errors.Is(err, service.ErrNoTargets):
		response.BadRequest(c, "No routes to process", err)
		return
	case errors.Is(err, service.ErrNoSource):
		response.Error(c, http.StatusServiceUnavailable, "Route source not configured", err)
		return
	case err != nil:
		response.InternalError(c, "Failed to process batch", err)
		return
	}

	response.Success(c, summary)
}

// GetPoints handles GET /api/v1/points
func (h *GlobeHandler) GetPoints(c *gin.Context) {
	var filter models.PointFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	points := h.service.Points(filter)
	response.Success(c, gin.H{
		"data":  points,
		"total": len(points),
	})
}

// GetPointByID handles GET /api/v1/points/:id
func (h *GlobeHandler) GetPointByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid point ID", err)
		return
	}

	point, err := h.service.Point(c.Request.Context(), id)
	if errors.Is(err, service.ErrPointNotFound) {
		response.NotFound(c, "Point not found")
		return
	}
	if err != nil {
		response.InternalError(c, "Failed to get point", err)
		return
	}

	response.Success(c, point)
}

// GetSegments handles GET /api/v1/segments
func (h *GlobeHandler) GetSegments(c *gin.Context) {
	var filter models.SegmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	segments := h.service.Segments(filter)
	response.Success(c, gin.H{
		"data":  segments,
		"total": len(segments),
	})
}

// GetUnplaced handles GET /api/v1/unplaced
func (h *GlobeHandler) GetUnplaced(c *gin.Context) {
	probes := h.service.Unplaced()
	response.Success(c, gin.H{
		"data":  probes,
		"total": len(probes),
	})
}

// GetStats handles GET /api/v1/stats
func (h *GlobeHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats()
	if err != nil {
		response.InternalError(c, "Failed to get stats", err)
		return
	}
	response.Success(c, stats)
}

// GetCommands handles GET /api/v1/commands?since=<seq>
func (h *GlobeHandler) GetCommands(c *gin.Context) {
	var since int64
	if s := c.Query("since"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v < 0 {
			response.BadRequest(c, "Invalid since parameter", err)
			return
		}
		since = v
	}

	commands, last := h.service.Commands(since)
	response.Success(c, gin.H{
		"data": commands,
		"last": last,
	})
}

// ResetSession handles DELETE /api/v1/session
func (h *GlobeHandler) ResetSession(c *gin.Context) {
	if err := h.service.Reset(); err != nil {
		response.InternalError(c, "Failed to reset session", err)
		return
	}
	response.Success(c, gin.H{"reset": true})
}
