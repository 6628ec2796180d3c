// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openpbrl/openpbrl/internal/app/dto"
	"github.com/openpbrl/openpbrl/internal/app/service"
	"github.com/openpbrl/openpbrl/internal/observability/logging"
	"github.com/openpbrl/openpbrl/pkg/errors"
)

// RunHandler serves relabeling run and dataset endpoints
type RunHandler struct {
	svc    *service.RelabelService
	logger logging.Logger
}

// NewRunHandler creates the handler
func NewRunHandler(svc *service.RelabelService, logger logging.Logger) *RunHandler {
	return &RunHandler{svc: svc, logger: logger}
}

// Register mounts the handler's routes on the given group
func (h *RunHandler) Register(g *gin.RouterGroup) {
	g.POST("/runs", h.StartRun)
	g.GET("/runs", h.ListRuns)
	g.GET("/runs/:id", h.GetRun)
	g.PUT("/datasets/*key", h.UploadDataset)
	g.GET("/datasets/*key", h.DatasetStats)
}

// StartRun launches an asynchronous relabeling run.
func (h *RunHandler) StartRun(c *gin.Context) {
	var req dto.RelabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.NewValidationError(errors.CodeInvalidParameter, err.Error()))
		return
	}
	resp, err := h.svc.StartRun(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

// GetRun returns the current state of a run.
func (h *RunHandler) GetRun(c *gin.Context) {
	resp, err := h.svc.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListRuns returns recent runs.
func (h *RunHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	resp, err := h.svc.ListRuns(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": resp})
}

// UploadDataset stores a transition dataset under the path key.
func (h *RunHandler) UploadDataset(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeError(c, errors.NewValidationError(errors.CodeInvalidParameter, "read request body"))
		return
	}
	if err := h.svc.UploadDataset(c.Request.Context(), key, data); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"dataset_key": key})
}

// DatasetStats summarizes a stored dataset.
func (h *RunHandler) DatasetStats(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	resp, err := h.svc.DatasetStats(c.Request.Context(), key)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// writeError maps application errors onto their HTTP status
func writeError(c *gin.Context, err error) {
	c.JSON(errors.GetHTTPStatus(err), gin.H{
		"code":    errors.GetCode(err),
		"message": err.Error(),
	})
}
