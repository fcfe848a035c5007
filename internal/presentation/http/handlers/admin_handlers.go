package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kladi/pulso-go/internal/application/services"
	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/performance"
)

// AdminHandlers contains the operator-facing HTTP handlers
type AdminHandlers struct {
	adminService *services.AdminService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

func NewAdminHandlers(adminService *services.AdminService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AdminHandlers {
	return &AdminHandlers{
		adminService: adminService,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

type flagRequest struct {
	Key    string `json:"key" binding:"required"`
	IsTest *bool  `json:"isTest"`
	Clear  bool   `json:"clear"`
}

// HandleSetFlag handles POST /api/v1/admin/flags. A clear request removes
// the manual flag; otherwise isTest is required.
func (h *AdminHandlers) HandleSetFlag(c *gin.Context) {
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	if req.Clear {
		if err := h.adminService.ClearFlag(ctx, req.Key); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"key": req.Key, "cleared": true})
		return
	}

	if req.IsTest == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "isTest is required unless clear is set"})
		return
	}
	if err := h.adminService.SetFlag(ctx, req.Key, *req.IsTest); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": req.Key, "isTest": *req.IsTest})
}

type noteRequest struct {
	AccountID string `json:"accountId" binding:"required"`
	Note      string `json:"note" binding:"required"`
	Author    string `json:"author"`
}

// HandleUpsertNote handles POST /api/v1/admin/notes
func (h *AdminHandlers) HandleUpsertNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note := &analytics.Note{
		AccountID: req.AccountID,
		Body:      req.Note,
		Author:    req.Author,
	}
	if err := h.adminService.UpsertNote(c.Request.Context(), note); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, note)
}

// HandleGetNote handles GET /api/v1/admin/notes/:accountId
func (h *AdminHandlers) HandleGetNote(c *gin.Context) {
	note, err := h.adminService.GetNote(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if note == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}
	c.JSON(http.StatusOK, note)
}
