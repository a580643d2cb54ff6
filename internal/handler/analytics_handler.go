package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acadsys/registrar-api/internal/models"
	"github.com/acadsys/registrar-api/internal/service"
	"github.com/acadsys/registrar-api/pkg/response"
)

// AnalyticsHandler exposes system-wide aggregates and the audit log.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	audit     *service.AuditService
}

// NewAnalyticsHandler constructs AnalyticsHandler.
func NewAnalyticsHandler(analytics *service.AnalyticsService, audit *service.AuditService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, audit: audit}
}

// SystemStatistics godoc
// @Summary System-wide statistics
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /statistics [get]
func (h *AnalyticsHandler) SystemStatistics(c *gin.Context) {
	stats, err := h.analytics.SystemStatistics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// AuditLog godoc
// @Summary Read the audit log
// @Tags Analytics
// @Produce json
// @Param level query string false "Filter by level (INFO|WARNING|ERROR|SUCCESS)"
// @Success 200 {object} response.Envelope
// @Router /audit-log [get]
func (h *AnalyticsHandler) AuditLog(c *gin.Context) {
	level := models.AuditLevel(c.Query("level"))
	entries, err := h.audit.List(c.Request.Context(), level)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil, map[string]interface{}{"count": len(entries)})
}
