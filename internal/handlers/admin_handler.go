package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/study-buddy-service/internal/services"
	"github.com/SAP-F-2025/study-buddy-service/internal/utils"
	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler exposes maintenance operations
type AdminHandler struct {
	BaseHandler
	adminService services.AdminService
	validator    *validator.Validator
}

func NewAdminHandler(adminService services.AdminService, validator *validator.Validator, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  NewBaseHandler(logger),
		adminService: adminService,
		validator:    validator,
	}
}

// Seed fills empty tables with the bundled sample data
// @Summary Seed sample data
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.SeedReport
// @Router /admin/seed [post]
func (h *AdminHandler) Seed(c *gin.Context) {
	report, err := h.adminService.Seed(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	utils.GetLogger(c, h.logger).Info("Sample data seeded", "inserted", report.Inserted, "skipped", report.Skipped)
	c.JSON(http.StatusOK, gin.H{"success": true, "inserted": report.Inserted, "skipped": report.Skipped})
}

// Reset wipes all data and re-seeds it
// @Summary Reset database
// @Description Destructive; the body must be {"confirm": "RESET"}
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body validator.ResetRequest true "Confirmation"
// @Success 200 {object} services.SeedReport
// @Failure 400 {object} ErrorResponse
// @Router /admin/reset [post]
func (h *AdminHandler) Reset(c *gin.Context) {
	var req validator.ResetRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	report, err := h.adminService.Reset(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	utils.GetLogger(c, h.logger).Warn("Database reset", "requested_by", currentUser(c).UID)
	c.JSON(http.StatusOK, gin.H{"success": true, "inserted": report.Inserted})
}

// MigrateBadges copies legacy per-user badge lists into the award ledger
// @Summary Migrate legacy badges
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.MigrationReport
// @Router /admin/migrate-badges [post]
func (h *AdminHandler) MigrateBadges(c *gin.Context) {
	report, err := h.adminService.MigrateLegacyBadges(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}

// Export downloads survey, leaderboard and feedback data as a workbook
// @Summary Export data
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Router /admin/export [get]
func (h *AdminHandler) Export(c *gin.Context) {
	// Buffer first so a failed export still gets a JSON error
	var buf bytes.Buffer
	if err := h.adminService.Export(c.Request.Context(), &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("study-buddy-export-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
