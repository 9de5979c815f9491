package v1

import (
	"net/http"
	"strconv"

	"go-studio-backend/internal/delivery/http/middleware"
	"go-studio-backend/internal/delivery/http/response"
	"go-studio-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reportUC domain.ReportUsecase
}

func NewReportHandler(protected *gin.RouterGroup, reportUC domain.ReportUsecase) {
	handler := &ReportHandler{reportUC: reportUC}

	reports := protected.Group("/admin/reports")
	reports.Use(middleware.RequireRoles(domain.RoleAdmin, domain.RoleTrainer))
	{
		reports.GET("/bookings", handler.BookingStats)
		reports.GET("/bookings/export", handler.ExportBookings)
		reports.GET("/revenue-trend", handler.RevenueTrend)
		reports.GET("/utilization", handler.ClassUtilization)
		reports.GET("/onboarding-funnel", handler.OnboardingFunnel)
	}
}

// BookingStats godoc
// @Summary      Booking statistics
// @Description  Booking and revenue totals for the range, with growth against the previous period
// @Tags         reports
// @Produce      json
// @Param        range_days  query     int  false  "Range in days (1-365, default 30)"
// @Success      200         {object}  response.Response{data=domain.BookingStats}
// @Failure      403         {object}  response.Response
// @Router       /admin/reports/bookings [get]
// @Security     BearerAuth
func (h *ReportHandler) BookingStats(c *gin.Context) {
	stats, err := h.reportUC.BookingStats(c, rangeDays(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Booking stats retrieved", stats)
}

// ExportBookings godoc
// @Summary      Export bookings
// @Description  Bookings in the range as an XLSX download
// @Tags         reports
// @Produce      application/octet-stream
// @Param        range_days  query     int  false  "Range in days (1-365, default 30)"
// @Success      200         {file}    binary
// @Failure      403         {object}  response.Response
// @Router       /admin/reports/bookings/export [get]
// @Security     BearerAuth
func (h *ReportHandler) ExportBookings(c *gin.Context) {
	data, filename, err := h.reportUC.ExportBookingsXLSX(c, rangeDays(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// RevenueTrend godoc
// @Summary      Revenue trend
// @Description  Daily credit-derived revenue over the range
// @Tags         reports
// @Produce      json
// @Param        range_days  query     int  false  "Range in days (1-365, default 30)"
// @Success      200         {object}  response.Response{data=[]domain.RevenuePoint}
// @Failure      403         {object}  response.Response
// @Router       /admin/reports/revenue-trend [get]
// @Security     BearerAuth
func (h *ReportHandler) RevenueTrend(c *gin.Context) {
	trend, err := h.reportUC.RevenueTrend(c, rangeDays(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Revenue trend retrieved", trend)
}

// ClassUtilization godoc
// @Summary      Class utilization
// @Description  Booked capacity per class over the range
// @Tags         reports
// @Produce      json
// @Param        range_days  query     int  false  "Range in days (1-365, default 30)"
// @Success      200         {object}  response.Response{data=[]domain.ClassUtilization}
// @Failure      403         {object}  response.Response
// @Router       /admin/reports/utilization [get]
// @Security     BearerAuth
func (h *ReportHandler) ClassUtilization(c *gin.Context) {
	utilization, err := h.reportUC.ClassUtilization(c, rangeDays(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Utilization retrieved", utilization)
}

// OnboardingFunnel godoc
// @Summary      Onboarding funnel
// @Description  Home-user counts per onboarding stage and status
// @Tags         reports
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.OnboardingFunnel}
// @Failure      403  {object}  response.Response
// @Router       /admin/reports/onboarding-funnel [get]
// @Security     BearerAuth
func (h *ReportHandler) OnboardingFunnel(c *gin.Context) {
	funnel, err := h.reportUC.OnboardingFunnel(c)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Onboarding funnel retrieved", funnel)
}

func rangeDays(c *gin.Context) int {
	days, _ := strconv.Atoi(c.DefaultQuery("range_days", "30"))
	return days
}
