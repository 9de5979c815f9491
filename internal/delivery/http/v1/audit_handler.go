package v1

import (
	"net/http"
	"time"

	"go-studio-backend/internal/delivery/http/middleware"
	"go-studio-backend/internal/delivery/http/response"
	"go-studio-backend/pkg/apperror"
	"go-studio-backend/pkg/audit"

	"github.com/gin-gonic/gin"
)

// AuditHandler exposes the ledger integrity surface. Every route is gated by
// a fresh TOTP code on top of admin auth, and every request is access-logged.
type AuditHandler struct {
	integrity *audit.LedgerIntegrityService
}

func NewAuditHandler(protected *gin.RouterGroup, integrity *audit.LedgerIntegrityService, gate *audit.TOTPGate) {
	handler := &AuditHandler{integrity: integrity}

	ledger := protected.Group("/admin/ledger")
	ledger.Use(middleware.AuditAccessLogMiddleware())
	ledger.Use(middleware.AuditGateMiddleware(gate))
	{
		ledger.GET("/verify", handler.Verify)
		ledger.GET("/daily-root", handler.DailyRoot)
		ledger.POST("/anchor", handler.Anchor)
	}
}

// Verify godoc
// @Summary      Verify ledger integrity
// @Description  Recomputes the credit log hash chain over the date range and checks it against external anchors
// @Tags         ledger
// @Produce      json
// @Param        start_date    query     string  true  "Range start (YYYY-MM-DD)"
// @Param        end_date      query     string  true  "Range end (YYYY-MM-DD)"
// @Param        X-Audit-TOTP  header    string  true  "Fresh TOTP code"
// @Success      200  {object}  response.Response{data=audit.IntegrityReport}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /admin/ledger/verify [get]
// @Security     BearerAuth
func (h *AuditHandler) Verify(c *gin.Context) {
	startDate, ok := dateParam(c, c.Query("start_date"), "start_date")
	if !ok {
		return
	}
	endDate, ok := dateParam(c, c.Query("end_date"), "end_date")
	if !ok {
		return
	}
	if endDate.Before(startDate) {
		c.Error(apperror.BadRequest("end_date must not be before start_date"))
		return
	}

	report, err := h.integrity.VerifyIntegrity(c.Request.Context(), startDate, endDate)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	response.Success(c, http.StatusOK, "Integrity check complete", report)
}

// DailyRoot godoc
// @Summary      Daily Merkle root
// @Description  Computes the Merkle root over one day's credit log hashes
// @Tags         ledger
// @Produce      json
// @Param        date          query     string  true  "Day (YYYY-MM-DD)"
// @Param        X-Audit-TOTP  header    string  true  "Fresh TOTP code"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /admin/ledger/daily-root [get]
// @Security     BearerAuth
func (h *AuditHandler) DailyRoot(c *gin.Context) {
	date, ok := dateParam(c, c.Query("date"), "date")
	if !ok {
		return
	}

	root, count, firstID, lastID, err := h.integrity.DailyRoot(c.Request.Context(), date)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	response.Success(c, http.StatusOK, "Daily root computed", gin.H{
		"date":         date.Format("2006-01-02"),
		"root_hash":    root,
		"log_count":    count,
		"first_log_id": firstID,
		"last_log_id":  lastID,
	})
}

type AnchorRequest struct {
	Date string `json:"date" validate:"required"`
}

// Anchor godoc
// @Summary      Anchor a day's root
// @Description  Writes the day's Merkle root to WORM object storage and records the anchor
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        anchor        body      AnchorRequest  true  "Day to anchor"
// @Param        X-Audit-TOTP  header    string         true  "Fresh TOTP code"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /admin/ledger/anchor [post]
// @Security     BearerAuth
func (h *AuditHandler) Anchor(c *gin.Context) {
	var req AnchorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	date, ok := dateParam(c, req.Date, "date")
	if !ok {
		return
	}

	if err := h.integrity.AnchorDay(c.Request.Context(), date); err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	response.Success(c, http.StatusOK, "Day anchored", gin.H{"date": date.Format("2006-01-02")})
}

func dateParam(c *gin.Context, raw, name string) (time.Time, bool) {
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid " + name + ", expected YYYY-MM-DD"))
		return time.Time{}, false
	}
	return parsed, true
}
