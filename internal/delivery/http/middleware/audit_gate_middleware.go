package middleware

import (
	"net/http"
	"strings"

	"go-studio-backend/internal/delivery/http/response"
	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/audit"

	"github.com/gin-gonic/gin"
)

// AuditTOTPHeaderName carries the one-time code for ledger audit endpoints.
const AuditTOTPHeaderName = "X-Audit-TOTP"

// AuditGateMiddleware protects the ledger integrity endpoints. Admin auth
// alone is not enough for them: a fresh TOTP code proves the operator is
// present, so a stolen admin token cannot quietly read or anchor the chain.
func AuditGateMiddleware(gate *audit.TOTPGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if domain.RoleFromContext(c) != string(domain.RoleAdmin) {
			logAuditGateDenied(c, "role")
			response.Error(c, http.StatusForbidden, "Admin role required", nil)
			c.Abort()
			return
		}

		if !gate.Enabled() {
			response.Error(c, http.StatusServiceUnavailable, "Ledger audit endpoints are not configured", nil)
			c.Abort()
			return
		}

		code := strings.TrimSpace(c.GetHeader(AuditTOTPHeaderName))
		if code == "" {
			response.Error(c, http.StatusUnauthorized, "TOTP code required", nil)
			c.Abort()
			return
		}
		if err := gate.Validate(code); err != nil {
			logAuditGateDenied(c, "totp")
			response.Error(c, http.StatusUnauthorized, "Invalid TOTP code", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// AuditAccessLogMiddleware records every request that reaches the ledger
// audit surface, allowed or not.
func AuditAccessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		subject := "anonymous"
		if userID, ok := domain.UserIDFromContext(c); ok {
			subject = audit.HashID(userID)
		}

		audit.Default().Log(c.Request.Context(), audit.Event{
			Event:        "ledger_audit_access",
			SubjectType:  "user_id",
			SubjectValue: subject,
			IP:           c.ClientIP(),
			Details: map[string]any{
				"method":      c.Request.Method,
				"path":        c.Request.URL.Path,
				"status_code": c.Writer.Status(),
			},
		})
	}
}

func logAuditGateDenied(c *gin.Context, reason string) {
	subject := "anonymous"
	if userID, ok := domain.UserIDFromContext(c); ok {
		subject = audit.HashID(userID)
	}

	audit.Default().Log(c.Request.Context(), audit.Event{
		Event:        audit.EventUnauthorizedAccess,
		SubjectType:  "user_id",
		SubjectValue: subject,
		IP:           c.ClientIP(),
		Details: map[string]any{
			"reason":   reason,
			"endpoint": c.Request.URL.Path,
		},
	})
}
