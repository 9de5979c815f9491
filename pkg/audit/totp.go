package audit

import (
	"errors"
	"fmt"

	"github.com/pquerna/otp/totp"
)

// ErrTOTPNotConfigured is returned when no audit TOTP secret is set.
var ErrTOTPNotConfigured = errors.New("audit: TOTP secret not configured")

// TOTPGate validates one-time codes before ledger verification endpoints
// run. The secret is shared operator-side; there is no per-user enrollment.
type TOTPGate struct {
	secret string
}

func NewTOTPGate(secret string) *TOTPGate {
	return &TOTPGate{secret: secret}
}

// Enabled reports whether a secret is configured. When disabled, callers
// must reject audit requests rather than skip the check.
func (g *TOTPGate) Enabled() bool {
	return g.secret != ""
}

// Validate checks a TOTP code against the configured secret.
func (g *TOTPGate) Validate(code string) error {
	if g.secret == "" {
		return ErrTOTPNotConfigured
	}
	if !totp.Validate(code, g.secret) {
		return errors.New("audit: invalid TOTP code")
	}
	return nil
}

// GenerateSecret creates a new TOTP secret for operator provisioning and
// returns the secret plus its otpauth:// enrollment URL.
func GenerateSecret(accountName string) (string, string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Studio Ledger Audit",
		AccountName: accountName,
	})
	if err != nil {
		return "", "", fmt.Errorf("generate TOTP key: %w", err)
	}
	return key.Secret(), key.URL(), nil
}
