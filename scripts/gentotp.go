//go:build ignore

// Generates a TOTP secret for the ledger audit gate. Put the secret in
// AUDIT_TOTP_SECRET and enroll the otpauth URL in an authenticator app.
//
// Run with: go run scripts/gentotp.go <operator-email>
package main

import (
	"fmt"
	"os"

	"go-studio-backend/pkg/audit"
)

func main() {
	account := "ops@studio.local"
	if len(os.Args) > 1 {
		account = os.Args[1]
	}

	secret, url, err := audit.GenerateSecret(account)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	fmt.Printf("Account: %s\nSecret:  %s\nEnroll:  %s\n", account, secret, url)
}
