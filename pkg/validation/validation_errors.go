package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-facing labels.
var FieldLabels = map[string]string{
	// Auth fields
	"Email":     "Email",
	"Password":  "Password",
	"FirstName": "First name",
	"LastName":  "Last name",
	"Phone":     "Phone number",

	// Schedule fields
	"Name":        "Name",
	"ServiceType": "Service type",
	"StartTime":   "Start time",
	"EndTime":     "End time",
	"Capacity":    "Capacity",
	"CreditCost":  "Credit cost",
	"TrainerID":   "Trainer",
	"Location":    "Location",

	// Credit fields
	"Amount":    "Credit amount",
	"Source":    "Credit source",
	"ExpiresAt": "Expiry date",
	"UserID":    "User",

	// Membership fields
	"MembershipTypeID": "Membership type",
	"CreditAmount":     "Credit amount",
	"CreditFrequency":  "Credit frequency",

	// Messaging fields
	"Subject":  "Subject",
	"Body":     "Message body",
	"Priority": "Priority",

	// Onboarding fields
	"Slot":           "Media slot",
	"WatchedPercent": "Watched percent",

	// Branding fields
	"BusinessName": "Business name",
	"LogoURL":      "Logo URL",
	"PrimaryColor": "Primary color",
}

// FormatValidationErrors converts validator.ValidationErrors to
// user-friendly messages.
func FormatValidationErrors(err error) []string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: This field is required", label)

	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: Must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s: Must be at least %s", label, param)

	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: Must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s: Must be at most %s", label, param)

	case "oneof":
		return fmt.Sprintf("%s: Must be one of: %s", label, strings.Join(strings.Split(param, " "), ", "))

	case "email":
		return fmt.Sprintf("%s: Invalid email format", label)

	case "url":
		return fmt.Sprintf("%s: Invalid URL format", label)

	case "gt":
		return fmt.Sprintf("%s: Must be greater than %s", label, param)

	case "gte":
		return fmt.Sprintf("%s: Must be at least %s", label, param)

	case "lte":
		return fmt.Sprintf("%s: Must be at most %s", label, param)

	case "valid_name":
		return fmt.Sprintf("%s: Only letters, spaces, and common punctuation allowed", label)

	case "valid_phone":
		return fmt.Sprintf("%s: Invalid phone number format (7-15 digits, with/without +)", label)

	case "no_emoji":
		return fmt.Sprintf("%s: Must not contain emoji or special symbols", label)

	case "future_time":
		return fmt.Sprintf("%s: Must be in the future", label)

	case "gtfield":
		return fmt.Sprintf("%s: Must be after %s", label, getFieldLabel(param))

	default:
		return fmt.Sprintf("%s: Validation failed (%s)", label, e.Tag())
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
