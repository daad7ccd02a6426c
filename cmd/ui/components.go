package ui

import "strings"

// ShortHashLen is how many hex digits ShortHash keeps.
const ShortHashLen = 8

// ShortHash abbreviates an object id. An empty id renders as "-".
func ShortHash(hash string) string {
	if hash == "" {
		return "-"
	}
	if len(hash) > ShortHashLen {
		return hash[:ShortHashLen]
	}
	return hash
}

// FormatRefStatus colours a reference outcome such as "created" or
// "conflict". Unknown statuses are returned as is.
func FormatRefStatus(status string) string {
	switch status {
	case "created":
		return CreatedStyle.Render(IconCheck + " " + status)
	case "updated":
		return UpdatedStyle.Render(IconArrow + " " + status)
	case "unchanged":
		return UnchangedStyle.Render(IconUnchanged + " " + status)
	case "conflict":
		return ConflictStyle.Render(IconWarning + " " + status)
	case "failed":
		return FailedStyle.Render(IconCross + " " + status)
	default:
		return status
	}
}

// SuccessMessage creates a success message with a checkmark icon
func SuccessMessage(message string, details ...string) string {
	var parts []string
	parts = append(parts, Green(IconCheck), Green(message))

	for _, detail := range details {
		parts = append(parts, Blue(detail))
	}

	return strings.Join(parts, " ")
}

// ErrorMessage formats an error message in red
func ErrorMessage(message string) string {
	return Red(IconCross + " " + message)
}

// WarningMessage formats a warning message in yellow
func WarningMessage(message string) string {
	return Yellow(IconWarning + " " + message)
}

// InfoMessage formats an info message in blue
func InfoMessage(message string) string {
	return Blue(message)
}
