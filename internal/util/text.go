package util

import "strings"

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\f", "\n\n", "\x00", "")

// SanitizeReportText drops invalid UTF-8 and NUL bytes from extracted
// report text and normalizes line endings. Form feeds left by PDF
// converters become paragraph breaks.
func SanitizeReportText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return lineEndings.Replace(sanitized)
}
