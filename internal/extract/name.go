package extract

import (
	"regexp"
	"strings"
)

// namePattern matches an honorific or an explicit "Patient Name" label
// followed by two or more capitalized words, a first+last name heuristic.
var namePattern = regexp.MustCompile(`(?i)(?:Mr\.|Mrs\.|Ms\.|Patient Name[:\-]?)\s*([A-Z][a-z]+(?:\s[A-Z][a-z]+)+)`)

// DefaultPatientName is the silent fallback when no name is found; the
// summary can still be generated generically.
const DefaultPatientName = "Patient"

// PatientName returns the first matched patient name in the OCR text,
// trimmed, or DefaultPatientName when no match is found.
func PatientName(text string) string {
	match := namePattern.FindStringSubmatch(text)
	if match == nil {
		return DefaultPatientName
	}
	return strings.TrimSpace(match[1])
}
