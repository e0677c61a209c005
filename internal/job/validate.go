package job

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Length ceilings enforced before any write.
const (
	MaxTitleLen       = 500
	MaxCompanyLen     = 200
	MaxURLLen         = 2000
	MaxLocationLen    = 200
	MaxDescriptionLen = 50000
	MaxNotesLen       = 10000
)

// ValidationError rejects a single posting. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func checkLen(field, value string, limit int) error {
	if n := utf8.RuneCountInString(value); n > limit {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("%d characters exceeds limit of %d", n, limit)}
	}
	return nil
}

// Validate checks field lengths and the URL scheme. Oversized values are
// rejected, never truncated.
func Validate(p Posting) error {
	if strings.TrimSpace(p.Title) == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if strings.TrimSpace(p.URL) == "" {
		return &ValidationError{Field: "url", Reason: "required"}
	}

	checks := []struct {
		field string
		value string
		max   int
	}{
		{"title", p.Title, MaxTitleLen},
		{"company", p.Company, MaxCompanyLen},
		{"url", p.URL, MaxURLLen},
		{"location", p.Location, MaxLocationLen},
		{"description", p.Description, MaxDescriptionLen},
		{"notes", p.Notes, MaxNotesLen},
	}
	for _, c := range checks {
		if err := checkLen(c.field, c.value, c.max); err != nil {
			return err
		}
	}

	return ValidateURL(p.URL)
}

// ValidateURL accepts only absolute http and https URLs.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Field: "url", Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: "url", Reason: fmt.Sprintf("scheme must be http or https, got %q", u.Scheme)}
	}
	if u.Host == "" {
		return &ValidationError{Field: "url", Reason: "missing host"}
	}
	return nil
}

// ValidateNotes checks user notes before they are stored on their own.
func ValidateNotes(notes string) error {
	return checkLen("notes", notes, MaxNotesLen)
}
