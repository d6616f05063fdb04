package business

import "strings"

// Validate checks that a candidate can be ingested at all. It rejects a blank
// name and a candidate with no location signal; a missing phone, website or
// industry is never a reason to reject.
func Validate(c Candidate) error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Reason: ReasonNameRequired, Name: c.Name, Source: c.Source}
	}
	if strings.TrimSpace(c.LocationText()) == "" {
		return &ValidationError{Reason: ReasonLocationRequired, Name: c.Name, Source: c.Source}
	}
	return nil
}
