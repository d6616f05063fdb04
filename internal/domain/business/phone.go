package business

import (
	"fmt"
	"regexp"
)

// North American number: [2-9]XX area code, [2-9]XX exchange, 4-digit line,
// with optional parens and single space, dot or dash separators.
var phonePattern = regexp.MustCompile(`\(?([2-9][0-9]{2})\)?[-.\s]?([2-9][0-9]{2})[-.\s]?([0-9]{4})`)

// NormalizePhone returns the "(XXX) XXX-XXXX" form of the single phone number
// found in raw. It reports false when raw holds no number, or more than one
// distinct number, or when the only digit run is longer than ten digits.
// A country code is tolerated only when a separator sets it apart
// ("+1 808-523-8585", "1-808-523-8585"); "18085238585" is an eleven-digit
// run and is rejected like any other.
func NormalizePhone(raw string) (string, bool) {
	var found string
	for _, m := range phonePattern.FindAllStringSubmatchIndex(raw, -1) {
		start, end := m[0], m[1]
		if start > 0 && isDigit(raw[start-1]) {
			continue
		}
		if end < len(raw) && isDigit(raw[end]) {
			continue
		}
		formatted := fmt.Sprintf("(%s) %s-%s", raw[m[2]:m[3]], raw[m[4]:m[5]], raw[m[6]:m[7]])
		if found != "" && found != formatted {
			return "", false
		}
		found = formatted
	}
	if found == "" {
		return "", false
	}
	return found, true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
