package adapters

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const maxDescriptionRunes = 500

var growthKeywords = []string{
	"expanding", "hiring", "launched", "opened", "acquired",
	"investment", "funding", "growth", "new location", "partnership",
}

var employeePattern = regexp.MustCompile(`(?i)(\d[\d,]*)\s*(?:full-time\s+|part-time\s+)?employees?\b`)

// growthSignals lists the growth keywords found in text
func growthSignals(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, kw := range growthKeywords {
		if strings.Contains(lower, kw) {
			out = append(out, kw)
		}
	}
	return out
}

// employeeCount reads "<n> employees" from text
func employeeCount(text string) *int {
	m := employeePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// truncate cuts s to maxDescriptionRunes, marking the cut with "..."
func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxDescriptionRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxDescriptionRunes]) + "..."
}

func intPtr(n int) *int { return &n }
