package business

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// okina and the apostrophes scrapers substitute for it
var okinaReplacer = strings.NewReplacer("ʻ", "", "'", "", "‘", "", "’", "", "`", "")

// foldText strips diacritics (kahakō), the okina and case, then collapses
// whitespace. "Hāna, Oʻahu" and "hana, oahu" fold to the same string.
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFKC, cases.Fold())
	out, _, err := transform.String(t, s)
	if err != nil {
		out = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(okinaReplacer.Replace(out)), " ")
}

// containsWord reports whether kw occurs in text bounded by non-alphanumerics
// on both sides. Both arguments are expected to be folded already.
func containsWord(text, kw string) bool {
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], kw)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(kw)
		if !isWordByteAt(text, start-1) && !isWordByteAt(text, end) {
			return true
		}
		offset = start + 1
	}
	return false
}

func isWordByteAt(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	b := s[i]
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 0x80
}

// NameKey is the dedup key for a business name: case, diacritics, okina and
// whitespace differences are ignored, nothing else is.
func NameKey(name string) string {
	return foldText(name)
}

// CleanText trims and collapses internal whitespace.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeWebsite returns an absolute URL with a lower-cased host and no
// trailing slash, or "" when raw is not a usable http(s) address.
func NormalizeWebsite(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || !strings.Contains(u.Host, ".") {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	return strings.TrimSuffix(u.String(), "/")
}
