package extract

import (
	"regexp"
	"strings"
)

// Any one hit is enough.
var signatureIndicators = []string{
	"signed",
	"signature",
	"authorized by",
	"approved by",
	"digitally signed",
	"electronically signed",
	"/s/",
}

// Title abbreviations (P.E., R.A., P.Eng.) first, then phrases.
var sealPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bP\.?E\.?\b`),
	regexp.MustCompile(`(?i)\bR\.?A\.?\b`),
	regexp.MustCompile(`(?i)\bP\.?E\.?N\.?G\.?\b`),
	regexp.MustCompile(`(?i)professional engineer`),
	regexp.MustCompile(`(?i)registered architect`),
	regexp.MustCompile(`(?i)licensed engineer`),
	regexp.MustCompile(`(?i)license no`),
	regexp.MustCompile(`(?i)registration no`),
	regexp.MustCompile(`(?i)stamp`),
}

// HasSignature reports whether text contains any signature indicator, ignoring case.
func HasSignature(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, ind := range signatureIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

// HasProfessionalSeal reports whether text mentions a licensed-professional seal.
func HasProfessionalSeal(text string) bool {
	if text == "" {
		return false
	}
	for _, re := range sealPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// KeywordPresence maps each keyword to whether it occurs in text.
// Matching is substring based over the whole text.
func KeywordPresence(text string, keywords []string, caseSensitive bool) map[string]bool {
	if len(keywords) == 0 {
		return nil
	}
	haystack := text
	if !caseSensitive {
		haystack = strings.ToLower(text)
	}
	out := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		needle := kw
		if !caseSensitive {
			needle = strings.ToLower(kw)
		}
		out[kw] = strings.Contains(haystack, needle)
	}
	return out
}
