package extract

import "strings"

const previewRunes = 500

// Summary is the at-a-glance view of a document shown before or after validation.
type Summary struct {
	PageCount           int    `json:"pageCount"`
	CharacterCount      int    `json:"characterCount"`
	WordCount           int    `json:"wordCount"`
	HasSignature        bool   `json:"hasSignature"`
	HasProfessionalSeal bool   `json:"hasProfessionalSeal"`
	Preview             string `json:"preview"`
}

func Summarize(f Features) Summary {
	return Summary{
		PageCount:           f.Pages,
		CharacterCount:      f.CharCount,
		WordCount:           len(strings.Fields(f.Text)),
		HasSignature:        f.HasSignature,
		HasProfessionalSeal: f.HasSeal,
		Preview:             preview(f.Text, previewRunes),
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
