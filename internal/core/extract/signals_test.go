package extract

import (
	"strings"
	"testing"
)

func TestHasSignature(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Signed: J. Doe", true},
		{"SIGNATURE ____", true},
		{"Authorized By the owner", true},
		{"approved by city staff", true},
		{"Electronically Signed 2024-01-01", true},
		{"/s/ Jane Smith", true},
		{"Floor plan, level 2", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := HasSignature(tt.text); got != tt.want {
			t.Errorf("HasSignature(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestHasProfessionalSeal(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"John Smith, P.E.", true},
		{"John Smith PE", true},
		{"Jane Roe, R.A.", true},
		{"Alex Lee, P.Eng.", true},
		{"Professional Engineer of record", true},
		{"REGISTERED ARCHITECT", true},
		{"Licensed engineer: on file", true},
		{"License No. 12345", true},
		{"Registration no 987", true},
		{"Official stamp here", true},
		{"Pipe and rail layout", false},
		{"Open space area", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := HasProfessionalSeal(tt.text); got != tt.want {
			t.Errorf("HasProfessionalSeal(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestKeywordPresence(t *testing.T) {
	text := "Foundation plan with Setback dimensions"

	got := KeywordPresence(text, []string{"foundation", "SETBACK", "zoning"}, false)
	if !got["foundation"] || !got["SETBACK"] || got["zoning"] {
		t.Errorf("case-insensitive presence = %v", got)
	}

	got = KeywordPresence(text, []string{"foundation", "Foundation"}, true)
	if got["foundation"] || !got["Foundation"] {
		t.Errorf("case-sensitive presence = %v", got)
	}

	if KeywordPresence(text, nil, false) != nil {
		t.Error("no keywords should yield a nil map")
	}
}

func TestSummarize(t *testing.T) {
	f := Features{
		Text:         strings.Repeat("word ", 200),
		Pages:        4,
		CharCount:    1000,
		HasSignature: true,
	}
	s := Summarize(f)
	if s.WordCount != 200 {
		t.Errorf("WordCount = %d, want 200", s.WordCount)
	}
	if len([]rune(s.Preview)) != previewRunes {
		t.Errorf("Preview length = %d, want %d", len([]rune(s.Preview)), previewRunes)
	}
	if s.PageCount != 4 || s.CharacterCount != 1000 || !s.HasSignature || s.HasProfessionalSeal {
		t.Errorf("unexpected summary %+v", s)
	}
}
