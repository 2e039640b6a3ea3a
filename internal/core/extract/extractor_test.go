package extract

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/permit-readiness/constants"
	"github.com/joseph-ayodele/permit-readiness/internal/testutil/pdftest"
)

func TestExtract_PDFPagesInOrder(t *testing.T) {
	data := pdftest.BuildPDF("Foundation plan sheet A1", "Setback analysis sheet A2", "Signed by the owner")

	f := Extract(data, constants.MediaTypePDF)

	if f.Pages != 3 {
		t.Fatalf("Pages = %d, want 3", f.Pages)
	}
	if f.Empty() {
		t.Fatalf("expected text, got empty (warnings: %v)", f.Warnings)
	}
	first := strings.Index(f.Text, "Foundation")
	second := strings.Index(f.Text, "Setback")
	third := strings.Index(f.Text, "Signed")
	if first < 0 || second < 0 || third < 0 {
		t.Fatalf("missing page text in %q", f.Text)
	}
	if !(first < second && second < third) {
		t.Errorf("pages out of order: %d, %d, %d in %q", first, second, third, f.Text)
	}
	if got := strings.Count(f.Text, "\n"); got < 2 {
		t.Errorf("expected pages joined by newlines, got %d newlines in %q", got, f.Text)
	}
	if !f.HasSignature {
		t.Error("HasSignature = false, want true")
	}
	if f.CharCount != len([]rune(f.Text)) {
		t.Errorf("CharCount = %d, want %d", f.CharCount, len([]rune(f.Text)))
	}
	if f.Method != "pdf-text" {
		t.Errorf("Method = %q", f.Method)
	}
}

func TestExtract_KeywordPresence(t *testing.T) {
	data := pdftest.BuildPDF("FOUNDATION details and footing schedule")

	f := Extract(data, constants.MediaTypePDF, WithKeywords([]string{"foundation", "setback"}, false))
	want := map[string]bool{"foundation": true, "setback": false}
	if diff := cmp.Diff(want, f.Keywords); diff != "" {
		t.Errorf("Keywords mismatch (-want +got):\n%s", diff)
	}

	f = Extract(data, constants.MediaTypePDF, WithKeywords([]string{"foundation"}, true))
	if f.Keywords["foundation"] {
		t.Error("case-sensitive match should not find lowercase keyword in uppercase text")
	}
}

func TestExtract_GarbageInputFailsSoft(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "nil", data: nil},
		{name: "not a pdf", data: []byte("this is plainly not a PDF document, just some bytes")},
		{name: "truncated", data: pdftest.BuildPDF("hello")[:40]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Extract(tt.data, constants.MediaTypePDF)
			if !f.Empty() {
				t.Errorf("expected empty text, got %q", f.Text)
			}
			if len(f.Warnings) == 0 {
				t.Error("expected a warning describing the failure")
			}
			if f.HasSignature || f.HasSeal {
				t.Error("signals must be false on empty text")
			}
		})
	}
}

func TestExtract_BadPageKeepsOtherPages(t *testing.T) {
	data := pdftest.BuildPDF("first page foundation", pdftest.BrokenPage, "third page setback")

	f := Extract(data, constants.MediaTypePDF, WithKeywords([]string{"setback"}, false))

	if f.Pages != 3 {
		t.Fatalf("Pages = %d, want 3", f.Pages)
	}
	first := strings.Index(f.Text, "first page")
	third := strings.Index(f.Text, "third page")
	if first < 0 || third < 0 || first > third {
		t.Fatalf("surviving pages missing or out of order in %q", f.Text)
	}
	if len(f.Warnings) != 1 || !strings.HasPrefix(f.Warnings[0], "page 2:") {
		t.Errorf("Warnings = %v, want one warning for page 2", f.Warnings)
	}
	if !f.Keywords["setback"] {
		t.Error("keyword on a page after the broken one was not found")
	}
}

func TestExtract_PageCountIndependentOfText(t *testing.T) {
	data := pdftest.CorruptHeader(pdftest.BuildPDF("one", "two"))

	f := Extract(data, constants.MediaTypePDF)
	if !f.Empty() {
		t.Fatalf("expected no text from unreadable file, got %q", f.Text)
	}
	if f.Pages != 2 {
		t.Errorf("Pages = %d, want 2 from raw probe", f.Pages)
	}
}

func TestExtract_MaxPages(t *testing.T) {
	e := NewExtractor(Config{MaxPages: 1}, nil)
	f := e.Extract(pdftest.BuildPDF("alpha", "bravo"), constants.MediaTypePDF)
	if f.Pages != 2 {
		t.Errorf("Pages = %d, want 2 (count is never capped)", f.Pages)
	}
	if strings.Contains(f.Text, "bravo") {
		t.Errorf("text beyond MaxPages extracted: %q", f.Text)
	}
	if len(f.Warnings) == 0 {
		t.Error("expected a truncation warning")
	}
}

func TestExtract_NonPDF(t *testing.T) {
	f := Extract([]byte{0xff, 0xd8, 0xff}, "image/jpeg")
	if !f.Empty() || f.Pages != 0 {
		t.Errorf("non-PDF input should yield empty features, got %+v", f)
	}
	if f.Method != "none" {
		t.Errorf("Method = %q, want none", f.Method)
	}
}

func TestFeatures_EmptyTreatsWhitespaceAsEmpty(t *testing.T) {
	if !(Features{Text: " \n\t\n"}).Empty() {
		t.Error("whitespace-only text should be empty")
	}
	if (Features{Text: "x"}).Empty() {
		t.Error("non-blank text should not be empty")
	}
}

func TestProbePageCount(t *testing.T) {
	raw := []byte("<< /Type /Pages /Count 2 >> << /Type /Page >> << /Type/Page /Parent 2 0 R >>")
	if got := probePageCount(raw); got != 2 {
		t.Errorf("probePageCount = %d, want 2", got)
	}
}
