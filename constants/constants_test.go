package constants

import "testing"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in     string
		want   Jurisdiction
		wantOK bool
	}{
		{"NYC", NewYorkCity, true},
		{"  new york city, ny ", NewYorkCity, true},
		{"LA", LosAngeles, true},
		{"San Francisco, CA", SanFrancisco, true},
		{"boston", Boston, true},
		{"District of Columbia", WashingtonDC, true},
		{"Washington, D.C.", WashingtonDC, true},
		{"Chicago, IL", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Canonicalize(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Canonicalize(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestJurisdictionSlug(t *testing.T) {
	want := map[Jurisdiction]string{
		NewYorkCity:  "new-york-city",
		LosAngeles:   "los-angeles",
		SanFrancisco: "san-francisco",
		Boston:       "boston",
		WashingtonDC: "washington",
	}
	for j, slug := range want {
		if got := j.Slug(); got != slug {
			t.Errorf("%q.Slug() = %q, want %q", j, got, slug)
		}
	}
}

func TestFileHelpers(t *testing.T) {
	if MapExtToFormat(".PDF") != PDF || MapExtToFormat("dwg") != IMAGE || MapExtToFormat("docx") != DOC || MapExtToFormat("zip") != OTHER {
		t.Error("MapExtToFormat mismatch")
	}
	if !IsPDFMediaType("Application/PDF; charset=binary") || IsPDFMediaType("image/png") {
		t.Error("IsPDFMediaType mismatch")
	}
	if MediaTypeForExt("pdf") != MediaTypePDF || MediaTypeForExt("zzz") != "application/octet-stream" {
		t.Error("MediaTypeForExt mismatch")
	}
	if !IsAllowedExt(".Pdf") || IsAllowedExt("exe") {
		t.Error("IsAllowedExt mismatch")
	}
}

func TestValidationStatus(t *testing.T) {
	for _, s := range []ValidationStatus{StatusPass, StatusWarning, StatusFail} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if StatusNone.Valid() {
		t.Error("no_validation must not be persisted")
	}
}
