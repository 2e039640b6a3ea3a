package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/permit-readiness/constants"
	"github.com/joseph-ayodele/permit-readiness/internal/core/extract"
)

// Notes attached to outcomes. They are shown to applicants as-is.
const (
	NoteNoText       = "Could not extract text from document"
	NoteNoRules      = "No validation rules defined"
	NoteNoSignature  = "No signature indicators found in document"
	NoteNoSeal       = "No professional seal indicators found in document"
	NoteNotSupported = "Validation rules only apply to supported document types"
)

// Outcome is the verdict for one document evaluated against one rule.
// Notes list errors before warnings.
type Outcome struct {
	Status      constants.ValidationStatus `json:"status"`
	Notes       []string                   `json:"notes"`
	ValidatedAt time.Time                  `json:"validatedAt"`
}

// Evaluate applies r to f. Every check runs and contributes its own note;
// only missing text stops evaluation early.
func Evaluate(f extract.Features, r Rule, now time.Time) Outcome {
	out := Outcome{ValidatedAt: now.UTC()}

	if f.Empty() {
		out.Status = constants.StatusFail
		out.Notes = []string{NoteNoText}
		return out
	}
	if r.IsEmpty() {
		out.Status = constants.StatusPass
		out.Notes = []string{NoteNoRules}
		return out
	}

	var errs, warns []string

	if r.MinPages != nil && f.Pages < *r.MinPages {
		errs = append(errs, fmt.Sprintf("Document has %d pages, minimum required is %d", f.Pages, *r.MinPages))
	}

	if len(r.RequiredKeywords) > 0 {
		if missing := MissingKeywords(f, r); len(missing) > 0 {
			errs = append(errs, "Missing required keywords: "+strings.Join(missing, ", "))
		}
	}

	if r.MustContainSignature && !f.HasSignature {
		warns = append(warns, NoteNoSignature)
	}
	if r.MustBeProfessionallySealed && !f.HasSeal {
		warns = append(warns, NoteNoSeal)
	}

	switch {
	case len(errs) > 0:
		out.Status = constants.StatusFail
	case len(warns) > 0:
		out.Status = constants.StatusWarning
	default:
		out.Status = constants.StatusPass
	}
	out.Notes = append(errs, warns...)
	if out.Notes == nil {
		out.Notes = []string{}
	}
	return out
}

// MissingKeywords returns the rule's keywords absent from f, in rule order.
// Presence computed during extraction is reused when it covers a keyword and
// was matched in the rule's case mode.
func MissingKeywords(f extract.Features, r Rule) []string {
	var computed map[string]bool
	var missing []string
	reuse := f.KeywordsCaseSensitive == r.CaseSensitiveKeywords
	for _, kw := range r.RequiredKeywords {
		found, ok := f.Keywords[kw]
		if !ok || !reuse {
			if computed == nil {
				computed = extract.KeywordPresence(f.Text, r.RequiredKeywords, r.CaseSensitiveKeywords)
			}
			found = computed[kw]
		}
		if !found {
			missing = append(missing, kw)
		}
	}
	return missing
}

// Bypass is the outcome recorded for uploads the extractor cannot read.
func Bypass(now time.Time) Outcome {
	return Outcome{
		Status:      constants.StatusPass,
		Notes:       []string{NoteNotSupported},
		ValidatedAt: now.UTC(),
	}
}

// HasErrors reports whether the outcome failed.
func (o Outcome) HasErrors() bool { return o.Status == constants.StatusFail }
