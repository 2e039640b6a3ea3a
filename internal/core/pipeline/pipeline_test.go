package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/joseph-ayodele/permit-readiness/constants"
	"github.com/joseph-ayodele/permit-readiness/internal/core/rules"
	"github.com/joseph-ayodele/permit-readiness/internal/entity"
	"github.com/joseph-ayodele/permit-readiness/internal/testutil/pdftest"
)

var fixed = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func newValidator() *Validator {
	return NewValidator(nil, nil, WithClock(func() time.Time { return fixed }))
}

func TestValidate_PDF(t *testing.T) {
	v := newValidator()
	item := entity.ChecklistItem{
		ID:       "2",
		Name:     "Site Plan",
		Required: true,
		ValidationRules: &rules.Rule{
			MinPages:             rules.Pages(2),
			RequiredKeywords:     []string{"setback", "lot line"},
			MustContainSignature: true,
		},
	}
	pdf := pdftest.BuildPDF("Site plan showing setback from lot line", "Approved by: owner")

	res := v.Validate(Input{Data: pdf, MediaType: constants.MediaTypePDF, Item: item})

	if res.Bypassed {
		t.Fatal("PDF should not bypass")
	}
	if res.Outcome.Status != constants.StatusPass {
		t.Fatalf("Status = %q, notes %v, features %+v", res.Outcome.Status, res.Outcome.Notes, res.Features)
	}
	if !res.Outcome.ValidatedAt.Equal(fixed) {
		t.Errorf("ValidatedAt = %v", res.Outcome.ValidatedAt)
	}
	if !res.Features.Keywords["setback"] {
		t.Errorf("keyword presence not computed: %v", res.Features.Keywords)
	}
}

func TestValidate_UnreadablePDFFails(t *testing.T) {
	v := newValidator()
	res := v.Validate(Input{Data: []byte("garbage"), MediaType: constants.MediaTypePDF, Item: entity.ChecklistItem{ID: "1"}})
	if res.Outcome.Status != constants.StatusFail || len(res.Outcome.Notes) != 1 || res.Outcome.Notes[0] != rules.NoteNoText {
		t.Errorf("got %+v, want single no-text failure", res.Outcome)
	}
}

func TestValidate_NonPDFBypasses(t *testing.T) {
	v := newValidator()
	item := entity.ChecklistItem{ID: "1", ValidationRules: &rules.Rule{MinPages: rules.Pages(10)}}
	res := v.Validate(Input{Data: []byte("dwg bytes"), MediaType: "image/vnd.dwg", Item: item})
	if !res.Bypassed {
		t.Fatal("expected bypass")
	}
	if res.Outcome.Status != constants.StatusPass || res.Outcome.Notes[0] != rules.NoteNotSupported {
		t.Errorf("got %+v", res.Outcome)
	}
}

func TestValidateBatch_PreservesOrder(t *testing.T) {
	v := newValidator()
	var inputs []Input
	for i := 0; i < 20; i++ {
		pages := make([]string, i%4+1)
		for p := range pages {
			pages[p] = fmt.Sprintf("document %d page %d", i, p+1)
		}
		inputs = append(inputs, Input{
			Data:      pdftest.BuildPDF(pages...),
			MediaType: constants.MediaTypePDF,
			Item:      entity.ChecklistItem{ID: fmt.Sprint(i), ValidationRules: &rules.Rule{MinPages: rules.Pages(3)}},
		})
	}

	results, err := v.ValidateBatch(context.Background(), inputs, 4)
	if err != nil {
		t.Fatalf("ValidateBatch: %v", err)
	}
	if len(results) != len(inputs) {
		t.Fatalf("len = %d, want %d", len(results), len(inputs))
	}
	for i, r := range results {
		wantPages := i%4 + 1
		if r.Features.Pages != wantPages {
			t.Errorf("result %d: pages = %d, want %d", i, r.Features.Pages, wantPages)
		}
		wantStatus := constants.StatusPass
		if wantPages < 3 {
			wantStatus = constants.StatusFail
		}
		if r.Outcome.Status != wantStatus {
			t.Errorf("result %d: status = %q, want %q", i, r.Outcome.Status, wantStatus)
		}
	}
}

func TestValidateBatch_Cancelled(t *testing.T) {
	v := newValidator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	inputs := []Input{{Data: pdftest.BuildPDF("x"), MediaType: constants.MediaTypePDF}}
	if _, err := v.ValidateBatch(ctx, inputs, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
