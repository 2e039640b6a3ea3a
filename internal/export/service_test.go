package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/permit-readiness/constants"
	"github.com/joseph-ayodele/permit-readiness/internal/entity"
	"github.com/joseph-ayodele/permit-readiness/internal/repository"
	"github.com/joseph-ayodele/permit-readiness/internal/testutil"
)

var now = time.Date(2026, time.May, 4, 12, 0, 0, 0, time.UTC)

func openWorkbook(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, axis string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, axis)
	if err != nil {
		t.Fatalf("read %s!%s: %v", sheet, axis, err)
	}
	return v
}

func seed(t *testing.T) (*Service, uuid.UUID, repository.DocumentRepository, repository.ValidationRepository) {
	t.Helper()
	db := testutil.OpenDB(t)
	log := testutil.Logger()
	projects := repository.NewProjectRepository(db, log)
	documents := repository.NewDocumentRepository(db, log)
	validations := repository.NewValidationRepository(db, log)

	p := &entity.Project{
		ID:           uuid.New(),
		Name:         "Elm Street Addition",
		Jurisdiction: string(constants.WashingtonDC),
		Checklist: entity.Checklist{
			{ID: "1", Name: "Plot Plan/Survey", Required: true, FileTypes: "PDF, DWG"},
			{ID: "2", Name: "Structural Drawings", Required: true, FileTypes: "PDF"},
			{ID: "3", Name: "Traffic Impact Study", Required: false, FileTypes: "PDF"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := projects.Create(context.Background(), p); err != nil {
		t.Fatalf("create project: %v", err)
	}
	svc := NewService(projects, documents, validations, log)
	svc.now = func() time.Time { return now }
	return svc, p.ID, documents, validations
}

func addDoc(t *testing.T, docs repository.DocumentRepository, vals repository.ValidationRepository, projectID uuid.UUID, item string, status constants.ValidationStatus, notes ...string) {
	t.Helper()
	ctx := context.Background()
	d := &entity.Document{
		ID: uuid.New(), ProjectID: projectID, ChecklistItemID: item, Filename: item + ".pdf",
		StorageKey: item, ContentHash: []byte(item), FileExt: "pdf", FileType: constants.PDF,
		MediaType: constants.MediaTypePDF, FileSize: 10, UploadedAt: now,
	}
	if err := docs.Create(ctx, d); err != nil {
		t.Fatalf("create doc: %v", err)
	}
	rec := &entity.ValidationRecord{ID: uuid.New(), ProjectID: projectID, DocumentID: d.ID, ChecklistItemID: item, Status: status, Notes: notes, ValidatedAt: now}
	if err := vals.Create(ctx, rec); err != nil {
		t.Fatalf("create validation: %v", err)
	}
}

func TestExportNotReady(t *testing.T) {
	svc, pid, docs, vals := seed(t)
	addDoc(t, docs, vals, pid, "1", constants.StatusWarning, "No professional seal indicators found in document")

	b, err := svc.ExportReadinessXLSX(context.Background(), pid)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	f := openWorkbook(t, b)

	if got := f.GetSheetList(); len(got) != 2 || got[0] != SheetChecklist || got[1] != SheetSummary {
		t.Fatalf("sheets = %v", got)
	}
	if got := cell(t, f, SheetChecklist, "B2"); got != "Plot Plan/Survey" {
		t.Errorf("B2 = %q", got)
	}
	if got := cell(t, f, SheetChecklist, "G2"); got != "warning" {
		t.Errorf("status of item 1 = %q", got)
	}
	if got := cell(t, f, SheetChecklist, "G3"); got != "no_validation" {
		t.Errorf("status of item 2 = %q", got)
	}
	if got := cell(t, f, SheetChecklist, "I2"); got != "No professional seal indicators found in document" {
		t.Errorf("notes = %q", got)
	}
	if got := cell(t, f, SheetSummary, "B4"); got != "50" {
		t.Errorf("completion = %q, want 50", got)
	}
	if got := cell(t, f, SheetSummary, "B8"); got != "Structural Drawings" {
		t.Errorf("missing = %q", got)
	}
	if got := cell(t, f, SheetSummary, "B9"); got != LabelNotReady {
		t.Errorf("status = %q", got)
	}
}

func TestExportReady(t *testing.T) {
	svc, pid, docs, vals := seed(t)
	addDoc(t, docs, vals, pid, "1", constants.StatusPass)
	addDoc(t, docs, vals, pid, "2", constants.StatusFail, "Document has 1 pages, minimum required is 2")

	report, err := svc.BuildReport(context.Background(), pid)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !report.Summary.Ready || report.Summary.CompletionPercentage != 100 {
		t.Fatalf("summary = %+v", report.Summary)
	}
	if report.Rows[1].Status != constants.StatusFail || report.Rows[2].Status != constants.StatusNone {
		t.Errorf("rows = %+v", report.Rows)
	}

	b, err := WriteXLSX(report)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	f := openWorkbook(t, b)
	if got := cell(t, f, SheetSummary, "B9"); got != LabelReady {
		t.Errorf("status = %q, want %q", got, LabelReady)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo", 3); got != "hé…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
}
