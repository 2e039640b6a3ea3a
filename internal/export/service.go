package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/permit-readiness/constants"
	"github.com/joseph-ayodele/permit-readiness/internal/core/readiness"
	"github.com/joseph-ayodele/permit-readiness/internal/entity"
	"github.com/joseph-ayodele/permit-readiness/internal/repository"
)

const (
	SheetChecklist = "Checklist"
	SheetSummary   = "Summary"

	LabelReady    = "READY FOR SUBMISSION"
	LabelNotReady = "NOT READY"
)

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	projects    repository.ProjectRepository
	documents   repository.DocumentRepository
	validations repository.ValidationRepository
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(projects repository.ProjectRepository, documents repository.DocumentRepository, validations repository.ValidationRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{projects: projects, documents: documents, validations: validations, logger: logger, now: time.Now}
}

// Row is one checklist item as printed in the report.
type Row struct {
	Item        entity.ChecklistItem
	Documents   int
	Status      constants.ValidationStatus
	Notes       []string
	ValidatedAt time.Time
}

// Report is everything the workbook shows.
type Report struct {
	Project     entity.Project
	Summary     readiness.Summary
	Rows        []Row
	GeneratedAt time.Time
}

// ExportReadinessXLSX returns the readiness workbook for a project.
func (s *Service) ExportReadinessXLSX(ctx context.Context, projectID uuid.UUID) ([]byte, error) {
	start := time.Now()
	report, err := s.BuildReport(ctx, projectID)
	if err != nil {
		return nil, err
	}
	b, err := WriteXLSX(report)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok",
		"project_id", projectID.String(),
		"rows", len(report.Rows),
		"completion", report.Summary.CompletionPercentage,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return b, nil
}

// BuildReport gathers the checklist, uploads and latest outcomes of a project.
func (s *Service) BuildReport(ctx context.Context, projectID uuid.UUID) (Report, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return Report{}, fmt.Errorf("load project: %w", err)
	}
	docs, err := s.documents.ListByProject(ctx, projectID)
	if err != nil {
		return Report{}, fmt.Errorf("list documents: %w", err)
	}
	latest, err := s.validations.LatestByProject(ctx, projectID)
	if err != nil {
		return Report{}, fmt.Errorf("list validations: %w", err)
	}

	uploaded := make([]string, 0, len(docs))
	perItem := make(map[string]int, len(docs))
	itemLatest := make(map[string]*entity.ValidationRecord)
	for _, d := range docs {
		uploaded = append(uploaded, d.ChecklistItemID)
		perItem[d.ChecklistItemID]++
		rec, ok := latest[d.ID]
		if !ok {
			continue
		}
		if cur, ok := itemLatest[d.ChecklistItemID]; !ok || rec.ValidatedAt.After(cur.ValidatedAt) {
			itemLatest[d.ChecklistItemID] = rec
		}
	}

	rows := make([]Row, 0, len(p.Checklist))
	for _, item := range p.Checklist {
		row := Row{Item: item, Documents: perItem[item.ID], Status: constants.StatusNone}
		if rec, ok := itemLatest[item.ID]; ok {
			row.Status = rec.Status
			row.Notes = rec.Notes
			row.ValidatedAt = rec.ValidatedAt
		}
		rows = append(rows, row)
	}

	return Report{
		Project:     *p,
		Summary:     readiness.Aggregate(p.Checklist, uploaded),
		Rows:        rows,
		GeneratedAt: s.now().UTC(),
	}, nil
}

// WriteXLSX renders a report as a workbook with a Checklist and a Summary sheet.
func WriteXLSX(r Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetChecklist); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(SheetSummary)
	f.SetActiveSheet(activeIndex)

	if err := writeChecklist(f, r.Rows); err != nil {
		return nil, err
	}
	if err := writeSummary(f, r); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeChecklist(f *excelize.File, rows []Row) error {
	headers := []string{"Item ID", "Item", "Required", "Custom", "Accepted Types", "Uploaded", "Latest Status", "Validated At", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetChecklist, cell, h); err != nil {
			return err
		}
	}

	for i, r := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetChecklist, cell, v)
		}
		write(1, r.Item.ID)
		write(2, r.Item.Name)
		write(3, yesNo(r.Item.Required))
		write(4, yesNo(r.Item.Custom))
		write(5, r.Item.FileTypes)
		write(6, r.Documents)
		write(7, string(r.Status))
		if r.ValidatedAt.IsZero() {
			write(8, "")
		} else {
			write(8, r.ValidatedAt.UTC().Format(time.RFC3339))
		}
		write(9, truncate(strings.Join(r.Notes, "; "), 500))
	}

	_ = f.SetColWidth(SheetChecklist, "A", "A", 16)
	_ = f.SetColWidth(SheetChecklist, "B", "B", 48)
	_ = f.SetColWidth(SheetChecklist, "C", "D", 10)
	_ = f.SetColWidth(SheetChecklist, "E", "E", 18)
	_ = f.SetColWidth(SheetChecklist, "F", "F", 10)
	_ = f.SetColWidth(SheetChecklist, "G", "G", 14)
	_ = f.SetColWidth(SheetChecklist, "H", "H", 22)
	_ = f.SetColWidth(SheetChecklist, "I", "I", 80)
	return nil
}

func writeSummary(f *excelize.File, r Report) error {
	status := LabelNotReady
	if r.Summary.Ready {
		status = LabelReady
	}
	missing := make([]string, 0, len(r.Summary.MissingRequired))
	for _, it := range r.Summary.MissingRequired {
		missing = append(missing, it.Name)
	}

	pairs := [][2]any{
		{"Project", r.Project.Name},
		{"Jurisdiction", r.Project.Jurisdiction},
		{"Generated At", r.GeneratedAt.UTC().Format(time.RFC3339)},
		{"Completion %", r.Summary.CompletionPercentage},
		{"Required Items", r.Summary.RequiredCount},
		{"Required Uploaded", r.Summary.UploadedRequiredCount},
		{"Optional Uploaded", r.Summary.OptionalUploadedCount},
		{"Missing Required", strings.Join(missing, "; ")},
		{"Status", status},
	}
	for i, kv := range pairs {
		row := i + 1
		a, _ := excelize.CoordinatesToCellName(1, row)
		b, _ := excelize.CoordinatesToCellName(2, row)
		if err := f.SetCellValue(SheetSummary, a, kv[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(SheetSummary, b, kv[1]); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 20)
	_ = f.SetColWidth(SheetSummary, "B", "B", 60)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
