package server

import (
	"time"

	"github.com/joseph-ayodele/permit-readiness/internal/core/extract"
	"github.com/joseph-ayodele/permit-readiness/internal/core/readiness"
	"github.com/joseph-ayodele/permit-readiness/internal/core/rules"
	"github.com/joseph-ayodele/permit-readiness/internal/entity"
	"github.com/joseph-ayodele/permit-readiness/internal/services/permit"
	"github.com/joseph-ayodele/permit-readiness/internal/templates"
)

// Request and response shapes of permit.v1.PermitService. On the wire each
// is a google.protobuf.Struct with these field names.

type Empty struct{}

type CreateProjectRequest struct {
	Name         string           `json:"name"`
	Jurisdiction string           `json:"jurisdiction"`
	Checklist    entity.Checklist `json:"checklist,omitempty"`
}

type ProjectRequest struct {
	ProjectID string `json:"project_id"`
}

type ProjectResponse struct {
	Project *entity.Project `json:"project"`
}

type ListProjectsResponse struct {
	Projects []entity.ProjectSummary `json:"projects"`
}

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

type AddCustomItemRequest struct {
	ProjectID       string      `json:"project_id"`
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Required        bool        `json:"required"`
	FileTypes       string      `json:"file_types"`
	ValidationRules *rules.Rule `json:"validation_rules,omitempty"`
}

type ItemResponse struct {
	Item entity.ChecklistItem `json:"item"`
}

type ItemRequest struct {
	ProjectID       string `json:"project_id"`
	ChecklistItemID string `json:"checklist_item_id"`
}

type UploadDocumentRequest struct {
	ProjectID       string `json:"project_id"`
	ChecklistItemID string `json:"checklist_item_id"`
	Filename        string `json:"filename"`
	Data            []byte `json:"data"`
	SkipDuplicates  bool   `json:"skip_duplicates"`
}

type UploadDocumentResponse struct {
	Document     *entity.Document         `json:"document"`
	Validation   *entity.ValidationRecord `json:"validation"`
	Deduplicated bool                     `json:"deduplicated"`
}

type DocumentRequest struct {
	DocumentID string `json:"document_id"`
}

type ListDocumentsResponse struct {
	Documents []*entity.Document `json:"documents"`
}

type ValidationResponse struct {
	Validation permit.ValidationView `json:"validation"`
}

type ValidationRecordResponse struct {
	Validation *entity.ValidationRecord `json:"validation"`
}

type ValidationHistoryResponse struct {
	Validations []*entity.ValidationRecord `json:"validations"`
}

type RevalidateProjectResponse struct {
	Documents int `json:"documents"`
}

type DocumentSummaryResponse struct {
	Summary extract.Summary `json:"summary"`
}

type ReadinessResponse struct {
	Readiness readiness.Summary `json:"readiness"`
}

type ExportReportResponse struct {
	Xlsx []byte `json:"xlsx"`
}

type IngestDirectoryRequest struct {
	ProjectID string `json:"project_id"`
	RootPath  string `json:"root_path"`
	// SkipHidden defaults to true when absent.
	SkipHidden *bool `json:"skip_hidden,omitempty"`
}

type IngestFileResult struct {
	SourcePath      string    `json:"source_path"`
	ChecklistItemID string    `json:"checklist_item_id,omitempty"`
	DocumentID      string    `json:"document_id,omitempty"`
	Deduplicated    bool      `json:"deduplicated"`
	ContentHashHex  string    `json:"content_hash_hex,omitempty"`
	FileExt         string    `json:"file_ext,omitempty"`
	Status          string    `json:"status,omitempty"`
	UploadedAt      time.Time `json:"uploaded_at,omitempty"`
	Error           string    `json:"error,omitempty"`
}

type IngestDirectoryResponse struct {
	Scanned      uint32             `json:"scanned"`
	Matched      uint32             `json:"matched"`
	Succeeded    uint32             `json:"succeeded"`
	Deduplicated uint32             `json:"deduplicated"`
	Failed       uint32             `json:"failed"`
	Results      []IngestFileResult `json:"results"`
}

type ListTemplatesResponse struct {
	Templates []templates.Template `json:"templates"`
}
