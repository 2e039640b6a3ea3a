package server

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/permit-readiness/internal/ingest"
	"github.com/joseph-ayodele/permit-readiness/internal/services/permit"
	"github.com/joseph-ayodele/permit-readiness/internal/templates"
)

// TemplateLister lists the jurisdiction checklist templates.
type TemplateLister interface {
	List() []templates.Template
}

// PermitServer adapts the permit service to permit.v1.PermitService.
type PermitServer struct {
	svc       *permit.Service
	ingestor  ingest.Ingestor
	templates TemplateLister
	logger    *slog.Logger
}

// NewPermitServer wires the server. ing may be nil, in which case
// IngestDirectory reports Unimplemented.
func NewPermitServer(svc *permit.Service, ing ingest.Ingestor, tpl TemplateLister, logger *slog.Logger) *PermitServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &PermitServer{svc: svc, ingestor: ing, templates: tpl, logger: logger}
}

func (s *PermitServer) CreateProject(ctx context.Context, req *CreateProjectRequest) (*ProjectResponse, error) {
	p, err := s.svc.CreateProject(ctx, permit.CreateProjectRequest{
		Name:         req.Name,
		Jurisdiction: req.Jurisdiction,
		Checklist:    req.Checklist,
	})
	if err != nil {
		return nil, err
	}
	return &ProjectResponse{Project: p}, nil
}

func (s *PermitServer) ListProjects(ctx context.Context, _ *Empty) (*ListProjectsResponse, error) {
	list, err := s.svc.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	return &ListProjectsResponse{Projects: list}, nil
}

func (s *PermitServer) GetProject(ctx context.Context, req *ProjectRequest) (*ProjectResponse, error) {
	p, err := s.svc.GetProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	return &ProjectResponse{Project: p}, nil
}

func (s *PermitServer) DeleteProject(ctx context.Context, req *ProjectRequest) (*DeleteResponse, error) {
	if err := s.svc.DeleteProject(ctx, req.ProjectID); err != nil {
		return nil, err
	}
	return &DeleteResponse{Deleted: true}, nil
}

func (s *PermitServer) AddCustomItem(ctx context.Context, req *AddCustomItemRequest) (*ItemResponse, error) {
	item, err := s.svc.AddCustomItem(ctx, permit.AddCustomItemRequest{
		ProjectID:       req.ProjectID,
		ID:              req.ID,
		Name:            req.Name,
		Required:        req.Required,
		FileTypes:       req.FileTypes,
		ValidationRules: req.ValidationRules,
	})
	if err != nil {
		return nil, err
	}
	return &ItemResponse{Item: item}, nil
}

func (s *PermitServer) RemoveCustomItem(ctx context.Context, req *ItemRequest) (*DeleteResponse, error) {
	if err := s.svc.RemoveCustomItem(ctx, req.ProjectID, req.ChecklistItemID); err != nil {
		return nil, err
	}
	return &DeleteResponse{Deleted: true}, nil
}

func (s *PermitServer) UploadDocument(ctx context.Context, req *UploadDocumentRequest) (*UploadDocumentResponse, error) {
	res, err := s.svc.UploadDocument(ctx, permit.UploadDocumentRequest{
		ProjectID:       req.ProjectID,
		ChecklistItemID: req.ChecklistItemID,
		Filename:        req.Filename,
		Data:            req.Data,
		SkipDuplicates:  req.SkipDuplicates,
	})
	if err != nil {
		return nil, err
	}
	return &UploadDocumentResponse{Document: res.Document, Validation: res.Validation, Deduplicated: res.Deduplicated}, nil
}

func (s *PermitServer) ListDocuments(ctx context.Context, req *ProjectRequest) (*ListDocumentsResponse, error) {
	docs, err := s.svc.ListDocuments(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	return &ListDocumentsResponse{Documents: docs}, nil
}

func (s *PermitServer) DeleteDocument(ctx context.Context, req *DocumentRequest) (*DeleteResponse, error) {
	if err := s.svc.DeleteDocument(ctx, req.DocumentID); err != nil {
		return nil, err
	}
	return &DeleteResponse{Deleted: true}, nil
}

func (s *PermitServer) GetValidation(ctx context.Context, req *ItemRequest) (*ValidationResponse, error) {
	v, err := s.svc.GetValidation(ctx, req.ProjectID, req.ChecklistItemID)
	if err != nil {
		return nil, err
	}
	return &ValidationResponse{Validation: v}, nil
}

func (s *PermitServer) DocumentValidation(ctx context.Context, req *DocumentRequest) (*ValidationResponse, error) {
	v, err := s.svc.DocumentValidation(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	return &ValidationResponse{Validation: v}, nil
}

func (s *PermitServer) ValidationHistory(ctx context.Context, req *DocumentRequest) (*ValidationHistoryResponse, error) {
	hist, err := s.svc.ValidationHistory(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	return &ValidationHistoryResponse{Validations: hist}, nil
}

func (s *PermitServer) RevalidateDocument(ctx context.Context, req *DocumentRequest) (*ValidationRecordResponse, error) {
	rec, err := s.svc.RevalidateDocument(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	return &ValidationRecordResponse{Validation: rec}, nil
}

func (s *PermitServer) RevalidateProject(ctx context.Context, req *ProjectRequest) (*RevalidateProjectResponse, error) {
	n, err := s.svc.RevalidateProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	return &RevalidateProjectResponse{Documents: n}, nil
}

func (s *PermitServer) DocumentSummary(ctx context.Context, req *DocumentRequest) (*DocumentSummaryResponse, error) {
	sum, err := s.svc.DocumentSummary(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	return &DocumentSummaryResponse{Summary: sum}, nil
}

func (s *PermitServer) Readiness(ctx context.Context, req *ProjectRequest) (*ReadinessResponse, error) {
	sum, err := s.svc.Readiness(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	return &ReadinessResponse{Readiness: sum}, nil
}

func (s *PermitServer) ExportReport(ctx context.Context, req *ProjectRequest) (*ExportReportResponse, error) {
	b, err := s.svc.ExportReport(ctx, req.ProjectID)
	if err != nil {
		s.logger.Error("export.xlsx.failed", "project_id", req.ProjectID, "err", err)
		return nil, err
	}
	return &ExportReportResponse{Xlsx: b}, nil
}

func (s *PermitServer) IngestDirectory(ctx context.Context, req *IngestDirectoryRequest) (*IngestDirectoryResponse, error) {
	if s.ingestor == nil {
		return nil, status.Error(codes.Unimplemented, "directory ingestion is not enabled")
	}
	pid := strings.TrimSpace(req.ProjectID)
	projectID, err := uuid.Parse(pid)
	if err != nil {
		s.logger.Error("invalid project_id format for ingest directory", "project_id", pid, "error", err)
		return nil, status.Error(codes.InvalidArgument, "project_id must be a UUID")
	}
	root := strings.TrimSpace(req.RootPath)
	if root == "" {
		s.logger.Error("ingest directory request missing root_path", "project_id", projectID)
		return nil, status.Error(codes.InvalidArgument, "root_path is required")
	}
	if _, err := s.svc.GetProject(ctx, pid); err != nil {
		return nil, err
	}

	skipHidden := true
	if req.SkipHidden != nil {
		skipHidden = *req.SkipHidden
	}

	s.logger.Info("starting directory ingest", "project_id", projectID, "root", root, "skip_hidden", skipHidden)
	results, stats, err := s.ingestor.IngestDirectory(ctx, projectID, root, skipHidden)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "ingest directory: %v", err)
	}

	out := &IngestDirectoryResponse{
		Scanned:      stats.Scanned,
		Matched:      stats.Matched,
		Succeeded:    stats.Succeeded,
		Deduplicated: stats.Deduplicated,
		Failed:       stats.Failed,
		Results:      make([]IngestFileResult, 0, len(results)),
	}
	for _, r := range results {
		out.Results = append(out.Results, IngestFileResult{
			SourcePath:      r.SourcePath,
			ChecklistItemID: r.ChecklistItemID,
			DocumentID:      r.DocumentID,
			Deduplicated:    r.Deduplicated,
			ContentHashHex:  r.HashHex,
			FileExt:         r.FileExt,
			Status:          string(r.Status),
			UploadedAt:      r.UploadedAt.UTC(),
			Error:           r.Err,
		})
	}
	return out, nil
}

func (s *PermitServer) ListTemplates(_ context.Context, _ *Empty) (*ListTemplatesResponse, error) {
	if s.templates == nil {
		return &ListTemplatesResponse{}, nil
	}
	return &ListTemplatesResponse{Templates: s.templates.List()}, nil
}
