package permit

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-readiness/constants"
	"github.com/joseph-ayodele/permit-readiness/internal/async"
	"github.com/joseph-ayodele/permit-readiness/internal/common"
	"github.com/joseph-ayodele/permit-readiness/internal/core/extract"
	"github.com/joseph-ayodele/permit-readiness/internal/core/pipeline"
	"github.com/joseph-ayodele/permit-readiness/internal/entity"
	"github.com/joseph-ayodele/permit-readiness/internal/storage"
)

// UploadDocumentRequest represents one uploaded file for a checklist item.
type UploadDocumentRequest struct {
	ProjectID       string
	ChecklistItemID string
	Filename        string
	Data            []byte
	// SkipDuplicates returns the existing document when the same bytes were
	// already uploaded for the item.
	SkipDuplicates bool
}

// UploadResult is the stored document and its first validation outcome.
type UploadResult struct {
	Document     *entity.Document
	Validation   *entity.ValidationRecord
	Deduplicated bool
}

// UploadDocument stores the file, records it and validates it against the
// item's rules. Only PDFs are evaluated; other types pass through.
func (s *Service) UploadDocument(ctx context.Context, req UploadDocumentRequest) (*UploadResult, error) {
	projectID, err := parseID("project_id", req.ProjectID)
	if err != nil {
		return nil, err
	}
	filename := filepath.Base(strings.ReplaceAll(strings.TrimSpace(req.Filename), "\\", "/"))
	validator := common.NewValidator()
	validator.Field("checklist_item_id", req.ChecklistItemID, common.Required)
	validator.Field("filename", filename, common.Required, common.MaxLength(255), common.FileExtension)
	validator.Field("file", req.Data, common.Required)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}
	if s.maxUploadBytes > 0 && int64(len(req.Data)) > s.maxUploadBytes {
		return nil, common.InvalidArgumentErrorf("file exceeds %d bytes", s.maxUploadBytes)
	}

	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, s.toStatus(err, "project")
	}
	itemID := strings.TrimSpace(req.ChecklistItemID)
	item, ok := p.Checklist.Find(itemID)
	if !ok {
		return nil, common.NotFoundErrorf("checklist item %q not found", itemID)
	}

	sum := sha256.Sum256(req.Data)
	hash := sum[:]
	if req.SkipDuplicates {
		existing, err := s.documents.GetByProjectItemAndHash(ctx, projectID, itemID, hash)
		switch {
		case err == nil:
			s.logger.Info("skipping upload (duplicate)", "project_id", projectID, "item_id", itemID, "document_id", existing.ID)
			rec, err := s.validations.LatestForDocument(ctx, existing.ID)
			if err != nil && !errors.Is(err, common.ErrNotFound) {
				return nil, s.toStatus(err, "validation")
			}
			return &UploadResult{Document: existing, Validation: rec, Deduplicated: true}, nil
		case !errors.Is(err, common.ErrNotFound):
			return nil, s.toStatus(err, "document")
		}
	}

	ext := constants.NormalizeExt(filepath.Ext(filename))
	doc := &entity.Document{
		ID:              uuid.New(),
		ProjectID:       projectID,
		ChecklistItemID: itemID,
		Filename:        filename,
		ContentHash:     hash,
		FileExt:         ext,
		FileType:        constants.MapExtToFormat(ext),
		MediaType:       constants.MediaTypeForExt(ext),
		FileSize:        int64(len(req.Data)),
		UploadedAt:      s.now().UTC(),
	}
	doc.StorageKey = storage.DocumentKey(projectID, itemID, doc.ID, filename)

	if err := s.store.Put(ctx, doc.StorageKey, bytes.NewReader(req.Data), doc.FileSize, doc.MediaType); err != nil {
		return nil, s.toStatus(err, "store file")
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		if derr := s.store.Delete(ctx, doc.StorageKey); derr != nil {
			s.logger.Warn("failed to remove orphaned file", "key", doc.StorageKey, "error", derr)
		}
		return nil, s.toStatus(err, "create document")
	}

	rec, err := s.validateAndStore(ctx, doc, item, req.Data)
	if err != nil {
		s.discard(ctx, doc)
		return nil, err
	}
	s.logger.Info("document uploaded",
		"project_id", projectID,
		"item_id", itemID,
		"document_id", doc.ID,
		"file_type", doc.FileType,
		"status", rec.Status,
	)
	return &UploadResult{Document: doc, Validation: rec}, nil
}

// discard removes a document whose first outcome could not be stored, so a
// retry does not leave a second copy behind.
func (s *Service) discard(ctx context.Context, doc *entity.Document) {
	ctx = context.WithoutCancel(ctx)
	if err := s.documents.Delete(ctx, doc.ID); err != nil && !errors.Is(err, common.ErrNotFound) {
		s.logger.Error("failed to remove unvalidated document", "document_id", doc.ID, "error", err)
	}
	if err := s.store.Delete(ctx, doc.StorageKey); err != nil {
		s.logger.Warn("failed to remove orphaned file", "key", doc.StorageKey, "error", err)
	}
}

func (s *Service) validateAndStore(ctx context.Context, doc *entity.Document, item entity.ChecklistItem, data []byte) (*entity.ValidationRecord, error) {
	res := s.validator.Validate(pipeline.Input{Data: data, MediaType: doc.MediaType, Item: item})
	rec := &entity.ValidationRecord{
		ID:              uuid.New(),
		ProjectID:       doc.ProjectID,
		DocumentID:      doc.ID,
		ChecklistItemID: doc.ChecklistItemID,
		Status:          res.Outcome.Status,
		Notes:           res.Outcome.Notes,
		ValidatedAt:     res.Outcome.ValidatedAt.UTC(),
	}
	if len(res.Features.Warnings) > 0 {
		s.logger.Debug("extraction warnings", "document_id", doc.ID, "warnings", res.Features.Warnings)
	}
	if err := s.validations.Create(ctx, rec); err != nil {
		return nil, s.toStatus(err, "store validation")
	}
	return rec, nil
}

// RevalidateDocument re-runs validation with the item's current rules and
// appends a new outcome.
func (s *Service) RevalidateDocument(ctx context.Context, documentID string) (*entity.ValidationRecord, error) {
	id, err := parseID("document_id", documentID)
	if err != nil {
		return nil, err
	}
	return s.revalidate(ctx, id)
}

func (s *Service) revalidate(ctx context.Context, id uuid.UUID) (*entity.ValidationRecord, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, s.toStatus(err, "document")
	}
	p, err := s.projects.GetByID(ctx, doc.ProjectID)
	if err != nil {
		return nil, s.toStatus(err, "project")
	}
	item, ok := p.Checklist.Find(doc.ChecklistItemID)
	if !ok {
		return nil, common.NotFoundErrorf("checklist item %q no longer exists", doc.ChecklistItemID)
	}
	data, err := s.store.Get(ctx, doc.StorageKey)
	if err != nil {
		return nil, s.toStatus(err, "stored file")
	}
	rec, err := s.validateAndStore(ctx, doc, item, data)
	if err != nil {
		return nil, err
	}
	s.logger.Info("document revalidated", "document_id", id, "status", rec.Status)
	return rec, nil
}

// RevalidateProject queues every document of a project for revalidation, or
// revalidates them inline when no queue is attached. It returns how many
// documents were submitted.
func (s *Service) RevalidateProject(ctx context.Context, projectID string) (int, error) {
	id, err := parseID("project_id", projectID)
	if err != nil {
		return 0, err
	}
	if ok, err := s.projects.Exists(ctx, id); err != nil {
		return 0, s.toStatus(err, "project")
	} else if !ok {
		return 0, common.NotFoundErrorf("project not found")
	}
	docs, err := s.documents.ListByProject(ctx, id)
	if err != nil {
		return 0, s.toStatus(err, "list documents")
	}

	n := 0
	for _, d := range docs {
		if s.queue != nil {
			err = s.queue.Enqueue(ctx, async.Job{
				DocumentID:  d.ID,
				Reason:      "project revalidation",
				SubmittedAt: s.now(),
				TraceID:     common.RequestIDFromContext(ctx),
			})
		} else {
			_, err = s.revalidate(ctx, d.ID)
		}
		if err != nil {
			s.logger.Error("revalidation submit failed", "project_id", id, "document_id", d.ID, "error", err)
			return n, s.toStatus(err, "revalidate")
		}
		n++
	}
	return n, nil
}

// ValidationView is the latest outcome for an item or document. Status is
// no_validation when nothing has been stored yet.
type ValidationView struct {
	Status      constants.ValidationStatus `json:"status"`
	Notes       []string                   `json:"notes"`
	ValidatedAt *time.Time                 `json:"validatedAt,omitempty"`
	DocumentID  *uuid.UUID                 `json:"documentId,omitempty"`
}

func viewOf(rec *entity.ValidationRecord) ValidationView {
	at := rec.ValidatedAt
	docID := rec.DocumentID
	return ValidationView{Status: rec.Status, Notes: rec.Notes, ValidatedAt: &at, DocumentID: &docID}
}

func noValidation() ValidationView {
	return ValidationView{Status: constants.StatusNone, Notes: []string{"No validation performed"}}
}

// GetValidation returns the latest outcome recorded for a checklist item.
func (s *Service) GetValidation(ctx context.Context, projectID, itemID string) (ValidationView, error) {
	id, err := parseID("project_id", projectID)
	if err != nil {
		return ValidationView{}, err
	}
	if ok, err := s.projects.Exists(ctx, id); err != nil {
		return ValidationView{}, s.toStatus(err, "project")
	} else if !ok {
		return ValidationView{}, common.NotFoundErrorf("project not found")
	}
	rec, err := s.validations.LatestForItem(ctx, id, strings.TrimSpace(itemID))
	if errors.Is(err, common.ErrNotFound) {
		return noValidation(), nil
	}
	if err != nil {
		return ValidationView{}, s.toStatus(err, "validation")
	}
	return viewOf(rec), nil
}

// DocumentValidation returns the latest outcome of one document.
func (s *Service) DocumentValidation(ctx context.Context, documentID string) (ValidationView, error) {
	id, err := parseID("document_id", documentID)
	if err != nil {
		return ValidationView{}, err
	}
	if _, err := s.documents.GetByID(ctx, id); err != nil {
		return ValidationView{}, s.toStatus(err, "document")
	}
	rec, err := s.validations.LatestForDocument(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return noValidation(), nil
	}
	if err != nil {
		return ValidationView{}, s.toStatus(err, "validation")
	}
	return viewOf(rec), nil
}

// ValidationHistory lists every outcome of a document, newest first.
func (s *Service) ValidationHistory(ctx context.Context, documentID string) ([]*entity.ValidationRecord, error) {
	id, err := parseID("document_id", documentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.documents.GetByID(ctx, id); err != nil {
		return nil, s.toStatus(err, "document")
	}
	recs, err := s.validations.History(ctx, id)
	if err != nil {
		return nil, s.toStatus(err, "validation history")
	}
	return recs, nil
}

// ListDocuments returns a project's documents in upload order.
func (s *Service) ListDocuments(ctx context.Context, projectID string) ([]*entity.Document, error) {
	id, err := parseID("project_id", projectID)
	if err != nil {
		return nil, err
	}
	if ok, err := s.projects.Exists(ctx, id); err != nil {
		return nil, s.toStatus(err, "project")
	} else if !ok {
		return nil, common.NotFoundErrorf("project not found")
	}
	docs, err := s.documents.ListByProject(ctx, id)
	if err != nil {
		return nil, s.toStatus(err, "list documents")
	}
	return docs, nil
}

// DocumentSummary extracts page, text and signal statistics from a PDF.
func (s *Service) DocumentSummary(ctx context.Context, documentID string) (extract.Summary, error) {
	id, err := parseID("document_id", documentID)
	if err != nil {
		return extract.Summary{}, err
	}
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return extract.Summary{}, s.toStatus(err, "document")
	}
	if !constants.IsPDFMediaType(doc.MediaType) {
		return extract.Summary{}, common.InvalidArgumentError("only PDF files can be summarized")
	}
	data, err := s.store.Get(ctx, doc.StorageKey)
	if err != nil {
		return extract.Summary{}, s.toStatus(err, "stored file")
	}
	return extract.Summarize(s.extractor.Extract(data, doc.MediaType)), nil
}

// DeleteDocument removes a document, its outcomes and the stored file.
func (s *Service) DeleteDocument(ctx context.Context, documentID string) error {
	id, err := parseID("document_id", documentID)
	if err != nil {
		return err
	}
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return s.toStatus(err, "document")
	}
	if err := s.documents.Delete(ctx, id); err != nil {
		return s.toStatus(err, "document")
	}
	if err := s.store.Delete(ctx, doc.StorageKey); err != nil {
		s.logger.Warn("failed to delete stored file", "document_id", id, "key", doc.StorageKey, "error", err)
	}
	s.logger.Info("document deleted", "document_id", id, "project_id", doc.ProjectID)
	return nil
}
