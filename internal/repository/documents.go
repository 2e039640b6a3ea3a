package repository

import (
	"context"
	"fmt"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-readiness/internal/common"
	"github.com/joseph-ayodele/permit-readiness/internal/entity"
)

var documentColumns = []string{
	"id", "project_id", "checklist_item_id", "filename", "storage_key", "content_hash",
	"file_ext", "file_type", "media_type", "file_size", "uploaded_at",
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*entity.Document, error)
	GetByProjectItemAndHash(ctx context.Context, projectID uuid.UUID, itemID string, hash []byte) (*entity.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewDocumentRepository(db *DB, logger *slog.Logger) DocumentRepository {
	return &documentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *documentRepository) Create(ctx context.Context, doc *entity.Document) error {
	q, args := r.db.builder().Insert(tableDocuments).
		Columns(documentColumns...).
		Values(doc.ID, doc.ProjectID, doc.ChecklistItemID, doc.Filename, doc.StorageKey, doc.ContentHash,
			doc.FileExt, doc.FileType, doc.MediaType, doc.FileSize, doc.UploadedAt.UTC()).
		Query()
	if _, err := exec(ctx, r.db.drv, q, args); err != nil {
		r.logger.Error("failed to create document", "project_id", doc.ProjectID, "item_id", doc.ChecklistItemID, "filename", doc.Filename, "error", err)
		return common.WrapError(err, "create document")
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	b := r.db.builder()
	q, args := b.Select(documentColumns...).
		From(b.Table(tableDocuments)).
		Where(entsql.EQ("id", id)).
		Query()
	docs, err := r.list(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to get document", "document_id", id, "error", err)
		return nil, common.WrapError(err, "get document")
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	return docs[0], nil
}

// ListByProject returns a project's documents in upload order.
func (r *documentRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*entity.Document, error) {
	b := r.db.builder()
	q, args := b.Select(documentColumns...).
		From(b.Table(tableDocuments)).
		Where(entsql.EQ("project_id", projectID)).
		OrderBy("uploaded_at").
		Query()
	docs, err := r.list(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to list documents", "project_id", projectID, "error", err)
		return nil, common.WrapError(err, "list documents")
	}
	return docs, nil
}

func (r *documentRepository) GetByProjectItemAndHash(ctx context.Context, projectID uuid.UUID, itemID string, hash []byte) (*entity.Document, error) {
	b := r.db.builder()
	q, args := b.Select(documentColumns...).
		From(b.Table(tableDocuments)).
		Where(entsql.And(
			entsql.EQ("project_id", projectID),
			entsql.EQ("checklist_item_id", itemID),
			entsql.EQ("content_hash", hash),
		)).
		Limit(1).
		Query()
	docs, err := r.list(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to get document by hash", "project_id", projectID, "item_id", itemID, "error", err)
		return nil, common.WrapError(err, "get document by hash")
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("document with hash %x: %w", hash, common.ErrNotFound)
	}
	return docs[0], nil
}

// Delete removes the document and its validation history.
func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	b := r.db.builder()
	var deleted int64
	err := r.db.withTx(ctx, func(tx dialect.Tx) error {
		q, args := b.Delete(tableValidations).Where(entsql.EQ("document_id", id)).Query()
		if _, err := exec(ctx, tx, q, args); err != nil {
			return err
		}
		q, args = b.Delete(tableDocuments).Where(entsql.EQ("id", id)).Query()
		n, err := exec(ctx, tx, q, args)
		deleted = n
		return err
	})
	if err != nil {
		r.logger.Error("failed to delete document", "document_id", id, "error", err)
		return common.WrapError(err, "delete document")
	}
	if deleted == 0 {
		return fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *documentRepository) list(ctx context.Context, q string, args []any) ([]*entity.Document, error) {
	var out []*entity.Document
	err := query(ctx, r.db.drv, q, args, func(rs rowScanner) error {
		var d entity.Document
		if err := rs.Scan(&d.ID, &d.ProjectID, &d.ChecklistItemID, &d.Filename, &d.StorageKey, &d.ContentHash,
			&d.FileExt, &d.FileType, &d.MediaType, &d.FileSize, &d.UploadedAt); err != nil {
			return err
		}
		out = append(out, &d)
		return nil
	})
	return out, err
}
