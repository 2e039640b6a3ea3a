// Package ingest uploads documents from a local folder tree into a project.
// The first directory level below the root names the checklist item, so
// root/3/site-plan.pdf is uploaded for item "3".
package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-readiness/constants"
	"github.com/joseph-ayodele/permit-readiness/internal/services/permit"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath      string
	ChecklistItemID string
	DocumentID      string
	Deduplicated    bool
	HashHex         string
	FileExt         string
	Status          constants.ValidationStatus
	UploadedAt      time.Time
	Err             string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Uploader is the part of the permit service ingestion depends on.
type Uploader interface {
	UploadDocument(ctx context.Context, req permit.UploadDocumentRequest) (*permit.UploadResult, error)
}

// Ingestor is the behavior callers depend on.
type Ingestor interface {
	// IngestPath uploads a single file for a checklist item.
	IngestPath(ctx context.Context, projectID uuid.UUID, itemID, path string) (IngestionResult, error)
	// IngestDirectory uploads every matching file under root.
	IngestDirectory(ctx context.Context, projectID uuid.UUID, root string, skipHidden bool) ([]IngestionResult, DirStats, error)
}
