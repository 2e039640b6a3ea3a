package ingest

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-readiness/constants"
	"github.com/joseph-ayodele/permit-readiness/internal/services/permit"
)

// FSIngestor reads from the local filesystem.
type FSIngestor struct {
	Uploader Uploader
	// SkipDuplicates reuses an existing document with the same bytes for the
	// item instead of recording another upload.
	SkipDuplicates bool
	logger         *slog.Logger
}

func NewFSIngestor(u Uploader, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{Uploader: u, SkipDuplicates: true, logger: logger}
}

func (i *FSIngestor) IngestPath(ctx context.Context, projectID uuid.UUID, itemID, path string) (IngestionResult, error) {
	out := IngestionResult{SourcePath: path, ChecklistItemID: itemID}

	abs, err := filepath.Abs(path)
	if err != nil {
		i.logger.Error("abs path error", "path", path, "error", err)
		return out, err
	}
	out.SourcePath = abs

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		i.logger.Warn("unsupported or missing extension", "path", abs, "ext", ext)
		return out, fmt.Errorf("unsupported or missing extension %q", ext)
	}
	out.FileExt = ext

	data, err := os.ReadFile(abs)
	if err != nil {
		i.logger.Error("read error", "path", abs, "error", err)
		return out, err
	}

	res, err := i.Uploader.UploadDocument(ctx, permit.UploadDocumentRequest{
		ProjectID:       projectID.String(),
		ChecklistItemID: itemID,
		Filename:        filepath.Base(abs),
		Data:            data,
		SkipDuplicates:  i.SkipDuplicates,
	})
	if err != nil {
		return out, err
	}

	out.DocumentID = res.Document.ID.String()
	out.Deduplicated = res.Deduplicated
	out.HashHex = hex.EncodeToString(res.Document.ContentHash)
	out.UploadedAt = res.Document.UploadedAt
	if res.Validation != nil {
		out.Status = res.Validation.Status
	}
	i.logger.Debug("file ingested", "path", abs, "item_id", itemID, "document_id", out.DocumentID, "deduplicated", out.Deduplicated, "status", out.Status)
	return out, nil
}

// IngestDirectory walks root, skips hidden entries if requested, and uploads
// each file found inside an item folder. Files directly in root count as
// failures. Returns per-file results + aggregate stats.
func (i *FSIngestor) IngestDirectory(
	ctx context.Context,
	projectID uuid.UUID,
	root string,
	skipHidden bool,
) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}
	root = filepath.Clean(root)

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		itemID, ok := itemFromPath(root, path)
		if !ok {
			results = append(results, IngestionResult{SourcePath: path, Err: "file is not inside a checklist item folder"})
			stats.Failed++
			return nil
		}

		r, err := i.IngestPath(ctx, projectID, itemID, path)
		if err != nil {
			r.Err = err.Error()
			results = append(results, r)
			stats.Failed++
			return nil
		}

		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
		}
		return nil
	})

	i.logger.Info("directory ingested", "project_id", projectID, "root", root,
		"scanned", stats.Scanned, "matched", stats.Matched, "succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated, "failed", stats.Failed)
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}
