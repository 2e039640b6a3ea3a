package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded file attached to one checklist item of a project.
type Document struct {
	ID              uuid.UUID `json:"id"`
	ProjectID       uuid.UUID `json:"project_id"`
	ChecklistItemID string    `json:"checklist_item_id"`
	Filename        string    `json:"filename"`
	StorageKey      string    `json:"storage_key"`
	ContentHash     []byte    `json:"content_hash"`
	FileExt         string    `json:"file_ext"`
	FileType        string    `json:"file_type"`
	MediaType       string    `json:"media_type"`
	FileSize        int64     `json:"file_size"`
	UploadedAt      time.Time `json:"uploaded_at"`
}
