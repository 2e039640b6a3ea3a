package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-readiness/constants"
)

// ValidationRecord is a stored outcome. Re-validating appends a new record;
// the latest one is shown.
type ValidationRecord struct {
	ID              uuid.UUID                  `json:"id"`
	ProjectID       uuid.UUID                  `json:"project_id"`
	DocumentID      uuid.UUID                  `json:"document_id"`
	ChecklistItemID string                     `json:"checklist_item_id"`
	Status          constants.ValidationStatus `json:"status"`
	Notes           []string                   `json:"notes"`
	ValidatedAt     time.Time                  `json:"validated_at"`
}
