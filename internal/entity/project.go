package entity

import (
	"time"

	"github.com/google/uuid"
)

// Project is one permit application and its checklist.
type Project struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Jurisdiction string    `json:"jurisdiction"`
	Checklist    Checklist `json:"checklist"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProjectSummary is a project row in listings.
type ProjectSummary struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Jurisdiction         string    `json:"jurisdiction"`
	CreatedAt            time.Time `json:"created_at"`
	DocumentCount        int       `json:"document_count"`
	CompletionPercentage int       `json:"completion_percentage"`
}
