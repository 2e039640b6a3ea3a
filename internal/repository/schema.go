package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableProjects    = "projects"
	tableDocuments   = "documents"
	tableValidations = "validation_results"

	textSize = 2147483647
)

var (
	// ProjectsColumns holds the columns for the "projects" table.
	ProjectsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString, Size: 200},
		{Name: "jurisdiction", Type: field.TypeString, Size: 100},
		{Name: "checklist", Type: field.TypeString, Size: textSize},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ProjectsTable holds the schema information for the "projects" table.
	ProjectsTable = &schema.Table{
		Name:       tableProjects,
		Columns:    ProjectsColumns,
		PrimaryKey: []*schema.Column{ProjectsColumns[0]},
	}

	// DocumentsColumns holds the columns for the "documents" table.
	DocumentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "checklist_item_id", Type: field.TypeString, Size: 100},
		{Name: "filename", Type: field.TypeString, Size: 255},
		{Name: "storage_key", Type: field.TypeString, Size: 512},
		{Name: "content_hash", Type: field.TypeBytes},
		{Name: "file_ext", Type: field.TypeString, Size: 16},
		{Name: "file_type", Type: field.TypeString, Size: 16},
		{Name: "media_type", Type: field.TypeString, Size: 128},
		{Name: "file_size", Type: field.TypeInt64},
		{Name: "uploaded_at", Type: field.TypeTime},
		{Name: "project_id", Type: field.TypeUUID},
	}
	// DocumentsTable holds the schema information for the "documents" table.
	DocumentsTable = &schema.Table{
		Name:       tableDocuments,
		Columns:    DocumentsColumns,
		PrimaryKey: []*schema.Column{DocumentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "documents_projects_documents",
				Columns:    []*schema.Column{DocumentsColumns[10]},
				RefColumns: []*schema.Column{ProjectsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "document_project_id_checklist_item_id",
				Unique:  false,
				Columns: []*schema.Column{DocumentsColumns[10], DocumentsColumns[1]},
			},
			{
				Name:    "document_project_id_content_hash",
				Unique:  false,
				Columns: []*schema.Column{DocumentsColumns[10], DocumentsColumns[4]},
			},
		},
	}

	// ValidationResultsColumns holds the columns for the "validation_results" table.
	ValidationResultsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "checklist_item_id", Type: field.TypeString, Size: 100},
		{Name: "status", Type: field.TypeString, Size: 16},
		{Name: "notes", Type: field.TypeString, Size: textSize},
		{Name: "validated_at", Type: field.TypeTime},
		{Name: "project_id", Type: field.TypeUUID},
		{Name: "document_id", Type: field.TypeUUID},
	}
	// ValidationResultsTable holds the schema information for the "validation_results" table.
	ValidationResultsTable = &schema.Table{
		Name:       tableValidations,
		Columns:    ValidationResultsColumns,
		PrimaryKey: []*schema.Column{ValidationResultsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "validation_results_projects_validations",
				Columns:    []*schema.Column{ValidationResultsColumns[5]},
				RefColumns: []*schema.Column{ProjectsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "validation_results_documents_validations",
				Columns:    []*schema.Column{ValidationResultsColumns[6]},
				RefColumns: []*schema.Column{DocumentsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "validationresult_document_id_validated_at",
				Unique:  false,
				Columns: []*schema.Column{ValidationResultsColumns[6], ValidationResultsColumns[4]},
			},
			{
				Name:    "validationresult_project_id_checklist_item_id",
				Unique:  false,
				Columns: []*schema.Column{ValidationResultsColumns[5], ValidationResultsColumns[1]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		ProjectsTable,
		DocumentsTable,
		ValidationResultsTable,
	}
)

func init() {
	DocumentsTable.ForeignKeys[0].RefTable = ProjectsTable
	ValidationResultsTable.ForeignKeys[0].RefTable = ProjectsTable
	ValidationResultsTable.ForeignKeys[1].RefTable = DocumentsTable
}

// Migrate creates missing tables, columns and indexes. It never drops anything.
func (d *DB) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(d.drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		d.logger.Error("schema migration failed", "error", err)
		return fmt.Errorf("migrate schema: %w", err)
	}
	d.logger.Info("schema migration complete", "tables", len(Tables))
	return nil
}
