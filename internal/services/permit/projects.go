package permit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-readiness/constants"
	"github.com/joseph-ayodele/permit-readiness/internal/common"
	"github.com/joseph-ayodele/permit-readiness/internal/core/readiness"
	"github.com/joseph-ayodele/permit-readiness/internal/core/rules"
	"github.com/joseph-ayodele/permit-readiness/internal/entity"
)

const maxNameLength = 200

// CreateProjectRequest represents project creation parameters.
type CreateProjectRequest struct {
	Name         string
	Jurisdiction string
	// Checklist replaces the jurisdiction template when non-nil.
	Checklist entity.Checklist
}

// CreateProject creates a project with the jurisdiction's checklist.
func (s *Service) CreateProject(ctx context.Context, req CreateProjectRequest) (*entity.Project, error) {
	validator := common.NewValidator()
	validator.Field("name", req.Name, common.Required, common.MaxLength(maxNameLength))
	validator.Field("jurisdiction", req.Jurisdiction, common.Required, common.Jurisdiction)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}
	j, _ := constants.Canonicalize(req.Jurisdiction)

	var checklist entity.Checklist
	if req.Checklist != nil {
		if err := checkItems(req.Checklist); err != nil {
			return nil, err
		}
		checklist = req.Checklist.Clone()
	} else {
		tpl, ok := s.templates.Get(string(j))
		if !ok {
			return nil, common.InvalidArgumentErrorf("no checklist template for %q", j)
		}
		checklist = tpl.Items
	}

	now := s.now().UTC()
	p := &entity.Project{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Jurisdiction: string(j),
		Checklist:    checklist,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, s.toStatus(err, "create project")
	}

	s.logger.Info("project created successfully", "project_id", p.ID, "jurisdiction", p.Jurisdiction, "items", len(p.Checklist))
	return p, nil
}

func checkItems(cl entity.Checklist) error {
	seen := make(map[string]struct{}, len(cl))
	for i, it := range cl {
		id := strings.TrimSpace(it.ID)
		if id == "" {
			return common.InvalidArgumentErrorf("checklist item %d: id is required", i)
		}
		if strings.TrimSpace(it.Name) == "" {
			return common.InvalidArgumentErrorf("checklist item %q: name is required", id)
		}
		if _, dup := seen[id]; dup {
			return common.InvalidArgumentErrorf("checklist item %q appears twice", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ListProjects returns every project with its completion, newest first.
func (s *Service) ListProjects(ctx context.Context) ([]entity.ProjectSummary, error) {
	list, err := s.projects.List(ctx)
	if err != nil {
		return nil, s.toStatus(err, "list projects")
	}
	out := make([]entity.ProjectSummary, 0, len(list))
	for _, p := range list {
		docs, err := s.documents.ListByProject(ctx, p.ID)
		if err != nil {
			return nil, s.toStatus(err, "list documents")
		}
		sum := readiness.Aggregate(p.Checklist, itemIDs(docs))
		out = append(out, entity.ProjectSummary{
			ID:                   p.ID,
			Name:                 p.Name,
			Jurisdiction:         p.Jurisdiction,
			CreatedAt:            p.CreatedAt,
			DocumentCount:        len(docs),
			CompletionPercentage: sum.CompletionPercentage,
		})
	}
	return out, nil
}

// GetProject returns a project with its checklist.
func (s *Service) GetProject(ctx context.Context, projectID string) (*entity.Project, error) {
	id, err := parseID("project_id", projectID)
	if err != nil {
		return nil, err
	}
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, s.toStatus(err, "project")
	}
	return p, nil
}

// DeleteProject removes a project, its documents, their outcomes and the
// stored files.
func (s *Service) DeleteProject(ctx context.Context, projectID string) error {
	id, err := parseID("project_id", projectID)
	if err != nil {
		return err
	}
	docs, err := s.documents.ListByProject(ctx, id)
	if err != nil {
		return s.toStatus(err, "list documents")
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return s.toStatus(err, "project")
	}
	for _, d := range docs {
		if err := s.store.Delete(ctx, d.StorageKey); err != nil {
			s.logger.Warn("failed to delete stored file", "project_id", id, "key", d.StorageKey, "error", err)
		}
	}
	s.logger.Info("project deleted", "project_id", id, "documents", len(docs))
	return nil
}

// AddCustomItemRequest represents a user-defined checklist item.
type AddCustomItemRequest struct {
	ProjectID       string
	ID              string
	Name            string
	Required        bool
	FileTypes       string
	ValidationRules *rules.Rule
}

// AddCustomItem appends a custom item to the project's checklist. A caller id
// is kept when it is free; otherwise one is generated.
func (s *Service) AddCustomItem(ctx context.Context, req AddCustomItemRequest) (entity.ChecklistItem, error) {
	id, err := parseID("project_id", req.ProjectID)
	if err != nil {
		return entity.ChecklistItem{}, err
	}
	validator := common.NewValidator()
	validator.Field("name", req.Name, common.Required, common.MaxLength(maxNameLength))
	if err := common.ValidateAndReturnError(validator); err != nil {
		return entity.ChecklistItem{}, err
	}

	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return entity.ChecklistItem{}, s.toStatus(err, "project")
	}

	item := entity.ChecklistItem{
		ID:        strings.TrimSpace(req.ID),
		Name:      strings.TrimSpace(req.Name),
		Required:  req.Required,
		Custom:    true,
		FileTypes: strings.TrimSpace(req.FileTypes),
	}
	if req.ValidationRules != nil {
		r := req.ValidationRules.Clone()
		item.ValidationRules = &r
	}
	if _, taken := p.Checklist.Find(item.ID); item.ID == "" || taken {
		item.ID = newCustomID(p.Checklist)
	}

	checklist := append(p.Checklist.Clone(), item)
	if err := s.projects.UpdateChecklist(ctx, id, checklist, s.now()); err != nil {
		return entity.ChecklistItem{}, s.toStatus(err, "project")
	}
	s.logger.Info("custom item added", "project_id", id, "item_id", item.ID, "required", item.Required)
	return item, nil
}

func newCustomID(cl entity.Checklist) string {
	for {
		var b [4]byte
		_, _ = rand.Read(b[:])
		id := "custom-" + hex.EncodeToString(b[:])
		if _, taken := cl.Find(id); !taken {
			return id
		}
	}
}

// RemoveCustomItem drops a custom item. Jurisdiction items cannot be removed
// and report NotFound. Documents uploaded for the item are kept.
func (s *Service) RemoveCustomItem(ctx context.Context, projectID, itemID string) error {
	id, err := parseID("project_id", projectID)
	if err != nil {
		return err
	}
	itemID = strings.TrimSpace(itemID)
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return s.toStatus(err, "project")
	}

	checklist := make(entity.Checklist, 0, len(p.Checklist))
	for _, it := range p.Checklist {
		if it.ID == itemID && it.Custom {
			continue
		}
		checklist = append(checklist, it)
	}
	if len(checklist) == len(p.Checklist) {
		return common.NotFoundErrorf("custom item %q not found", itemID)
	}
	if err := s.projects.UpdateChecklist(ctx, id, checklist, s.now()); err != nil {
		return s.toStatus(err, "project")
	}
	s.logger.Info("custom item removed", "project_id", id, "item_id", itemID)
	return nil
}

// Readiness computes the project's readiness summary.
func (s *Service) Readiness(ctx context.Context, projectID string) (readiness.Summary, error) {
	id, err := parseID("project_id", projectID)
	if err != nil {
		return readiness.Summary{}, err
	}
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return readiness.Summary{}, s.toStatus(err, "project")
	}
	docs, err := s.documents.ListByProject(ctx, id)
	if err != nil {
		return readiness.Summary{}, s.toStatus(err, "list documents")
	}
	sum := readiness.Aggregate(p.Checklist, itemIDs(docs))
	s.logger.Debug("readiness computed", "project_id", id, "completion", sum.CompletionPercentage, "ready", sum.Ready)
	return sum, nil
}

// ExportReport renders the readiness report workbook.
func (s *Service) ExportReport(ctx context.Context, projectID string) ([]byte, error) {
	id, err := parseID("project_id", projectID)
	if err != nil {
		return nil, err
	}
	b, err := s.exporter.ExportReadinessXLSX(ctx, id)
	if err != nil {
		return nil, s.toStatus(err, "project")
	}
	return b, nil
}

func itemIDs(docs []*entity.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ChecklistItemID
	}
	return out
}
