// Package permit orchestrates projects, uploads and validation on top of the
// repositories, blob storage and the validation engine.
package permit

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/permit-readiness/internal/async"
	"github.com/joseph-ayodele/permit-readiness/internal/common"
	"github.com/joseph-ayodele/permit-readiness/internal/core/extract"
	"github.com/joseph-ayodele/permit-readiness/internal/core/pipeline"
	"github.com/joseph-ayodele/permit-readiness/internal/export"
	"github.com/joseph-ayodele/permit-readiness/internal/repository"
	"github.com/joseph-ayodele/permit-readiness/internal/storage"
	"github.com/joseph-ayodele/permit-readiness/internal/templates"
)

// TemplateSource resolves a jurisdiction to its checklist template.
type TemplateSource interface {
	Get(jurisdiction string) (templates.Template, bool)
}

// Deps are the collaborators the service needs.
type Deps struct {
	Projects    repository.ProjectRepository
	Documents   repository.DocumentRepository
	Validations repository.ValidationRepository
	Store       storage.Store
	Templates   TemplateSource
	Extractor   *extract.Extractor
	Exporter    *export.Service
}

// Service handles project, document and validation business logic.
type Service struct {
	projects    repository.ProjectRepository
	documents   repository.DocumentRepository
	validations repository.ValidationRepository
	store       storage.Store
	templates   TemplateSource
	extractor   *extract.Extractor
	validator   *pipeline.Validator
	exporter    *export.Service
	queue       async.Queue
	logger      *slog.Logger

	now            func() time.Time
	maxUploadBytes int64
}

type Option func(*Service)

// WithClock overrides the time source for created records.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxUploadBytes caps document size; 0 disables the cap.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) { s.maxUploadBytes = n }
}

// NewService creates a new permit service.
func NewService(deps Deps, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		projects:    deps.Projects,
		documents:   deps.Documents,
		validations: deps.Validations,
		store:       deps.Store,
		templates:   deps.Templates,
		extractor:   deps.Extractor,
		exporter:    deps.Exporter,
		logger:      logger,
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.extractor == nil {
		s.extractor = extract.NewExtractor(extract.Config{}, logger)
	}
	if s.exporter == nil {
		s.exporter = export.NewService(s.projects, s.documents, s.validations, logger)
	}
	s.validator = pipeline.NewValidator(s.extractor, logger, pipeline.WithClock(s.now))
	return s
}

// SetQueue attaches the revalidation queue. It is set after construction
// because the queue's workers call back into the service.
func (s *Service) SetQueue(q async.Queue) {
	s.queue = q
}

// Revalidator adapts the service for the revalidation queue workers.
func (s *Service) Revalidator() async.Revalidator {
	return async.RevalidatorFunc(func(ctx context.Context, documentID uuid.UUID) error {
		_, err := s.revalidate(ctx, documentID)
		return err
	})
}

func parseID(field, raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	validator := common.NewValidator()
	validator.Field(field, raw, common.UUID)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(raw)
}

// toStatus maps repository and storage errors to gRPC status errors.
func (s *Service) toStatus(err error, what string) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, common.ErrNotFound):
		return common.NotFoundErrorf("%s not found", what)
	case errors.Is(err, common.ErrInvalidInput):
		return common.InvalidArgumentErrorf("%s: %v", what, err)
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return common.InternalErrorf("%s: %v", what, err)
	}
}
