package async

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job asks for one document to be validated again, e.g. after its
// checklist item's rules changed.
type Job struct {
	DocumentID  uuid.UUID
	Reason      string
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Revalidator is what a worker calls for each job.
type Revalidator interface {
	RevalidateDocument(ctx context.Context, documentID uuid.UUID) error
}

// RevalidatorFunc adapts a function to Revalidator.
type RevalidatorFunc func(ctx context.Context, documentID uuid.UUID) error

func (f RevalidatorFunc) RevalidateDocument(ctx context.Context, documentID uuid.UUID) error {
	return f(ctx, documentID)
}
