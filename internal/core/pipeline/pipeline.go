package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/permit-readiness/constants"
	"github.com/joseph-ayodele/permit-readiness/internal/core/extract"
	"github.com/joseph-ayodele/permit-readiness/internal/core/rules"
	"github.com/joseph-ayodele/permit-readiness/internal/entity"
)

// Input is one document to check against one checklist item.
type Input struct {
	Data      []byte
	MediaType string
	Item      entity.ChecklistItem
}

// Result carries the outcome and the features it was computed from.
type Result struct {
	Outcome  rules.Outcome
	Features extract.Features
	// Bypassed is set when the media type is not extractable and no rule ran.
	Bypassed bool
}

// Validator coordinates extraction then rule evaluation.
type Validator struct {
	logger    *slog.Logger
	extractor *extract.Extractor
	now       func() time.Time
}

type Option func(*Validator)

// WithClock overrides the time source used to stamp outcomes.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

func NewValidator(extractor *extract.Extractor, logger *slog.Logger, opts ...Option) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	if extractor == nil {
		extractor = extract.NewExtractor(extract.Config{}, logger)
	}
	v := &Validator{logger: logger, extractor: extractor, now: time.Now}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Validate runs extract -> evaluate for PDFs. Other media types are not
// evaluated and get the pass-through outcome.
func (v *Validator) Validate(in Input) Result {
	if !constants.IsPDFMediaType(in.MediaType) {
		v.logger.Debug("pipeline.validate.bypass", "item_id", in.Item.ID, "media_type", in.MediaType)
		return Result{Outcome: rules.Bypass(v.now()), Bypassed: true}
	}

	rule := in.Item.Rule()
	f := v.extractor.Extract(in.Data, in.MediaType, extract.WithKeywords(rule.RequiredKeywords, rule.CaseSensitiveKeywords))
	out := rules.Evaluate(f, rule, v.now())

	v.logger.Debug("pipeline.validate.ok",
		"item_id", in.Item.ID,
		"status", out.Status,
		"pages", f.Pages,
		"notes", len(out.Notes),
	)
	return Result{Outcome: out, Features: f}
}

// ValidateBatch validates inputs concurrently with at most limit workers
// (limit <= 0 means unbounded). results[i] always belongs to inputs[i].
// Only cancellation of ctx produces an error.
func (v *Validator) ValidateBatch(ctx context.Context, inputs []Input, limit int) ([]Result, error) {
	results := make([]Result, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range inputs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = v.Validate(inputs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		v.logger.Warn("pipeline.batch.cancelled", "inputs", len(inputs), "err", err)
		return nil, err
	}
	return results, nil
}
