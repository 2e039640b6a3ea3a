package extract

import (
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/permit-readiness/constants"
)

// Features is everything the rule evaluator may look at for one document.
// It is never persisted on its own.
type Features struct {
	Text         string
	Pages        int
	Keywords     map[string]bool
	HasSignature bool
	HasSeal      bool
	CharCount    int
	Method       string // "pdf-text" | "none"
	Warnings     []string

	// KeywordsCaseSensitive records the match mode Keywords was built with.
	KeywordsCaseSensitive bool
}

// Empty reports whether no usable text was recovered.
// Whitespace-only text counts as empty.
func (f Features) Empty() bool {
	return strings.TrimSpace(f.Text) == ""
}

type Config struct {
	// MaxPages caps text extraction; 0 means no limit. The page count is never capped.
	MaxPages int
}

type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxPages < 0 {
		cfg.MaxPages = 0
	}
	return &Extractor{cfg: cfg, logger: logger}
}

type options struct {
	keywords      []string
	caseSensitive bool
}

type Option func(*options)

// WithKeywords asks Extract to fill the per-keyword presence map.
func WithKeywords(keywords []string, caseSensitive bool) Option {
	return func(o *options) {
		o.keywords = keywords
		o.caseSensitive = caseSensitive
	}
}

// Extract never fails: unreadable input yields empty text and whatever page
// count the raw probe could recover.
func (e *Extractor) Extract(data []byte, mediaType string, opts ...Option) Features {
	start := time.Now()
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var f Features
	if constants.IsPDFMediaType(mediaType) {
		doc := readPDF(data, e.cfg.MaxPages)
		f.Text = doc.text
		f.Pages = doc.pages
		f.Warnings = doc.warnings
		f.Method = "pdf-text"
	} else {
		f.Method = "none"
		f.Warnings = []string{"unsupported media type: " + mediaType}
	}

	f.CharCount = utf8.RuneCountInString(f.Text)
	f.Keywords = KeywordPresence(f.Text, o.keywords, o.caseSensitive)
	f.KeywordsCaseSensitive = o.caseSensitive
	f.HasSignature = HasSignature(f.Text)
	f.HasSeal = HasProfessionalSeal(f.Text)

	e.logger.Debug("extract.done",
		"media_type", mediaType,
		"bytes", len(data),
		"pages", f.Pages,
		"chars", f.CharCount,
		"warnings", len(f.Warnings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return f
}

var defaultExtractor = NewExtractor(Config{}, nil)

// Extract runs the default extractor.
func Extract(data []byte, mediaType string, opts ...Option) Features {
	return defaultExtractor.Extract(data, mediaType, opts...)
}
