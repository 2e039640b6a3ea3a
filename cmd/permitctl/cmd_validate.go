package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/permit-readiness/constants"
	"github.com/joseph-ayodele/permit-readiness/internal/core/extract"
	"github.com/joseph-ayodele/permit-readiness/internal/core/pipeline"
	"github.com/joseph-ayodele/permit-readiness/internal/core/rules"
	"github.com/joseph-ayodele/permit-readiness/internal/entity"
	"github.com/joseph-ayodele/permit-readiness/internal/templates"
)

type validateOptions struct {
	jurisdiction string
	checklist    string
	item         string
	rulesFile    string
	concurrency  int
	maxPages     int
	strict       bool
}

type fileResult struct {
	File   string                     `json:"file"`
	Item   string                     `json:"item,omitempty"`
	Status constants.ValidationStatus `json:"status"`
	Notes  []string                   `json:"notes"`
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	opts := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate files against a checklist item's rules",
		Long: "Validate runs the same extraction and rule evaluation as an upload.\n" +
			"Rules come from --rules, or from --item in --checklist or the\n" +
			"--jurisdiction template. Non-PDF files pass without rule checks.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, root, opts, args)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.jurisdiction, "jurisdiction", "", "jurisdiction whose template holds --item")
	f.StringVar(&opts.checklist, "checklist", "", "checklist file (JSON or YAML) holding --item")
	f.StringVar(&opts.item, "item", "", "checklist item id")
	f.StringVar(&opts.rulesFile, "rules", "", "validation rules JSON file")
	f.IntVar(&opts.concurrency, "concurrency", 4, "files validated in parallel")
	f.IntVar(&opts.maxPages, "max-pages", 0, "cap text extraction at this many pages (0 = all)")
	f.BoolVar(&opts.strict, "strict", false, "exit non-zero when any file fails")
	cmd.MarkFlagsMutuallyExclusive("jurisdiction", "checklist", "rules")
	return cmd
}

func runValidate(cmd *cobra.Command, root *rootOptions, opts *validateOptions, files []string) error {
	logger := root.logger(cmd)
	item, err := resolveItem(opts, logger)
	if err != nil {
		return err
	}

	inputs := make([]pipeline.Input, len(files))
	for i, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		inputs[i] = pipeline.Input{
			Data:      data,
			MediaType: constants.MediaTypeForExt(filepath.Ext(path)),
			Item:      item,
		}
	}

	v := pipeline.NewValidator(extract.NewExtractor(extract.Config{MaxPages: opts.maxPages}, logger), logger)
	results, err := v.ValidateBatch(cmd.Context(), inputs, opts.concurrency)
	if err != nil {
		return err
	}

	out := make([]fileResult, len(files))
	failed := 0
	for i, r := range results {
		out[i] = fileResult{File: files[i], Item: item.ID, Status: r.Outcome.Status, Notes: r.Outcome.Notes}
		if r.Outcome.HasErrors() {
			failed++
		}
	}

	w := cmd.OutOrStdout()
	if root.jsonOut {
		if err := writeJSON(w, out); err != nil {
			return err
		}
	} else {
		for _, r := range out {
			printf(w, "%-8s %s\n", strings.ToUpper(string(r.Status)), r.File)
			for _, n := range r.Notes {
				printf(w, "         - %s\n", n)
			}
		}
	}
	if opts.strict && failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(files))
	}
	return nil
}

func resolveItem(opts *validateOptions, logger *slog.Logger) (entity.ChecklistItem, error) {
	switch {
	case opts.rulesFile != "":
		raw, err := os.ReadFile(opts.rulesFile)
		if err != nil {
			return entity.ChecklistItem{}, err
		}
		r, issues := rules.DecodeRule(raw)
		for _, issue := range issues {
			logger.Warn("ignored rule field", "file", opts.rulesFile, "issue", issue)
		}
		return entity.ChecklistItem{ID: opts.item, ValidationRules: &r}, nil

	case opts.checklist != "":
		cl, err := loadChecklist(opts.checklist)
		if err != nil {
			return entity.ChecklistItem{}, err
		}
		return findItem(cl, opts.item)

	case opts.jurisdiction != "":
		reg, err := templates.Load("", logger)
		if err != nil {
			return entity.ChecklistItem{}, err
		}
		tpl, ok := reg.Get(opts.jurisdiction)
		if !ok {
			return entity.ChecklistItem{}, fmt.Errorf("unknown jurisdiction %q (supported: %s)", opts.jurisdiction, strings.Join(constants.AsStringSlice(), "; "))
		}
		return findItem(tpl.Items, opts.item)

	default:
		return entity.ChecklistItem{}, errors.New("one of --rules, --checklist or --jurisdiction is required")
	}
}

func findItem(cl entity.Checklist, id string) (entity.ChecklistItem, error) {
	if id == "" {
		return entity.ChecklistItem{}, errors.New("--item is required with --checklist or --jurisdiction")
	}
	it, ok := cl.Find(id)
	if !ok {
		return entity.ChecklistItem{}, fmt.Errorf("checklist item %q not found", id)
	}
	return it, nil
}
