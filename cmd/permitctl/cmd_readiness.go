package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/permit-readiness/internal/core/readiness"
	"github.com/joseph-ayodele/permit-readiness/internal/entity"
	"github.com/joseph-ayodele/permit-readiness/internal/export"
	"github.com/joseph-ayodele/permit-readiness/internal/templates"
)

type readinessOptions struct {
	checklist    string
	jurisdiction string
	uploaded     []string
}

func newReadinessCmd(root *rootOptions) *cobra.Command {
	opts := &readinessOptions{}
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Compute completion for a checklist and the item ids with uploads",
		Long: "Readiness counts required items with at least one upload. Repeat an\n" +
			"id in --uploaded once per document; repeats are reported as duplicates.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cl entity.Checklist
			switch {
			case opts.checklist != "":
				var err error
				if cl, err = loadChecklist(opts.checklist); err != nil {
					return err
				}
			case opts.jurisdiction != "":
				reg, err := templates.Load("", root.logger(cmd))
				if err != nil {
					return err
				}
				tpl, ok := reg.Get(opts.jurisdiction)
				if !ok {
					return errors.New("unknown jurisdiction " + opts.jurisdiction)
				}
				cl = tpl.Items
			default:
				return errors.New("one of --checklist or --jurisdiction is required")
			}

			var ids []string
			for _, id := range opts.uploaded {
				if id = strings.TrimSpace(id); id != "" {
					ids = append(ids, id)
				}
			}
			sum := readiness.Aggregate(cl, ids)

			w := cmd.OutOrStdout()
			if root.jsonOut {
				return writeJSON(w, sum)
			}
			status := export.LabelNotReady
			if sum.Ready {
				status = export.LabelReady
			}
			printf(w, "%s: %d%% (%d of %d required items, %d optional uploaded)\n",
				status, sum.CompletionPercentage, sum.UploadedRequiredCount, sum.RequiredCount, sum.OptionalUploadedCount)
			for _, it := range sum.MissingRequired {
				printf(w, "  missing %s: %s\n", it.ID, it.Name)
			}
			for _, d := range sum.DuplicateUploads {
				printf(w, "  duplicate %s: %d documents\n", d.ChecklistItemID, d.Count)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.checklist, "checklist", "", "checklist file (JSON or YAML)")
	f.StringVar(&opts.jurisdiction, "jurisdiction", "", "use this jurisdiction's template")
	f.StringSliceVar(&opts.uploaded, "uploaded", nil, "checklist item ids with an uploaded document")
	cmd.MarkFlagsMutuallyExclusive("checklist", "jurisdiction")
	return cmd
}
