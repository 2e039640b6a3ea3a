package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/permit-readiness/internal/templates"
)

func newTemplatesCmd(root *rootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "templates [jurisdiction]",
		Short: "List jurisdictions, or the checklist items of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := templates.Load(dir, root.logger(cmd))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if len(args) == 0 {
				list := reg.List()
				if root.jsonOut {
					return writeJSON(w, list)
				}
				for _, t := range list {
					printf(w, "%-20s %2d items  %d required\n", t.Jurisdiction, len(t.Items), len(t.Items.Required()))
				}
				return nil
			}

			t, ok := reg.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown jurisdiction %q", args[0])
			}
			if root.jsonOut {
				return writeJSON(w, t)
			}
			printf(w, "%s\n", t.Jurisdiction)
			if t.Description != "" {
				printf(w, "%s\n", t.Description)
			}
			for _, it := range t.Items {
				req := "optional"
				if it.Required {
					req = "required"
				}
				var checks []string
				if r := it.Rule(); !r.IsEmpty() {
					if r.MinPages != nil {
						checks = append(checks, fmt.Sprintf("min %d pages", *r.MinPages))
					}
					if len(r.RequiredKeywords) > 0 {
						checks = append(checks, "keywords: "+strings.Join(r.RequiredKeywords, ", "))
					}
					if r.MustContainSignature {
						checks = append(checks, "signature")
					}
					if r.MustBeProfessionallySealed {
						checks = append(checks, "seal")
					}
				}
				printf(w, "  %-4s %-50s %-8s %s\n", it.ID, it.Name, req, strings.Join(checks, "; "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "override directory with template YAML files")
	return cmd
}
