package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/permit-readiness/constants"
	"github.com/joseph-ayodele/permit-readiness/internal/core/extract"
)

func newSummaryCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <file.pdf>",
		Short: "Show page, word, signature and seal indicators for a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if constants.MapExtToFormat(filepath.Ext(path)) != constants.PDF {
				return fmt.Errorf("only PDF files can be summarized: %s", path)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			e := extract.NewExtractor(extract.Config{}, root.logger(cmd))
			sum := extract.Summarize(e.Extract(data, constants.MediaTypePDF))

			w := cmd.OutOrStdout()
			if root.jsonOut {
				return writeJSON(w, sum)
			}
			printf(w, "Pages:      %d\n", sum.PageCount)
			printf(w, "Words:      %d\n", sum.WordCount)
			printf(w, "Characters: %d\n", sum.CharacterCount)
			printf(w, "Signature:  %s\n", yesNo(sum.HasSignature))
			printf(w, "Seal:       %s\n", yesNo(sum.HasProfessionalSeal))
			if sum.Preview != "" {
				printf(w, "\n%s\n", sum.Preview)
			}
			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
