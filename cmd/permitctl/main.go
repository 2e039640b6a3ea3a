// permitctl validates permit documents and checklists locally.
//
// Usage:
//
//	permitctl validate --jurisdiction=<name> --item=<id> <file>...
//	permitctl validate --rules=<rules.json> <file>...
//	permitctl summary <file.pdf>
//	permitctl readiness --checklist=<file> --uploaded=<id,id,...>
//	permitctl templates [jurisdiction]
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/permit-readiness/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootOptions struct {
	logLevel string
	jsonOut  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "permitctl",
		Short: "Check permit documents against jurisdiction checklists",
		Long: "permitctl runs the document validation and readiness engine locally:\n" +
			"validate files against checklist rules, summarize PDFs, compute\n" +
			"readiness, and inspect the built-in jurisdiction templates.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	pf.BoolVar(&opts.jsonOut, "json", false, "print JSON instead of text")

	cmd.AddCommand(
		newValidateCmd(opts),
		newSummaryCmd(opts),
		newReadinessCmd(opts),
		newTemplatesCmd(opts),
	)
	return cmd
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return logging.New(cmd.ErrOrStderr(), o.logLevel, "text")
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
