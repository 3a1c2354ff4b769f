package cmd

import (
	"fmt"
	"io"

	"github.com/danielolaszy/opsintel/internal/analyzer"
	"github.com/danielolaszy/opsintel/internal/logging"
	"github.com/danielolaszy/opsintel/internal/output"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// analyzeCmd computes delivery friction metrics for a dataset.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|-]",
	Short: "Analyze a JIRA and GitHub activity dataset",
	Long: `Analyze a dataset of JIRA tickets and GitHub pull requests.

The input is JSON text, optionally wrapped in a Markdown code fence. It is
read from the given file, or from stdin when the file is "-" or omitted.

The report contains:
- ghost_work_pct: share of pull requests whose title has no ticket key
- high_churn_count: tickets with more than one churn event
- total_tickets and total_prs
- the input records, unchanged

Invalid input prints {"error": "..."} and exits non-zero.

Example:
  opsintel generate --seed 42 | opsintel analyze
  opsintel analyze dataset.json --format yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatFlag, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
		format, err := output.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		path := "-"
		if len(args) == 1 {
			path = args[0]
		}

		text, err := readInput(path, cmd.InOrStdin())
		if err != nil {
			return err
		}

		outcome := analyzer.Evaluate(analyzer.Raw(text))
		if err := output.Write(cmd.OutOrStdout(), outcome, format); err != nil {
			return err
		}
		if !outcome.OK() {
			return fmt.Errorf("analysis failed: %w", outcome.Err)
		}

		summary := outcome.Report.Summary
		logging.Info("analysis complete",
			"ghost_work_pct", float64(summary.GhostWorkPct),
			"high_churn_count", summary.HighChurnCount,
			"total_tickets", summary.TotalTickets,
			"total_prs", summary.TotalPRs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().String("format", string(output.FormatJSON), "Output format (json, yaml)")
}

// readInput reads path from appFs, or stdin when path is "-".
func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := afero.ReadFile(appFs, path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
