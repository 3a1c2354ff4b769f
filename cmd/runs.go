package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/danielolaszy/opsintel/internal/config"
	"github.com/danielolaszy/opsintel/internal/output"
	"github.com/danielolaszy/opsintel/internal/store"
	"github.com/spf13/cobra"
)

const latestRun = "latest"

// runsCmd groups commands that read stored runs.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored run reports",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s store.Store) error {
			objects, err := s.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}
			return printRuns(cmd.OutOrStdout(), objects)
		})
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <key|latest>",
	Short: "Print a stored run report",
	Long: `Print a stored run report by key, or the newest one with "latest".

Example:
  opsintel runs show latest
  opsintel runs show run_2024-06-14T15-30-00.json --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatFlag, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
		format, err := output.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		return withStore(cmd, func(ctx context.Context, s store.Store) error {
			_, body, err := fetchRun(ctx, s, args[0])
			if err != nil {
				return err
			}
			return output.Write(cmd.OutOrStdout(), json.RawMessage(body), format)
		})
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsShowCmd.Flags().String("format", string(output.FormatJSON), "Output format (json, yaml)")
}

// withStore opens the configured store for the duration of fn.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, s store.Store) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := cmd.Context()
	s, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}
	defer s.Close()

	return fn(ctx, s)
}

// fetchRun returns the run stored under key, resolving "latest" to the
// newest run.
func fetchRun(ctx context.Context, s store.Store, key string) (string, []byte, error) {
	if key == latestRun {
		obj, body, err := store.Latest(ctx, s)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read latest run: %w", err)
		}
		return obj.Key, body, nil
	}

	body, err := s.Get(ctx, key)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read run %s: %w", key, err)
	}
	return key, body, nil
}

func printRuns(w io.Writer, objects []store.Object) error {
	if len(objects) == 0 {
		_, err := fmt.Fprintln(w, "no runs stored")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLAST MODIFIED\tSIZE")
	for _, obj := range objects {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", obj.Key, obj.LastModified.UTC().Format(time.RFC3339), obj.Size)
	}
	return tw.Flush()
}
