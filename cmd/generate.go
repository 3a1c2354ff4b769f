package cmd

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/danielolaszy/opsintel/internal/config"
	"github.com/danielolaszy/opsintel/internal/generator"
	"github.com/danielolaszy/opsintel/internal/logging"
	"github.com/danielolaszy/opsintel/internal/output"
	"github.com/danielolaszy/opsintel/pkg/models"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// generateCmd writes a synthetic activity dataset.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic JIRA and GitHub activity dataset",
	Long: `Generate a synthetic history of JIRA tickets and GitHub pull requests.

The dataset covers a window of days ending now. Roughly 70% of weekdays see
work; tickets churn 40% of the time, half of them sit in long review, and 30%
of pull requests carry no ticket reference.

The same --seed always produces the same dataset for the same window.

Example:
  opsintel generate --seed 42 -o dataset.json
  opsintel generate --days 30 --engineers 4 --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		gen, err := generatorFlags(cmd, cfg.Generator)
		if err != nil {
			return err
		}

		formatFlag, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
		format, err := output.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		outPath, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}

		dataset, seed, err := buildDataset(gen, time.Now().UTC())
		if err != nil {
			return err
		}
		logging.Info("generated dataset",
			"seed", seed,
			"tickets", len(dataset.JiraTickets),
			"prs", len(dataset.GitHubPRs))

		return writeResult(cmd.OutOrStdout(), outPath, dataset, format)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGeneratorFlags(generateCmd)
	generateCmd.Flags().StringP("output", "o", "", "Write the dataset to a file instead of stdout")
	generateCmd.Flags().String("format", string(output.FormatJSON), "Output format (json, yaml)")
}

// addGeneratorFlags registers the flags that override generator config.
func addGeneratorFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("seed", 0, "Random seed (0 picks a fresh one)")
	cmd.Flags().Int("days", 0, "Length of the window in days (overrides OPSINTEL_DAYS)")
	cmd.Flags().Int("engineers", 0, "Number of engineers on the team (overrides OPSINTEL_ENGINEERS)")
}

// generatorFlags applies explicitly set flags on top of the loaded config.
func generatorFlags(cmd *cobra.Command, gen config.GeneratorConfig) (config.GeneratorConfig, error) {
	flags := cmd.Flags()

	if flags.Changed("seed") {
		seed, err := flags.GetInt64("seed")
		if err != nil {
			return gen, err
		}
		gen.Seed = seed
	}
	if flags.Changed("days") {
		days, err := flags.GetInt("days")
		if err != nil {
			return gen, err
		}
		gen.Days = days
	}
	if flags.Changed("engineers") {
		engineers, err := flags.GetInt("engineers")
		if err != nil {
			return gen, err
		}
		gen.Engineers = engineers
	}

	if err := config.ValidateGeneratorConfig(gen); err != nil {
		return gen, err
	}
	return gen, nil
}

// resolveSeed returns seed, or a time-derived seed when seed is zero.
func resolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

// buildDataset generates a dataset for the window ending at now and returns
// it with the seed that produced it.
func buildDataset(gen config.GeneratorConfig, now time.Time) (models.Dataset, int64, error) {
	seed := resolveSeed(gen.Seed)

	genCfg := generator.DefaultConfig(now)
	genCfg.Days = gen.Days
	genCfg.Engineers = gen.Engineers
	genCfg.KeyPrefix = gen.KeyPrefix

	dataset := generator.Generate(genCfg, generator.NewSource(seed))
	if err := checkDataset(dataset, now); err != nil {
		return models.Dataset{}, seed, err
	}
	return dataset, seed, nil
}

// checkDataset rejects a dataset that breaks the ticket and pull request
// invariants at now.
func checkDataset(dataset models.Dataset, now time.Time) error {
	if err := dataset.Validate(now); err != nil {
		return fmt.Errorf("generated dataset is inconsistent: %w", err)
	}
	return nil
}

// writeResult encodes v to path on appFs, or to w when path is empty.
func writeResult(w io.Writer, path string, v any, format output.Format) error {
	if path == "" {
		return output.Write(w, v, format)
	}

	var buf bytes.Buffer
	if err := output.Write(&buf, v, format); err != nil {
		return err
	}
	if err := afero.WriteFile(appFs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logging.Info("wrote output", "path", path, "bytes", buf.Len())
	return nil
}
