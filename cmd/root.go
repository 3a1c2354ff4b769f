// Package cmd provides the command-line interface for the opsintel tool.
package cmd

import (
	"os"
	"strings"

	"github.com/danielolaszy/opsintel/internal/config"
	"github.com/danielolaszy/opsintel/internal/logging"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// appFs is the filesystem commands read input files from and write output
// files to.
var appFs = afero.NewOsFs()

var rootCmd = &cobra.Command{
	Use:   "opsintel",
	Short: "Opsintel measures delivery friction in engineering activity data",
	Long: `Opsintel simulates a team's JIRA tickets and GitHub pull requests and
reports on delivery friction: pull requests with no ticket reference ("ghost
work") and tickets whose requirements kept changing ("churn").

Reports can be kept in a local directory, a Postgres database or an S3 bucket
and served as JSON to dashboards.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	addLogFlags(rootCmd)
}

func addLogFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	cmd.PersistentFlags().String("log-format", "", "Log format: text, json (overrides LOG_FORMAT)")
}

// setupLogging configures the logger from LOG_LEVEL and LOG_FORMAT, read from
// the environment or .env, with the log flags taking precedence.
func setupLogging(cmd *cobra.Command) error {
	logCfg := config.LoadLogConfig()

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		level, err := flags.GetString("log-level")
		if err != nil {
			return err
		}
		logCfg.Level = strings.ToLower(level)
	}
	if flags.Changed("log-format") {
		format, err := flags.GetString("log-format")
		if err != nil {
			return err
		}
		logCfg.Format = strings.ToLower(format)
	}

	if err := config.ValidateLogConfig(logCfg); err != nil {
		return err
	}

	logging.SetupLogger(os.Stderr, logging.LogLevel(logCfg.Level), logging.LogFormat(logCfg.Format))
	return nil
}
