package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel     string // Log verbosity level
	outputFormat string // Job listing format written to stdout
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "jobtrace",
	Short: "Produce job traces for discrete-event cluster simulators",
	Long: "Read workload trace files or synthesize random traces, and write the resulting " +
		"job sequence to stdout for a scheduler under test.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
		if !isValidOutputFormat(outputFormat) {
			logrus.Fatalf("Invalid output format %q; valid: csv, summary", outputFormat)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags shared by all subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", outputCSV, "Output format (csv, summary)")
}
