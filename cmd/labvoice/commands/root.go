package commands

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	noColor bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "labvoice",
	Short: "Lab report understanding from the command line",
	Long: `labvoice turns a scanned lab report PDF into a structured summary:
pages are rendered and OCR'd, a language model extracts the medical
fields, and the result can optionally be spoken to the patient over a
phone call with an SMS companion.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print raw JSON instead of formatted output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
