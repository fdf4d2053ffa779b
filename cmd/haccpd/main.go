// Haccpd is a decision-support daemon for HACCP plan reviews. It serves
// hazard resolution, CCP questionnaire evaluation and monitoring-plan
// suggestion over HTTP, backed by per-product vector indexes built from
// historical APPCC, PAC and BPF sheets.
//
// Usage:
//
//	# Start the daemon with defaults
//	haccpd serve
//
//	# Index the per-product sheets
//	haccpd ingest --data-dir ./produtos
//
//	# Configure via file or environment
//	haccpd serve --config /etc/haccpd/config.yaml
//	HACCPD_SERVER_PORT=9000 haccpd serve
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "haccpd",
	Short: "HACCP plan review decision-support daemon",
	Long: `haccpd indexes historical hazard-analysis sheets per product and
serves step lookup, hazard resolution, the CCP decision tree and
monitoring-plan suggestion over HTTP.`,
	Version: version,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show detailed version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("haccpd\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (YAML)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
