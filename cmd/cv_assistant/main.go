// Package main provides the entry point for the CV & cover letter assistant CLI and server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cv_assistant",
	Short: "CV & Cover Letter Assistant",
	Long: `CV & Cover Letter Assistant generates a tailored cover letter or a revised CV
for a target job using the Google Gemini API.

The form (your CV text plus the job's company, position, requirements and description)
and your API key are kept in a local store between runs. Fill it with the form commands,
then run generate, or start the web form with serve.`,
	SilenceUsage: true,
}

var (
	rootConfigPath  string
	rootStorePath   string
	rootDatabaseURL string
	rootEphemeral   bool
	rootVerbose     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to a JSON or YAML config file (values can be overridden by env and flags)")
	rootCmd.PersistentFlags().StringVar(&rootStorePath, "store", "", "SQLite store file (default ~/.cv_assistant/store.db, or CV_ASSISTANT_STORE)")
	rootCmd.PersistentFlags().StringVar(&rootDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	rootCmd.PersistentFlags().BoolVar(&rootEphemeral, "ephemeral", false, "Keep the form and history in memory only")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
