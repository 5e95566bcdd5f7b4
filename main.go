package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// rootCmd runs the server when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "class-records",
	Short: "Student records, attendance and prelim grade service",
	Long: `class-records serves a student roster parsed from CSV, a login-based
attendance log, and a prelim grade calculator.

Everything lives in memory for the life of the process.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml (optional)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(parseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
