package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "formgate",
	Short: "Dynamic form field engine with decoupled definitions and placements",
	Long: `Formgate manages reusable form field definitions and places them
into built-in scopes (registration, login, profile) or custom forms.
Submitted payloads are validated against the compiled per-container
rules and partitioned into profile columns and a free-form attribute
bag.

Quick start:
  formgate serve    # Start the HTTP API server

Management:
  formgate fields   # Manage field definitions
  formgate forms    # Manage custom forms`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "formgate.yaml", "config file path")
}
