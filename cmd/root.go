package cmd

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

var (
	// Default values may be set at compile time.
	version          = "0.1.0"
	buildDate        = "2026-01-02T03:04+0000"
	osArch           = "linux"
	stackDumpOnPanic bool
)

var rootCmd = &cobra.Command{
	Use: "tablesync",
	Long: `
 _____     _     _      ____
|_   _|_ _| |__ | | ___/ ___| _   _ _ __   ___
  | |/ _' | '_ \| |/ _ \___ \| | | | '_ \ / __|
  | | (_| | |_) | |  __/___) | |_| | | | | (__
  |_|\__,_|_.__/|_|\___|____/ \__, |_| |_|\___|
                              |___/

TableSync copies every base table of a source database into a Snowflake bronze layer.
Tables are discovered using INFORMATION_SCHEMA, column names are upper-cased and each row
is stamped with LOADED_AT_UTC before the target table is replaced in full.
A failed table does not stop the run; check the run report to see what happened.
Start an HTTP server to run on a schedule and watch progress via a RESTful API.`,
}

func init() {
	// General setup.
	cobra.EnableCommandSorting = false
	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&stackDumpOnPanic, "print-stack", false, "Print a stack dump if there is a panic")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if twelveFactorMode { // if we are running based on environment variables...
		if lambdaMode { // if we should handle lambda execution...
			lambda.Start(func() error { return execute12FactorMode(twelveFactorActions) })
		} else {
			if err := execute12FactorMode(twelveFactorActions); err != nil {
				// execute12FactorMode prints the error.
				os.Exit(1)
			}
		}
	} else { // else we're using CLI args and flags via Cobra...
		if err := rootCmd.Execute(); err != nil {
			// Execute() prints the error.
			os.Exit(1)
		}
	}
}
