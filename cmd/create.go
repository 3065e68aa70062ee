package cmd

import (
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate helpful metadata",
	Long: `Generate DDL for the following:

- Snowflake external STAGE used by the run command with load-mode stage
`,
}

func init() {
	rootCmd.AddCommand(createCmd)
}
