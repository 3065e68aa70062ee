package cmd

import (
	"github.com/relloyd/tablesync/actions"
	"github.com/spf13/cobra"
)

var createStageCfg = actions.CreateStageConfig{}

var stageCmd = &cobra.Command{
	Use:   "stage <snowflake-connection>",
	Short: "Create a Snowflake external STAGE for use by load-mode stage",
	Long: `Create a Snowflake external STAGE pointing to AWS S3, for use by the run command with load-mode stage.
The DDL is printed unless the execute-ddl flag is set, in which case it's executed against the connection.
The AWS key and secret default to the values of AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY.
`,
	Args: getConnectionArgsFunc(&createStageCfg.TargetString, "requires a Snowflake <connection>"),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		createStageCfg.StackDumpOnPanic = stackDumpOnPanic
		createStageCfg.Connections = getConnectionHandler()
		return actions.RunCreateStage(&createStageCfg)
	},
}

func init() {
	createCmd.AddCommand(stageCmd)
	stageCmd.Flags().SortFlags = false
	switches.addFlag(stageCmd, &createStageCfg.StageName, "stage", "", true, "")
	switches.addFlag(stageCmd, &createStageCfg.S3Url, "s3-url", "", true, "")
	switches.addFlag(stageCmd, &createStageCfg.S3Key, "s3-key", "", false, "")
	switches.addFlag(stageCmd, &createStageCfg.S3Secret, "s3-secret", "", false, "")
	switches.addFlag(stageCmd, &createStageCfg.ExecuteDDL, "execute-ddl", "", false, "")
	switches.addFlag(stageCmd, &createStageCfg.LogLevel, "log-level", "error", false, "")
}
