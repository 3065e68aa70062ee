package cmd

import (
	"fmt"

	"github.com/relloyd/tablesync/actions"
	"github.com/relloyd/tablesync/aws/s3"
	"github.com/relloyd/tablesync/config"
	"github.com/relloyd/tablesync/constants"
	"github.com/spf13/cobra"
)

var configConnS3 = &actions.ConnectionConfig{}
var s3Conn = s3.AwsS3Bucket{}
var s3Dsn string

var configConnAddS3Cmd = &cobra.Command{
	Use:   "s3",
	Short: "Add an AWS S3 bucket",
	Long: fmt.Sprintf(`Add an AWS S3 bucket to the config store %q
for use by the run command with load-mode stage.

Provide a URL or supply individual flags.
Trailing slashes are trimmed and cleaned up internally.
The URL takes precedence and should be of the form:

s3://<bucket name>/<prefix>`,
		config.Connections.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		bucket := s3Conn
		if s3Dsn != "" { // if the user supplied a URL...
			b, err := s3.ParseDSN(s3Dsn, s3Conn.Region)
			if err != nil {
				return err
			}
			bucket = b
		}
		configConnS3.Type = constants.ConnectionTypeS3
		configConnS3.ConfigFile = getConnectionGetterSetter()
		configConnS3.ConnDetails = bucket
		return actions.RunConnectionAdd(configConnS3)
	},
}

func initConnAddS3() {
	configConnAddCmd.AddCommand(configConnAddS3Cmd)
	configConnAddS3Cmd.Flags().SortFlags = false
	switches.addFlag(configConnAddS3Cmd, &configConnS3.LogicalName, "connection-name", "", true, "")
	switches.addFlag(configConnAddS3Cmd, &configConnS3.Force, "force-connection", "", false, "")
	switches.addFlag(configConnAddS3Cmd, &s3Dsn, "s3-dsn", "", false, "")
	switches.addFlag(configConnAddS3Cmd, &s3Conn.Name, "s3-bucket", "", false, "")
	switches.addFlag(configConnAddS3Cmd, &s3Conn.Prefix, "s3-prefix", "", false, "")
	switches.addFlag(configConnAddS3Cmd, &s3Conn.Region, "s3-region", "eu-west-1", false, "")
}
