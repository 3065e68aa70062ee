package constants

// Component

const (
	StatsCaptureFrequencySeconds  = 5
	TimeFormatYearSeconds         = "20060102T150405" // used for human readable file names
	TimeFormatYearSecondsRegex    = "[0-9]{4}[0-9]{2}[0-9]{2}T[0-9]{6}"
	TimeFormatYearSecondsTZ       = "20060102T150405-0700" // a format that includes the time zone and is compatible with Snowflake.
	TimeFormatSnowflake           = "2006-01-02 15:04:05.999999999 -07:00" // parsed by Snowflake TIMESTAMP_FORMAT AUTO.
	LoadedAtColumnName            = "LOADED_AT_UTC"
	StageTableSuffix              = "_TS_STAGE"
	LoadModeInsert                = "insert"
	LoadModeStage                 = "stage"
	LoadTxtBatchNumRowsDefault    = 200
	CsvMaxFileRowsDefault         = 500000
	RetriesDefault                = 0
	RetryBackoffSecondsDefault    = 5
	SnowflakeMaxVarcharLength     = 16777216
	SnowflakeMaxBinaryLength      = 8388608
	OutputFormatText              = "text"
	OutputFormatJson              = "json"
	OutputFormatYaml              = "yaml"
	EmojiBang                     = "\U0001F4A5"
	EnvVarPrefix                  = "TS" // prefixed for environment variables in twelveFactorMode
	TsPluginOdbc                  = "ts-odbc-plugin.so"
	EnvVarPluginDir               = EnvVarPrefix + "_PLUGIN_DIR"
	EnvVarConfigKey               = EnvVarPrefix + "_CONFIG_KEY"
	EnvVarEnvFile                 = EnvVarPrefix + "_ENV_FILE"
	ConnectionTypeStdout          = "stdout"
	ConnectionTypeSnowflake       = "snowflake"
	ConnectionTypeOdbc            = "odbc" // this is not a real connection type, since we need a suffix to provide the driver name like sqlserver.
	ConnectionTypeOdbcSqlServer   = "odbc+sqlserver"
	ConnectionTypeSqlServer       = "sqlserver"
	ConnectionTypePostgres        = "postgres"
	ConnectionTypeMySql           = "mysql"
	ConnectionTypeS3              = "s3"
	ConnectionTypeMockSource      = "mockSource"
	DefaultSourceConnectionName   = "source"
	DefaultTargetConnectionName   = "target"
	DefaultS3BucketConnectionName = "bucket"
)

// Actions

const (
	ActionFuncsCommandRun      = "run"
	ActionFuncsCommandDiscover = "discover"
	WebServerPortDefault       = 8080
	WebServerAddrDefault       = "127.0.0.1"
)
