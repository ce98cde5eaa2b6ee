package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/agentmatrix-dev/agentmatrix/internal/config"
)

var (
	cfg    *config.Config
	logger zerolog.Logger

	storeFlag    string
	filePathFlag string
	logLevelFlag string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "agentmatrix",
	Short: "AgentMatrix registry",
	Long: `agentmatrix catalogues AI agents and MCP servers.

Run 'agentmatrix serve' for the HTTP API and MCP server, or query the stored
registry directly with 'agentmatrix query' and 'agentmatrix stats'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("store") {
			loaded.Store = storeFlag
		}
		if flags.Changed("file") {
			loaded.FilePath = filePathFlag
		}
		if flags.Changed("log-level") {
			loaded.LogLevel = logLevelFlag
		}
		if verbose {
			loaded.LogLevel = "debug"
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
		logger = setupLogging(cfg.LogLevel)
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "Store backend: file, memory, redis, postgres or sqlite (overrides AGENTMATRIX_STORE)")
	rootCmd.PersistentFlags().StringVar(&filePathFlag, "file", "", "State file for the file store (overrides AGENTMATRIX_FILE_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: trace, debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Verbose output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
}

// Root returns the root command.
func Root() *cobra.Command {
	return rootCmd
}

// setupLogging configures the global zerolog logger: console output for
// debug and trace, JSON otherwise.
func setupLogging(level string) zerolog.Logger {
	if level == "trace" || level == "debug" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02 15:04:05.000",
			PartsOrder: []string{
				zerolog.TimestampFieldName,
				zerolog.LevelFieldName,
				zerolog.CallerFieldName,
				zerolog.MessageFieldName,
			},
		}).With().Timestamp().Caller().Logger()
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	switch level {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return log.Logger
}
