// cli/root.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gewnthar/cragbook/config"
	"github.com/gewnthar/cragbook/log"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Format     string // "json" | "text"

	// Config is filled in before any subcommand runs.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"json", "text"}

// NewRootCommand creates the cragbook command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cragbook",
		Short: "Cragbook - route catalog sync for the gym",
		Long:  "Keeps the route catalog in step with the staff route spreadsheet.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if err := config.LoadConfig(opts.ConfigPath); err != nil {
				return fmt.Errorf("error loading configuration: %w", err)
			}
			opts.Config = &config.AppConfig

			level := opts.Config.Log.Level
			if opts.LogLevel != "" {
				level = opts.LogLevel
			}
			log.Init(log.Config{
				Level:      log.Level(level),
				JSONOutput: opts.Config.Log.JSON,
				Output:     cmd.ErrOrStderr(),
			})
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "config/config.yaml", "path to the YAML config file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level override (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "json", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewPreviewCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
