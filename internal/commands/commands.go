// Package commands holds the moodjournal command tree.
package commands

import (
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"mood-journal-backend/internal/config"
	"mood-journal-backend/internal/logging"
)

// env is filled in before any subcommand runs.
type env struct {
	cfg *config.Config
	log hclog.Logger
}

func New() *cobra.Command {
	e := &env{}

	cmd := &cobra.Command{
		Use:           "moodjournal",
		Short:         "Mood journal API server and extension sync client.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.log = logging.New(cfg.LogLevel, cfg.LogJSON, cmd.ErrOrStderr())
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addCommands(cmd, e)
	return cmd
}

func addCommands(topLevel *cobra.Command, e *env) {
	addServe(topLevel, e)
	addMigrate(topLevel, e)
	addExt(topLevel, e)
}
