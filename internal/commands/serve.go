package commands

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mood-journal-backend/internal/ai"
	"mood-journal-backend/internal/chat"
	"mood-journal-backend/internal/db"
	"mood-journal-backend/internal/events"
	"mood-journal-backend/internal/server"
)

const shutdownTimeout = 10 * time.Second

func addServe(topLevel *cobra.Command, e *env) {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API.",
		Example: `
moodjournal serve
DB_DRIVER=sqlite SQLITE_PATH=./dev.db moodjournal serve --addr :8080
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg := e.cfg
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			database, err := db.Open(ctx, cfg.DBDriver, cfg.DSN())
			if err != nil {
				e.log.Error("failed to open database", "driver", cfg.DBDriver, "error", err)
				return err
			}
			defer database.Close()
			e.log.Info("connected to database", "driver", cfg.DBDriver)

			var completer chat.Completer
			if cfg.OpenAIKey != "" {
				completer = ai.New(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.OpenAITimeout)
			} else {
				e.log.Warn("OPENAI_API_KEY is not set, chat will answer with the fallback reply")
			}

			bus := events.NewBus(e.log.Named("events"))
			h := server.New(server.Options{
				DB:          database,
				Relay:       chat.NewRelay(completer, e.log.Named("chat")),
				Bus:         bus,
				Log:         e.log,
				CORSOrigins: cfg.CORSOrigins,
				Location:    cfg.Location,
				DailyGoal:   cfg.DailyGoal,
			})

			return server.Run(ctx, cfg.HTTPAddr, h, e.log.Named("http"), shutdownTimeout, bus.Close)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides HTTP_ADDR")

	topLevel.AddCommand(cmd)
}

func addMigrate(topLevel *cobra.Command, e *env) {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			database, err := db.Connect(e.cfg.DBDriver, e.cfg.DSN())
			if err != nil {
				return err
			}
			defer database.Close()

			before, err := db.CurrentVersion(ctx, database)
			if err != nil {
				return err
			}
			if err := db.Migrate(ctx, database); err != nil {
				return err
			}
			e.log.Info("schema up to date", "from", before, "to", db.SchemaVersion)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
