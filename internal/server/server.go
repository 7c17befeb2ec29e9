// Package server wires the stores and handlers into one HTTP handler.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/rs/cors"

	"mood-journal-backend/internal/analytics"
	"mood-journal-backend/internal/chat"
	"mood-journal-backend/internal/db"
	"mood-journal-backend/internal/events"
	"mood-journal-backend/internal/goals"
	"mood-journal-backend/internal/journal"
	"mood-journal-backend/internal/logging"
	"mood-journal-backend/internal/tasks"
)

type Options struct {
	DB          *db.DB
	Relay       *chat.Relay
	Bus         *events.Bus
	Log         hclog.Logger
	CORSOrigins []string
	Location    *time.Location
	DailyGoal   int
	Now         func() time.Time
}

// New builds the API handler.
func New(o Options) http.Handler {
	log := logging.OrDiscard(o.Log)
	if o.Bus == nil {
		o.Bus = events.NewBus(log.Named("events"))
	}
	if o.Relay == nil {
		o.Relay = chat.NewRelay(nil, log.Named("chat"))
	}

	rec := analytics.NewRecorder(o.DB, log.Named("analytics"))
	goalStore := goals.NewStore(o.DB, o.DailyGoal)
	journalStore := journal.NewStore(o.DB)
	taskStore := tasks.NewStore(o.DB)
	if o.Now != nil {
		journalStore.WithClock(o.Now)
		taskStore.WithClock(o.Now)
	}
	taskDeps := tasks.Deps{
		Store:     taskStore,
		Events:    o.Bus,
		Analytics: rec,
		Goals:     goalStore,
		Log:       log.Named("tasks"),
		Now:       o.Now,
		Location:  o.Location,
	}

	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	// ----- TASKS API -----
	mux.HandleFunc("GET /api/tasks", tasks.ListTasksHandler(taskDeps))
	mux.HandleFunc("POST /api/tasks", tasks.CreateTaskHandler(taskDeps))
	mux.HandleFunc("GET /api/tasks/weekly", tasks.WeeklyHandler(taskDeps))
	mux.HandleFunc("GET /api/tasks/summary", tasks.SummaryHandler(taskDeps))
	mux.HandleFunc("PATCH /api/tasks/{id}", tasks.UpdateTaskHandler(taskDeps))
	mux.HandleFunc("DELETE /api/tasks/{id}", tasks.DeleteTaskHandler(taskDeps))

	// ----- JOURNAL API -----
	jlog := log.Named("journal")
	mux.HandleFunc("POST /api/journal", journal.SaveHandler(journalStore, rec, jlog))
	mux.HandleFunc("GET /api/journal", journal.ListHandler(journalStore, jlog))
	mux.HandleFunc("GET /api/journal/{dateKey}", journal.GetHandler(journalStore, jlog))

	// ----- GOAL API -----
	glog := log.Named("goals")
	mux.HandleFunc("GET /api/goal", goals.GetGoalHandler(goalStore, glog))
	mux.HandleFunc("PUT /api/goal", goals.SetGoalHandler(goalStore, glog))

	// ----- CHAT -----
	mux.HandleFunc("POST /api/chat", chat.ChatHandler(o.Relay, rec))

	// ----- EVENTS -----
	mux.HandleFunc("GET /api/events", events.StreamHandler(o.Bus, log.Named("events")))
	mux.HandleFunc("POST /api/events", events.NotifyHandler(o.Bus))

	// ----- ANALYTICS -----
	mux.HandleFunc("POST /api/analytics/app-opened", analytics.AppOpenedHandler(rec))

	origins := o.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch,
			http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Content-Type", "X-Platform", "X-Session-Id", "X-App-Version",
			"X-Device-Locale", "Idempotency-Key", "X-Source-Event-Key",
		},
	})

	return logRequests(log.Named("http"), c.Handler(mux))
}

// Run serves h on addr until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout. onShutdown runs when draining starts;
// it must end long-lived responses such as event streams.
func Run(ctx context.Context, addr string, h http.Handler, log hclog.Logger, shutdownTimeout time.Duration, onShutdown func()) error {
	log = logging.OrDiscard(log)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if onShutdown != nil {
		srv.RegisterOnShutdown(onShutdown)
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("API server is running", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
