package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mygoals/mygoals/internal/config"
	"github.com/mygoals/mygoals/internal/database"
	"github.com/mygoals/mygoals/pkg/goal"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg     config.Application
	router  *mux.Router
	srv     *http.Server
	closeDb func()
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}

	goalStore, closeDb, err := openGoalStore(cfg.Database)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()

	deps := BuildDependencies(goalStore)

	SetupMiddleware(r)

	RegisterRoutes(r, deps)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Server.Addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, router: r, srv: srv, closeDb: closeDb}, nil
}

// openGoalStore opens and migrates the configured database and returns the goal store backed by it.
func openGoalStore(cfg config.Database) (goal.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigrateSQLite(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Infof("Using SQLite database at %s", cfg.Path)
		return goal.NewSQLiteGoalRepo(db), func() { db.Close() }, nil
	case config.DriverPostgres:
		if err := database.Migrate(cfg); err != nil {
			return nil, nil, err
		}
		db, err := database.Open(cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("Using Postgres database %s on %s:%d", cfg.Name, cfg.Host, cfg.Port)
		return goal.NewGoalRepo(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Run starts the HTTP server and blocks until it fails or ctx is cancelled.
// The database is closed once the server has stopped.
func (a *Application) Run(ctx context.Context) error {
	defer a.closeDb()

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		serverErr <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		if err := <-serverErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
