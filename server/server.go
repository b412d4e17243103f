// Package server assembles the store, auth core and routes into a runnable
// HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"todoapi/auth"
	"todoapi/config"
	"todoapi/db"
	"todoapi/db/mongo"
	"todoapi/db/postgres"
	"todoapi/db/sqlite"
	"todoapi/handlers"
	"todoapi/repository"
	"todoapi/routes"
	"todoapi/telemetry"
)

// Store is the long-lived storage handle shared by every handler.
type Store struct {
	Users repository.UserRepository
	Todos repository.TodoRepository
	conn  db.DB
}

func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Disconnect()
}

// OpenStore connects to the configured backend and bootstraps its schema.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch db.DBType(cfg.DBType) {
	case db.Postgres:
		pg := postgres.NewPostgresDB(cfg.PostgresURL)
		if err := pg.Connect(ctx); err != nil {
			return nil, err
		}
		if err := db.RunMigrations(pg.Conn.DB, db.Postgres); err != nil {
			_ = pg.Disconnect()
			return nil, err
		}
		return &Store{
			Users: repository.NewSQLUserRepo(pg.Conn),
			Todos: repository.NewSQLTodoRepo(pg.Conn),
			conn:  pg,
		}, nil

	case db.SQLite:
		lite := sqlite.NewSQLiteDB(cfg.SQLitePath)
		if err := lite.Connect(ctx); err != nil {
			return nil, err
		}
		if err := db.RunMigrations(lite.Conn.DB, db.SQLite); err != nil {
			_ = lite.Disconnect()
			return nil, err
		}
		return &Store{
			Users: repository.NewSQLUserRepo(lite.Conn),
			Todos: repository.NewSQLTodoRepo(lite.Conn),
			conn:  lite,
		}, nil

	case db.Mongo:
		mg := mongo.NewMongoDB(cfg.MongoURL, cfg.MongoDatabase)
		if err := mg.Connect(ctx); err != nil {
			return nil, err
		}
		if err := mg.EnsureIndexes(ctx); err != nil {
			_ = mg.Disconnect()
			return nil, err
		}
		return &Store{
			Users: repository.NewMongoUserRepo(mg.Database),
			Todos: repository.NewMongoTodoRepo(mg.Database),
			conn:  mg,
		}, nil

	default:
		return nil, fmt.Errorf("DB_TYPE %q not supported", cfg.DBType)
	}
}

// NewHandler wires the auth core and resource handlers over store.
func NewHandler(store *Store, tokens *auth.TokenService, hasher *auth.Hasher, allowedOrigin string) http.Handler {
	return routes.SetupRoutes(routes.Handlers{
		Auth:  &handlers.AuthHandler{Users: store.Users, Hasher: hasher, Tokens: tokens},
		Users: &handlers.UserHandler{Users: store.Users, Hasher: hasher},
		Todos: &handlers.TodoHandler{Repo: store.Todos},
		Admin: &handlers.AdminHandler{Users: store.Users, Todos: store.Todos},
	}, tokens, allowedOrigin)
}

// Server is the HTTP server together with the resources it owns.
type Server struct {
	srv           *http.Server
	store         *Store
	shutdownTrace func(context.Context)
}

// New builds a Server from cfg. The signing secret is required before any
// store is opened.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	hasher := auth.NewHasher(cfg.BcryptCost, cfg.HashWorkers)

	shutdownTrace, err := telemetry.NewProvider(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("start tracing: %w", err)
	}

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		shutdownTrace(ctx)
		return nil, err
	}
	slog.Info("Connected to database", slog.String("backend", cfg.DBType))

	return &Server{
		srv: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           telemetry.Instrument(NewHandler(store, tokens, hasher, cfg.AllowedOrigin)),
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:         store,
		shutdownTrace: shutdownTrace,
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", slog.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.close(context.Background())
		return err
	case <-ctx.Done():
	}

	slog.Info("Gracefully shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := s.srv.Shutdown(shutdownCtx)
	s.close(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("Server shutdown!")
	return nil
}

func (s *Server) close(ctx context.Context) {
	if err := s.store.Close(); err != nil {
		slog.Error("Failed to close store", slog.Any("error", err))
	}
	s.shutdownTrace(ctx)
}
