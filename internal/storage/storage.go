// Package storage owns the embedded database engine: a singleton start/stop
// lifecycle guarded by a mutex, idempotent schema creation, and seed data.
//
// The original system ran its store as a separate TCP server process; here the
// engine is embedded SQLite. Exclusivity is provided by the database file lock
// plus the Server state machine, which allows exactly one running instance per
// process.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	_ "github.com/mattn/go-sqlite3"

	"fleetyard/internal/domain"
)

// State is the lifecycle phase of the embedded store.
type State string

const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

// SeedAccount is a credential row inserted on first start, when the users
// table is still empty.
type SeedAccount struct {
	Username string
	Password string
	Role     domain.Role
}

// Options configures the embedded store.
type Options struct {
	// Path is the database file path.
	Path string

	// SeedAccounts are inserted by the schema initializer only if the users
	// table is empty.
	SeedAccounts []SeedAccount
}

// Server is the lifecycle object for the embedded store. The composition root
// owns one instance and hands it to the repositories. All state transitions
// happen under a single mutex, so concurrent EnsureStarted/Stop calls
// serialize instead of racing.
type Server struct {
	mu    sync.Mutex
	state State
	opts  Options

	// Guard handle held for the lifetime of the running store. Repository
	// operations do not share it; they open their own connection per call.
	db *sql.DB
}

// NewServer creates a stopped server. Nothing is opened until EnsureStarted.
func NewServer(opts Options) *Server {
	return &Server{state: StateStopped, opts: opts}
}

// State returns the current lifecycle phase.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// EnsureStarted starts the embedded store and applies the schema initializer,
// or does nothing if the store is already running. Any failure is wrapped in a
// *LifecycleError and must be treated as fatal by the caller; a partially
// started store is shut down before returning.
func (s *Server) EnsureStarted(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		log.Debug().Msg("embedded store already running")
		return nil
	}

	s.state = StateStarting
	log.Info().Str("path", s.opts.Path).Msg("starting embedded store")

	db, err := openStore(s.opts.Path)
	if err != nil {
		s.state = StateStopped
		return &LifecycleError{Op: "start", Err: err}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		s.state = StateStopped
		return &LifecycleError{Op: "start", Err: err}
	}

	if err := initSchema(ctx, db, s.opts.SeedAccounts); err != nil {
		log.Error().Err(err).Msg("initial store setup failed, stopping partially started store")
		_ = db.Close()
		s.state = StateStopped
		return &LifecycleError{Op: "schema init", Err: err}
	}

	s.db = db
	s.state = StateRunning
	log.Info().Str("path", s.opts.Path).Msg("embedded store started")
	return nil
}

// Stop shuts the store down. Stopping an already-stopped server is a no-op.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		log.Debug().Str("state", string(s.state)).Msg("embedded store not running, nothing to stop")
		return nil
	}

	s.state = StateStopping
	log.Info().Msg("stopping embedded store")

	err := s.db.Close()
	s.db = nil
	s.state = StateStopped
	if err != nil {
		return &LifecycleError{Op: "stop", Err: err}
	}
	log.Info().Msg("embedded store stopped")
	return nil
}

// Connect opens a fresh connection for one logical operation. The caller must
// close it. There is no pooling: each handle is pinned to a single real
// connection.
func (s *Server) Connect(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	if s.state != StateRunning {
		state := s.state
		s.mu.Unlock()
		return nil, &LifecycleError{Op: "connect", Err: fmt.Errorf("store is %s, not running", state)}
	}
	path := s.opts.Path
	s.mu.Unlock()

	db, err := openStore(path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func openStore(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
