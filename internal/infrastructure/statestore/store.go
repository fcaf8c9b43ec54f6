package statestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/nerrad567/gray-link/internal/infrastructure/config"
)

// Store configuration constants.
const (
	// dirPermissions is the permission mode for the state directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the state file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000

	// connectionTimeout is the timeout for verifying store connectivity.
	connectionTimeout = 5 * time.Second

	// connMaxIdleTime is how long idle connections are kept open.
	connMaxIdleTime = 30 * time.Minute
)

// Store persists connection state across agent restarts.
//
// It is the Gray Link analogue of the non-volatile storage a firmware
// device would hand to its Wi-Fi stack: known networks, last assigned
// addresses, and a bounded history of connection attempts.
//
// Thread Safety:
//   - All methods are safe for concurrent use (database/sql pools internally).
type Store struct {
	db   *sql.DB
	path string
}

// Attempt records the outcome of a single connection attempt.
type Attempt struct {
	SSID     string
	Success  bool
	Error    string
	Duration time.Duration
	IP       string
	At       time.Time
}

// Network is a known network with its last successful connection details.
type Network struct {
	SSID            string
	LastIP          string
	LastConnectedAt time.Time
}

// schema is applied on every Open; CREATE IF NOT EXISTS keeps it idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS networks (
	ssid              TEXT PRIMARY KEY,
	last_ip           TEXT NOT NULL DEFAULT '',
	last_connected_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS attempts (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	ssid        TEXT NOT NULL,
	success     INTEGER NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL,
	ip          TEXT NOT NULL DEFAULT '',
	at          TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attempts_at ON attempts(at);
`

// Open creates a new state store with the specified configuration.
//
// It performs the following setup:
//  1. Creates the state directory if it doesn't exist
//  2. Opens the SQLite file (creates if not present)
//  3. Configures WAL mode and busy timeout
//  4. Applies the schema
//  5. Verifies the connection with a ping
//
// Parameters:
//   - ctx: Context for startup timeout/cancellation
//   - cfg: State configuration from config.yaml
//
// Returns:
//   - *Store: Ready state store
//   - error: ErrDisabled if persistence is off, or a setup failure
func Open(ctx context.Context, cfg config.StateConfig) (*Store, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	// Build connection string with pragmas
	// See: https://github.com/mattn/go-sqlite3#connection-string
	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path,
		cfg.BusyTimeout*msPerSecond,
	)

	if cfg.WALMode {
		connStr += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening state store: %w", err)
	}

	// SQLite works best with a single writer, but multiple readers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying state store: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("applying state schema: %w", err)
	}

	// Set file permissions (owner read/write only)
	_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // First run creates file later

	return &Store{db: db, path: cfg.Path}, nil
}

// RecordAttempt stores the outcome of a connection attempt.
//
// Successful attempts also update the known-networks table with the
// assigned address and timestamp.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - a: The attempt to record (zero At defaults to now)
//
// Returns:
//   - error: If the write fails
func (s *Store) RecordAttempt(ctx context.Context, a Attempt) error {
	at := a.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (ssid, success, error, duration_ms, ip, at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.SSID, a.Success, a.Error, a.Duration.Milliseconds(), a.IP, at,
	)
	if err != nil {
		return fmt.Errorf("recording attempt: %w", err)
	}

	if a.Success {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO networks (ssid, last_ip, last_connected_at)
			 VALUES (?, ?, ?)
			 ON CONFLICT(ssid) DO UPDATE SET
			   last_ip = excluded.last_ip,
			   last_connected_at = excluded.last_connected_at`,
			a.SSID, a.IP, at,
		)
		if err != nil {
			return fmt.Errorf("updating known network: %w", err)
		}
	}

	return nil
}

// LastKnownNetwork returns the most recently connected network.
//
// Returns:
//   - *Network: The network, or nil wrapped in ErrNoHistory if none recorded
//   - error: ErrNoHistory if no successful connection has been stored
func (s *Store) LastKnownNetwork(ctx context.Context) (*Network, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT ssid, last_ip, last_connected_at
		 FROM networks
		 ORDER BY last_connected_at DESC
		 LIMIT 1`,
	)

	var n Network
	if err := row.Scan(&n.SSID, &n.LastIP, &n.LastConnectedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoHistory
		}
		return nil, fmt.Errorf("reading last known network: %w", err)
	}

	return &n, nil
}

// RecentAttempts returns up to limit attempts, most recent first.
func (s *Store) RecentAttempts(ctx context.Context, limit int) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ssid, success, error, duration_ms, ip, at
		 FROM attempts
		 ORDER BY at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("reading attempts: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var durationMs int64
		if err := rows.Scan(&a.SSID, &a.Success, &a.Error, &durationMs, &a.IP, &a.At); err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
		}
		a.Duration = time.Duration(durationMs) * time.Millisecond
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attempts: %w", err)
	}

	return attempts, nil
}

// Prune removes attempt records older than the retention period.
//
// Returns:
//   - int64: Number of records removed
//   - error: If the delete fails
func (s *Store) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)

	res, err := s.db.ExecContext(ctx, `DELETE FROM attempts WHERE at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning attempts: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning attempts: %w", err)
	}

	return removed, nil
}

// HealthCheck verifies the store is reachable.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("state store health check: %w", err)
	}
	return nil
}

// Path returns the filesystem path to the state file.
func (s *Store) Path() string {
	return s.path
}

// Close closes the state store gracefully.
//
// Returns:
//   - error: If closing fails
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing state store: %w", err)
	}
	return nil
}
