// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/strafetrakk/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Settings keys.
const (
	KeyThresholdMs      = "strafeThresholdMs"
	KeyLeftKey          = "strafeLeftKey"
	KeyRightKey         = "strafeRightKey"
	KeySettingsRevision = "settingsRevision"
)

// Store wraps SQLite access for settings and archived sessions.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			left_key TEXT NOT NULL,
			right_key TEXT NOT NULL,
			threshold_ms REAL NOT NULL,
			source TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_samples (
			session_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			delta_ms REAL NOT NULL,
			PRIMARY KEY (session_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadSettings reads the persisted strafe config. Absent or unusable values
// fall back to the defaults; only database failures are returned.
func (s *Store) LoadSettings(ctx context.Context) (model.StrafeConfig, error) {
	cfg := model.DefaultStrafeConfig()
	values, err := s.readSettings(ctx, KeyThresholdMs, KeyLeftKey, KeyRightKey)
	if err != nil {
		return cfg, err
	}
	if raw, ok := values[KeyThresholdMs]; ok {
		if v, perr := strconv.ParseFloat(strings.TrimSpace(raw), 64); perr == nil && v > 0 && !math.IsInf(v, 0) {
			cfg.ThresholdMs = v
		}
	}
	if v := strings.TrimSpace(values[KeyLeftKey]); v != "" {
		cfg.LeftKey = v
	}
	if v := strings.TrimSpace(values[KeyRightKey]); v != "" {
		cfg.RightKey = v
	}
	if cfg.LeftKey == cfg.RightKey {
		def := model.DefaultStrafeConfig()
		cfg.LeftKey, cfg.RightKey = def.LeftKey, def.RightKey
	}
	return cfg, nil
}

// SaveSettings writes the three strafe settings in one transaction.
func (s *Store) SaveSettings(ctx context.Context, cfg model.StrafeConfig) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	values := [][2]string{
		{KeyThresholdMs, strconv.FormatFloat(cfg.ThresholdMs, 'f', -1, 64)},
		{KeyLeftKey, cfg.LeftKey},
		{KeyRightKey, cfg.RightKey},
	}
	for _, kv := range values {
		if err = upsertSetting(ctx, tx, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// NotifySettingsChanged bumps the settings revision so running trackers reload.
func (s *Store) NotifySettingsChanged(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, '1')
		 ON CONFLICT(key) DO UPDATE SET value = CAST(CAST(value AS INTEGER) + 1 AS TEXT)`,
		KeySettingsRevision)
	return err
}

// SettingsRevision returns the current settings revision, 0 if never bumped.
func (s *Store) SettingsRevision(ctx context.Context) (int64, error) {
	values, err := s.readSettings(ctx, KeySettingsRevision)
	if err != nil {
		return 0, err
	}
	raw, ok := values[KeySettingsRevision]
	if !ok {
		return 0, nil
	}
	rev, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, nil
	}
	return rev, nil
}

// SetRaw writes a single settings value as-is.
func (s *Store) SetRaw(ctx context.Context, key, value string) error {
	return upsertSetting(ctx, s.db, key, value)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertSetting(ctx context.Context, db execer, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func (s *Store) readSettings(ctx context.Context, keys ...string) (map[string]string, error) {
	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		placeholders[i] = "?"
		args[i] = k
	}
	query := fmt.Sprintf(`SELECT key, value FROM settings WHERE key IN (%s)`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	values := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// ErrEmptySession is returned when archiving a session without samples.
var ErrEmptySession = errors.New("session has no samples")

// InsertSession archives a finished session and its samples in order.
func (s *Store) InsertSession(ctx context.Context, stats model.SessionStats, samples []float64) (id int64, err error) {
	if len(samples) == 0 {
		return 0, ErrEmptySession
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (started_at, ended_at, left_key, right_key, threshold_ms, source)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		stats.StartedAt.Format(time.RFC3339Nano),
		stats.EndedAt.Format(time.RFC3339Nano),
		stats.LeftKey,
		stats.RightKey,
		stats.ThresholdMs,
		stats.Source,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO session_samples (session_id, seq, delta_ms) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, v := range samples {
		if _, err = stmt.ExecContext(ctx, id, i, v); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "s.ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT s.id, s.started_at, s.ended_at, s.left_key, s.right_key, s.threshold_ms, s.source,
			COUNT(ss.seq), COALESCE(AVG(ABS(ss.delta_ms)), 0)
		FROM sessions s
		LEFT JOIN session_samples ss ON ss.session_id = s.id
		WHERE %s
		GROUP BY s.id
		ORDER BY s.ended_at ASC, s.id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var startedAt, endedAt string
		if err := rows.Scan(&agg.SessionID, &startedAt, &endedAt, &agg.LeftKey, &agg.RightKey,
			&agg.ThresholdMs, &agg.Source, &agg.Samples, &agg.MeanAbsMs); err != nil {
			return nil, err
		}
		if agg.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if agg.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	return sessions, nil
}

// ListSamples returns the samples of the given sessions, in session order and
// arrival order within each session.
func (s *Store) ListSamples(ctx context.Context, sessionIDs []int64) ([]float64, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT delta_ms FROM session_samples
		WHERE session_id IN (%s)
		ORDER BY session_id ASC, seq ASC`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
