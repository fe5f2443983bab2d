// Package handoff keeps a privacy-conscious log of page visits and contact
// handoffs in SQLite. Message content is never stored, only which channel
// and strategy were used.
package handoff

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Zachkp/portfolio-contact/internal/dispatch"
	"github.com/Zachkp/portfolio-contact/pkg/logging"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Record is one logged handoff.
type Record struct {
	ID          int64     `json:"id"`
	Channel     string    `json:"channel"`
	Strategy    string    `json:"strategy"`
	Environment string    `json:"environment"`
	FellBack    bool      `json:"fell_back"`
	HashedIP    string    `json:"hashed_ip,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Stats summarises visits and handoffs for the admin dashboard.
type Stats struct {
	TotalVisits    int64            `json:"total_visits"`
	UniqueVisitors int64            `json:"unique_visitors"`
	VisitsToday    int64            `json:"visits_today"`
	VisitsThisWeek int64            `json:"visits_this_week"`
	TotalHandoffs  int64            `json:"total_handoffs"`
	Fallbacks      int64            `json:"fallbacks"`
	ByChannel      map[string]int64 `json:"by_channel"`
	ByStrategy     map[string]int64 `json:"by_strategy"`
	ByEnvironment  map[string]int64 `json:"by_environment"`
}

// Store is the SQLite-backed log.
type Store struct {
	db     *sql.DB
	salt   string
	logger *logging.Logger
	now    func() time.Time
}

// Open creates or opens the database at path and runs migrations.
func Open(path string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	salt, err := NewSalt()
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, salt: salt, logger: logger, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS visits (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		hashed_ip   TEXT NOT NULL,
		user_agent  TEXT,
		path        TEXT,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_visits_time ON visits(created_at);

	CREATE TABLE IF NOT EXISTS handoffs (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		channel      TEXT NOT NULL,
		strategy     TEXT NOT NULL,
		environment  TEXT NOT NULL,
		fell_back    INTEGER NOT NULL DEFAULT 0,
		hashed_ip    TEXT,
		created_at   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_handoffs_time ON handoffs(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// HashIP hashes ip with this store's salt.
func (s *Store) HashIP(ip string) string {
	return HashIP(ip, s.salt)
}

func (s *Store) stamp(t time.Time) string {
	if t.IsZero() {
		t = s.now()
	}
	return t.UTC().Format(timeLayout)
}

// RecordVisit logs a page view with a hashed address.
func (s *Store) RecordVisit(ctx context.Context, ip, userAgent, path string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visits (hashed_ip, user_agent, path, created_at)
		VALUES (?, ?, ?, ?)
	`, s.HashIP(ip), userAgent, path, s.stamp(time.Time{}))
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// RecordHandoff implements dispatch.Recorder.
func (s *Store) RecordHandoff(ctx context.Context, h dispatch.Handoff) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO handoffs (channel, strategy, environment, fell_back, hashed_ip, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, h.Channel.String(), string(h.Strategy), h.Environment, h.FellBack, clientFrom(ctx), s.stamp(h.At))
	if err != nil {
		return fmt.Errorf("record handoff: %w", err)
	}
	return nil
}

// Recent returns the latest handoffs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, channel, strategy, environment, fell_back, COALESCE(hashed_ip, ''), created_at
		FROM handoffs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query handoffs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r       Record
			created string
		)
		if err := rows.Scan(&r.ID, &r.Channel, &r.Strategy, &r.Environment, &r.FellBack, &r.HashedIP, &created); err != nil {
			return nil, fmt.Errorf("scan handoff: %w", err)
		}
		r.CreatedAt, err = time.Parse(timeLayout, created)
		if err != nil {
			s.logger.Warn("bad handoff timestamp", "id", r.ID, "value", created)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats computes the dashboard summary.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	stats := &Stats{}
	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisits, `SELECT COUNT(*) FROM visits`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visits`, nil},
		{&stats.VisitsToday, `SELECT COUNT(*) FROM visits WHERE created_at >= ?`, []any{s.stamp(today)}},
		{&stats.VisitsThisWeek, `SELECT COUNT(*) FROM visits WHERE created_at >= ?`, []any{s.stamp(weekAgo)}},
		{&stats.TotalHandoffs, `SELECT COUNT(*) FROM handoffs`, nil},
		{&stats.Fallbacks, `SELECT COUNT(*) FROM handoffs WHERE fell_back = 1`, nil},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
	}

	var err error
	if stats.ByChannel, err = s.groupCount(ctx, "channel"); err != nil {
		return nil, err
	}
	if stats.ByStrategy, err = s.groupCount(ctx, "strategy"); err != nil {
		return nil, err
	}
	if stats.ByEnvironment, err = s.groupCount(ctx, "environment"); err != nil {
		return nil, err
	}
	return stats, nil
}

// groupCount counts handoffs per value of column. column is always one of
// the fixed names passed by Stats.
func (s *Store) groupCount(ctx context.Context, column string) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) FROM handoffs GROUP BY `+column)
	if err != nil {
		return nil, fmt.Errorf("group handoffs by %s: %w", column, err)
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var (
			key string
			n   int64
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan %s count: %w", column, err)
		}
		out[key] = n
	}
	return out, rows.Err()
}

// Cleanup deletes visits and handoffs older than retention.
func (s *Store) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.stamp(s.now().Add(-retention))

	var total int64
	for _, table := range []string{"visits", "handoffs"} {
		res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE created_at < ?`, cutoff)
		if err != nil {
			return total, fmt.Errorf("cleanup %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	if total > 0 {
		s.logger.Info("privacy cleanup removed old records", "rows", total, "retention", retention.String())
	}
	return total, nil
}
