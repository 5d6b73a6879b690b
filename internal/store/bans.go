// SPDX-License-Identifier: MIT
package store

import (
	"context"
	"database/sql"
	"time"
)

// schema uses CREATE TABLE IF NOT EXISTS rather than a migrations
// table: the ban store has one table and no history to track.
const schema = `
CREATE TABLE IF NOT EXISTS engine_bans (
	engine       TEXT PRIMARY KEY,
	fail_count   INTEGER NOT NULL DEFAULT 0,
	banned_until INTEGER NOT NULL DEFAULT 0,
	last_failure INTEGER NOT NULL DEFAULT 0,
	last_error   TEXT NOT NULL DEFAULT ''
);
`

// BanStore persists per-engine failure counts and ban expiry across
// restarts, so a sick engine found banned at shutdown stays banned
// after a restart instead of getting a free retry.
type BanStore struct {
	db *DB
}

// NewBanStore opens db and ensures the engine_bans table exists.
func NewBanStore(db *DB) (*BanStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), TimeoutMigration)
	defer cancel()
	if _, err := db.sql.ExecContext(ctx, schema); err != nil {
		return nil, err
	}
	return &BanStore{db: db}, nil
}

// Ban is the persisted suspension state for one engine.
type Ban struct {
	Engine      string
	FailCount   int
	BannedUntil time.Time
	LastFailure time.Time
	LastError   string
}

// Get returns the ban record for engine, or (Ban{}, false) if none
// has been recorded.
func (s *BanStore) Get(ctx context.Context, engine string) (Ban, bool) {
	ctx, cancel := context.WithTimeout(ctx, TimeoutRead)
	defer cancel()

	var b Ban
	var bannedUntil, lastFailure int64
	row := s.db.sql.QueryRowContext(ctx,
		s.db.rebind(`SELECT engine, fail_count, banned_until, last_failure, last_error FROM engine_bans WHERE engine = ?`),
		engine)
	if err := row.Scan(&b.Engine, &b.FailCount, &bannedUntil, &lastFailure, &b.LastError); err != nil {
		return Ban{}, false
	}
	b.BannedUntil = time.Unix(bannedUntil, 0)
	b.LastFailure = time.Unix(lastFailure, 0)
	return b, true
}

// RecordFailure increments engine's failure count and sets its ban
// expiry to until. until is computed by the caller from
// search.ban_time_on_fail / max_ban_time_on_fail so the store stays
// ignorant of backoff policy.
//
// Upsert syntax differs enough across sqlite/postgres/mysql/mssql
// that a select-then-update-or-insert inside a transaction is the
// one form that runs unmodified on all four.
func (s *BanStore) RecordFailure(ctx context.Context, engine, lastError string, until time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, TimeoutWrite)
	defer cancel()

	now := time.Now().Unix()
	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var failCount int
	err = tx.QueryRowContext(ctx, s.db.rebind(`SELECT fail_count FROM engine_bans WHERE engine = ?`), engine).Scan(&failCount)
	switch {
	case err == sql.ErrNoRows:
		_, err = tx.ExecContext(ctx, s.db.rebind(`
			INSERT INTO engine_bans (engine, fail_count, banned_until, last_failure, last_error)
			VALUES (?, 1, ?, ?, ?)
		`), engine, until.Unix(), now, lastError)
	case err == nil:
		_, err = tx.ExecContext(ctx, s.db.rebind(`
			UPDATE engine_bans SET fail_count = ?, banned_until = ?, last_failure = ?, last_error = ?
			WHERE engine = ?
		`), failCount+1, until.Unix(), now, lastError, engine)
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Clear resets engine's record after a successful request, so the
// next failure starts counting from zero rather than compounding a
// stale streak.
func (s *BanStore) Clear(ctx context.Context, engine string) error {
	ctx, cancel := context.WithTimeout(ctx, TimeoutWrite)
	defer cancel()
	_, err := s.db.sql.ExecContext(ctx, s.db.rebind(`DELETE FROM engine_bans WHERE engine = ?`), engine)
	return err
}

// IsBanned reports whether engine is currently serving a ban.
func (s *BanStore) IsBanned(ctx context.Context, engine string) bool {
	b, ok := s.Get(ctx, engine)
	if !ok {
		return false
	}
	return time.Now().Before(b.BannedUntil)
}

// SweepExpired deletes every ban record whose expiry has passed,
// called from the scheduled ban-expiry sweep so the table doesn't
// accumulate stale rows for engines that have long since recovered.
func (s *BanStore) SweepExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, TimeoutWrite)
	defer cancel()
	res, err := s.db.sql.ExecContext(ctx, s.db.rebind(`DELETE FROM engine_bans WHERE banned_until < ?`), time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// All returns every currently-recorded ban, used by the stats
// endpoint to report which engines are suspended.
func (s *BanStore) All(ctx context.Context) ([]Ban, error) {
	ctx, cancel := context.WithTimeout(ctx, TimeoutRead)
	defer cancel()

	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT engine, fail_count, banned_until, last_failure, last_error FROM engine_bans`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ban
	for rows.Next() {
		var b Ban
		var bannedUntil, lastFailure int64
		if err := rows.Scan(&b.Engine, &b.FailCount, &bannedUntil, &lastFailure, &b.LastError); err != nil {
			return nil, err
		}
		b.BannedUntil = time.Unix(bannedUntil, 0)
		b.LastFailure = time.Unix(lastFailure, 0)
		out = append(out, b)
	}
	return out, rows.Err()
}
