package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/okian/crowdguess/internal/domain/types"
	"github.com/okian/crowdguess/pkg/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS leaderboard (
	player_id TEXT PRIMARY KEY,
	score     INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_leaderboard_order ON leaderboard(score DESC, player_id ASC);

CREATE TABLE IF NOT EXISTS played (
	player_id   TEXT NOT NULL,
	question_id TEXT NOT NULL,
	played_at   DATETIME NOT NULL,
	PRIMARY KEY (player_id, question_id)
);

CREATE TABLE IF NOT EXISTS badges (
	player_id   TEXT NOT NULL,
	badge       TEXT NOT NULL,
	title       TEXT NOT NULL,
	question_id TEXT NOT NULL,
	awarded_at  DATETIME NOT NULL,
	PRIMARY KEY (player_id, badge)
);
`

// SQLiteStore implements Store on a SQLite database. The same database also
// backs the played tracker and the badge store, see Played and Badges.
type SQLiteStore struct {
	db *sqlx.DB
}

// OpenSQLite opens a SQLite database and runs migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer keeps increments serialized and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Increment implements Store.Increment as a single upsert.
func (s *SQLiteStore) Increment(ctx context.Context, playerID string, amount int64) (int64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if amount < 0 {
		return 0, ErrInvalidAmount
	}
	var total int64
	err := s.db.GetContext(ctx, &total, `
		INSERT INTO leaderboard (player_id, score) VALUES (?, ?)
		ON CONFLICT(player_id) DO UPDATE SET score = score + excluded.score
		RETURNING score
	`, playerID, amount)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "increment")
		return 0, fmt.Errorf("increment %s: %w", playerID, err)
	}
	return total, nil
}

// Range implements Store.Range.
func (s *SQLiteStore) Range(ctx context.Context, start, stop int) ([]Entry, error) {
	begin := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(begin).Microseconds()) / 1000)
	}()

	if start < 0 || (stop >= 0 && stop < start) {
		return nil, ErrInvalidRange
	}
	limit := -1
	if stop >= 0 {
		limit = stop - start + 1
	}

	var rows []struct {
		PlayerID string `db:"player_id"`
		Score    int64  `db:"score"`
	}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT player_id, score FROM leaderboard
		ORDER BY score DESC, player_id ASC
		LIMIT ? OFFSET ?
	`, limit, start)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "range")
		return nil, fmt.Errorf("range %d..%d: %w", start, stop, err)
	}
	out := make([]Entry, len(rows))
	for i, r := range rows {
		out[i] = Entry{Rank: start + i, PlayerID: r.PlayerID, Score: r.Score}
	}
	return out, nil
}

// Score implements Store.Score.
func (s *SQLiteStore) Score(ctx context.Context, playerID string) (int64, error) {
	var score int64
	err := s.db.GetContext(ctx, &score, "SELECT score FROM leaderboard WHERE player_id = ?", playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("score %s: %w", playerID, err)
	}
	return score, nil
}

// Rank implements Store.Rank by counting the players ordered ahead.
func (s *SQLiteStore) Rank(ctx context.Context, playerID string) (int, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	score, err := s.Score(ctx, playerID)
	if err != nil {
		return 0, err
	}
	var ahead int
	err = s.db.GetContext(ctx, &ahead, `
		SELECT COUNT(*) FROM leaderboard
		WHERE score > ? OR (score = ? AND player_id < ?)
	`, score, score, playerID)
	if err != nil {
		return 0, fmt.Errorf("rank %s: %w", playerID, err)
	}
	return ahead, nil
}

// Count implements Store.Count.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM leaderboard"); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Played returns a played tracker on the same database.
func (s *SQLiteStore) Played() *SQLitePlayed {
	return &SQLitePlayed{db: s.db}
}

// Badges returns a badge store on the same database.
func (s *SQLiteStore) Badges() *SQLiteBadges {
	return &SQLiteBadges{db: s.db}
}

// SQLitePlayed records played questions in the played table.
type SQLitePlayed struct {
	db *sqlx.DB
}

// HasPlayed reports whether the pair was marked.
func (p *SQLitePlayed) HasPlayed(ctx context.Context, playerID, questionID string) (bool, error) {
	var n int
	err := p.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM played WHERE player_id = ? AND question_id = ?", playerID, questionID)
	if err != nil {
		return false, fmt.Errorf("has played %s/%s: %w", playerID, questionID, err)
	}
	return n > 0, nil
}

// MarkPlayed records the pair; repeats are ignored.
func (p *SQLitePlayed) MarkPlayed(ctx context.Context, playerID, questionID string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO played (player_id, question_id, played_at) VALUES (?, ?, ?)
		ON CONFLICT(player_id, question_id) DO NOTHING
	`, playerID, questionID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark played %s/%s: %w", playerID, questionID, err)
	}
	return nil
}

// SQLiteBadges stores badges in the badges table.
type SQLiteBadges struct {
	db *sqlx.DB
}

// Grant inserts the badge unless the player already holds it.
func (b *SQLiteBadges) Grant(ctx context.Context, badge types.Badge) (bool, error) {
	res, err := b.db.NamedExecContext(ctx, `
		INSERT INTO badges (player_id, badge, title, question_id, awarded_at)
		VALUES (:player_id, :badge, :title, :question_id, :awarded_at)
		ON CONFLICT(player_id, badge) DO NOTHING
	`, badge)
	if err != nil {
		return false, fmt.Errorf("grant %s to %s: %w", badge.Badge, badge.PlayerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("grant %s to %s: %w", badge.Badge, badge.PlayerID, err)
	}
	return n > 0, nil
}

// List returns the player's badges, oldest first.
func (b *SQLiteBadges) List(ctx context.Context, playerID string) ([]types.Badge, error) {
	out := []types.Badge{}
	err := b.db.SelectContext(ctx, &out, `
		SELECT player_id, badge, title, question_id, awarded_at FROM badges
		WHERE player_id = ? ORDER BY awarded_at ASC, badge ASC
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("list badges %s: %w", playerID, err)
	}
	return out, nil
}
