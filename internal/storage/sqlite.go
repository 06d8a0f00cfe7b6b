package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure Go driver, no CGO

	"github.com/typerace/server/internal/game"
)

// SQLite records rounds into an embedded database file. It carries the same
// schema shape as the Postgres backend so the ranking query is shared.
type SQLite struct {
	db *sql.DB
}

var _ game.TopScoreSink = (*SQLite)(nil)
var _ TopScoreQuerier = (*SQLite)(nil)

// OpenSQLite creates or opens the database file, creating parent directories
// as needed, and runs the migration.
func OpenSQLite(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return s, nil
}

// migrate creates the schema if it doesn't exist.
func (s *SQLite) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS rounds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id INTEGER NOT NULL,
			round_id INTEGER NOT NULL,
			mode TEXT NOT NULL,
			style TEXT NOT NULL,
			language TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			words_count INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			victor TEXT NOT NULL,
			recorded_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_rounds_game ON rounds(game_id);

		CREATE TABLE IF NOT EXISTS round_scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			round_row INTEGER NOT NULL REFERENCES rounds(id) ON DELETE CASCADE,
			user_name TEXT NOT NULL,
			points INTEGER NOT NULL,
			speed REAL NOT NULL,
			best_speed REAL NOT NULL,
			victories INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_round_scores_user ON round_scores(user_name, speed DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record implements game.TopScoreSink.
func (s *SQLite) Record(ctx context.Context, rec game.RoundRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: cannot begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO rounds
		 (game_id, round_id, mode, style, language, difficulty, words_count, duration_ms, victor, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.GameID, rec.RoundID, rec.Mode, rec.Style, rec.Language,
		rec.Difficulty, rec.WordsCount, rec.RoundDuration, rec.Victor, rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save round: %w", err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	for _, sc := range rec.Scores {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO round_scores (round_row, user_name, points, speed, best_speed, victories)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			rowID, sc.UserName, sc.Points, sc.Speed, sc.BestSpeed, sc.Victories,
		); err != nil {
			return fmt.Errorf("storage: cannot save round score: %w", err)
		}
	}
	return tx.Commit()
}

// TopScores returns the best recorded speed per player, fastest first.
func (s *SQLite) TopScores(ctx context.Context, limit int) ([]TopEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_name, MAX(speed), COUNT(*)
		 FROM round_scores
		 GROUP BY user_name
		 ORDER BY MAX(speed) DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query top scores: %w", err)
	}
	defer rows.Close()

	var entries []TopEntry
	for rows.Next() {
		var e TopEntry
		if err := rows.Scan(&e.UserName, &e.BestSpeed, &e.Rounds); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}
