package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/typerace/server/internal/game"
)

// Postgres records rounds into a Postgres database through a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ game.TopScoreSink = (*Postgres)(nil)
var _ TopScoreQuerier = (*Postgres)(nil)

// OpenPostgres connects, pings and ensures the schema exists.
func OpenPostgres(ctx context.Context, connStr string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("schema setup: %w", err)
	}
	log.Printf("storage: connected to postgres")
	return p, nil
}

// ensureSchema runs each DDL statement on its own; pgx's extended protocol
// does not take multi-statement strings.
func (p *Postgres) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rounds (
			id BIGSERIAL PRIMARY KEY,
			game_id BIGINT NOT NULL,
			round_id INT NOT NULL,
			mode TEXT NOT NULL,
			style TEXT NOT NULL,
			language TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			words_count INT NOT NULL,
			duration_ms BIGINT NOT NULL,
			victor TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS round_scores (
			id BIGSERIAL PRIMARY KEY,
			round_row BIGINT NOT NULL REFERENCES rounds(id) ON DELETE CASCADE,
			user_name TEXT NOT NULL,
			points INT NOT NULL,
			speed DOUBLE PRECISION NOT NULL,
			best_speed DOUBLE PRECISION NOT NULL,
			victories INT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_game ON rounds(game_id)`,
		`CREATE INDEX IF NOT EXISTS idx_round_scores_user ON round_scores(user_name, speed DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record implements game.TopScoreSink: one transaction per finished round,
// the round row plus one score row per player.
func (p *Postgres) Record(ctx context.Context, rec game.RoundRecord) error {
	err := pgx.BeginTxFunc(ctx, p.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return insertRoundTx(ctx, tx, rec)
	})
	if err != nil {
		return fmt.Errorf("record round %d of game %d: %w", rec.RoundID, rec.GameID, err)
	}
	return nil
}

// RecordBatch persists several rounds in a single transaction; the historian
// uses it when flushing its queue backlog.
func (p *Postgres) RecordBatch(ctx context.Context, recs []game.RoundRecord) error {
	if len(recs) == 0 {
		return nil
	}
	err := pgx.BeginTxFunc(ctx, p.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range recs {
			if e := insertRoundTx(ctx, tx, rec); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record batch of %d rounds: %w", len(recs), err)
	}
	return nil
}

func insertRoundTx(ctx context.Context, tx pgx.Tx, rec game.RoundRecord) error {
	var rowID int64
	insRound := `
		INSERT INTO rounds (game_id, round_id, mode, style, language, difficulty, words_count, duration_ms, victor, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, to_timestamp($10 / 1000.0))
		RETURNING id
	`
	if e := tx.QueryRow(ctx, insRound,
		rec.GameID, rec.RoundID, rec.Mode, rec.Style, rec.Language,
		rec.Difficulty, rec.WordsCount, rec.RoundDuration, rec.Victor, rec.Timestamp,
	).Scan(&rowID); e != nil {
		return e
	}

	insScore := `
		INSERT INTO round_scores (round_row, user_name, points, speed, best_speed, victories)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, sc := range rec.Scores {
		if _, e := tx.Exec(ctx, insScore,
			rowID, sc.UserName, sc.Points, sc.Speed, sc.BestSpeed, sc.Victories,
		); e != nil {
			return e
		}
	}
	return nil
}

// TopScores returns the best recorded speed per player, fastest first.
func (p *Postgres) TopScores(ctx context.Context, limit int) ([]TopEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := p.pool.Query(ctx, `
		SELECT user_name, MAX(speed), COUNT(*)
		FROM round_scores
		GROUP BY user_name
		ORDER BY MAX(speed) DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top scores: %w", err)
	}
	defer rows.Close()

	var entries []TopEntry
	for rows.Next() {
		var e TopEntry
		if err := rows.Scan(&e.UserName, &e.BestSpeed, &e.Rounds); err != nil {
			return nil, fmt.Errorf("scan top score row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top score rows: %w", err)
	}
	return entries, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}
