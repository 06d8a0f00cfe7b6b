// cmd/historian/main.go drains queued round records from Redis and persists
// them to PostgreSQL in batches, so the game server never writes to the
// database on the hot path.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/typerace/server/internal/config"
	"github.com/typerace/server/internal/game"
	"github.com/typerace/server/internal/storage"
)

const (
	releaseVersion = "0.1.0"

	// popTimeout bounds each BLPop so shutdown is noticed promptly.
	popTimeout = 3 * time.Second

	flushTimeout = 30 * time.Second
)

func main() {
	cfg := &config.HistorianConfig{}

	cmd := &cobra.Command{
		Use:     "typerace-historian",
		Short:   "Persists queued round records to PostgreSQL.",
		Args:    cobra.ExactArgs(0),
		Version: releaseVersion,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	config.RegisterHistorian(cmd, cfg)
	cmd.SilenceUsage = true
	cmd.SetVersionTemplate("typerace-historian v{{.Version}}\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cobra.CheckErr(cmd.ExecuteContext(ctx))
}

func run(ctx context.Context, cfg *config.HistorianConfig) error {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Unknown log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	store, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	defer rdb.Close()
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return err
	}

	h := &historian{
		logger:     logger,
		rdb:        rdb,
		store:      store,
		queue:      cfg.RedisQueue,
		batchSize:  cfg.BatchSize,
		flushEvery: cfg.FlushInterval,
	}
	return h.run(ctx)
}

// historian accumulates popped records and writes them out in one
// transaction per flush, on a size threshold or a timer, whichever first.
type historian struct {
	logger *logrus.Logger
	rdb    *redis.Client
	store  *storage.Postgres
	queue  string

	batchSize  int
	flushEvery time.Duration

	batchMu sync.Mutex
	batch   []game.RoundRecord
}

func (h *historian) run(ctx context.Context) error {
	ticker := time.NewTicker(h.flushEvery)
	defer ticker.Stop()

	h.logger.Infof("typerace-historian v%s draining %q", releaseVersion, h.queue)
	for {
		select {
		case <-ctx.Done():
			// Whatever is still buffered goes out before we exit.
			h.flush()
			h.logger.Info("Historian shutdown complete")
			return nil

		case <-ticker.C:
			h.flush()

		default:
			res, err := h.rdb.BLPop(ctx, popTimeout, h.queue).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || ctx.Err() != nil {
					continue
				}
				h.logger.Errorf("BLPop: %v", err)
				continue
			}
			if len(res) < 2 {
				continue
			}

			// res[0] is the queue name, res[1] the payload.
			var rec game.RoundRecord
			if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
				h.logger.Warnf("Discarding malformed round record: %v", err)
				continue
			}
			h.append(rec)
		}
	}
}

// append buffers one record. The flush runs outside the batch lock so a
// slow database write never blocks the pop loop's bookkeeping.
func (h *historian) append(rec game.RoundRecord) {
	h.batchMu.Lock()
	h.batch = append(h.batch, rec)
	full := len(h.batch) >= h.batchSize
	h.batchMu.Unlock()

	if full {
		h.flush()
	}
}

// flush writes the buffered records in a single transaction. A failed batch
// is logged and dropped; the queue is the system of record until then.
func (h *historian) flush() {
	h.batchMu.Lock()
	if len(h.batch) == 0 {
		h.batchMu.Unlock()
		return
	}
	batch := make([]game.RoundRecord, len(h.batch))
	copy(batch, h.batch)
	h.batch = h.batch[:0]
	h.batchMu.Unlock()

	// Background context: the final flush must survive shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := h.store.RecordBatch(ctx, batch); err != nil {
		h.logger.Errorf("Failed to persist %d round records: %v", len(batch), err)
		return
	}
	h.logger.Infof("Persisted %d round records", len(batch))
}
