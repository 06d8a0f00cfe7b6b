// cmd/server/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/typerace/server/internal/cache"
	"github.com/typerace/server/internal/config"
	"github.com/typerace/server/internal/game"
	"github.com/typerace/server/internal/handlers"
	"github.com/typerace/server/internal/lobby"
	"github.com/typerace/server/internal/session"
	"github.com/typerace/server/internal/storage"
	"github.com/typerace/server/internal/words"
)

const releaseVersion = "0.1.0"

func main() {
	cfg := &config.Config{}

	cmd := &cobra.Command{
		Use:     "typerace-server",
		Short:   "Realtime multiplayer typing competition server.",
		Args:    cobra.ExactArgs(0),
		Version: releaseVersion,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	config.RegisterServer(cmd, cfg)
	cmd.SilenceUsage = true
	cmd.SetVersionTemplate("typerace v{{.Version}}\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cobra.CheckErr(cmd.ExecuteContext(ctx))
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Unknown log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	dict, err := words.NewDictionary()
	if err != nil {
		return err
	}
	calc := words.NewCalculus()

	var (
		sinks   []game.TopScoreSink
		querier storage.TopScoreQuerier
	)
	if cfg.DatabaseURL != "" {
		pg, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()
		sinks = append(sinks, pg)
		querier = pg
	}
	if cfg.SQLitePath != "" {
		sq, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer sq.Close()
		sinks = append(sinks, sq)
		if querier == nil {
			querier = sq
		}
	}
	if cfg.RedisAddr != "" {
		pub, err := cache.Connect(cfg.RedisAddr, cfg.RedisDB, cfg.RedisQueue)
		if err != nil {
			return err
		}
		defer pub.Close()
		sinks = append(sinks, pub)
	}
	if len(sinks) == 0 {
		logger.Info("No round store configured, results are kept in memory only")
		sinks = []game.TopScoreSink{storage.Noop{}}
	}

	registry := session.NewRegistry(cfg.NameMax)
	send := handlers.NewSendFunc(logger)
	manager := lobby.NewManager(registry, send, lobby.GameDeps{
		Countdown: cfg.Countdown,
		Clock:     game.SystemClock(),
		Scheduler: game.TimerScheduler(),
		Dict:      dict,
		Calc:      calc,
		Sinks:     sinks,
	})

	srv := &handlers.Server{
		Logger:         logger,
		Registry:       registry,
		Lobby:          manager,
		Send:           send,
		Version:        releaseVersion,
		ClientURL:      cfg.ClientURL,
		Scores:         querier,
		QueueSize:      cfg.QueueSize,
		DisableMetrics: !cfg.Metrics,
	}

	logger.Infof("typerace v%s starting", releaseVersion)
	return srv.Serve(ctx, cfg.Addr())
}
