// Package config declares the flag and environment surface of the typerace
// binaries. Every flag can also be set through a TYPERACE_ environment
// variable; explicit flags win over the environment.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is shared by every binary: --redis-addr becomes TYPERACE_REDIS_ADDR.
const EnvPrefix = "TYPERACE"

// Config carries the game server settings.
type Config struct {
	Bind      string
	Port      int
	ClientURL string

	NameMax   int
	Countdown time.Duration
	QueueSize int

	DatabaseURL string
	SQLitePath  string

	RedisAddr  string
	RedisDB    int
	RedisQueue string

	Metrics  bool
	LogLevel string
}

// Addr is the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.NameMax < 1 {
		return fmt.Errorf("invalid name-max (must be positive): %d", c.NameMax)
	}
	if c.Countdown <= 0 {
		return fmt.Errorf("invalid countdown (must be positive): %s", c.Countdown)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("invalid queue-size (must be positive): %d", c.QueueSize)
	}
	if c.RedisAddr != "" && c.RedisQueue == "" {
		return fmt.Errorf("redis-queue must not be empty when redis-addr is set")
	}
	return nil
}

// RegisterServer declares the server flags on cmd and binds them to the
// environment.
func RegisterServer(cmd *cobra.Command, cfg *Config) {
	fs := cmd.Flags()

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: TYPERACE_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: TYPERACE_PORT)")
	fs.StringVar(&cfg.ClientURL, "client-url", "http://localhost:5173", "base URL QR codes send players to (env: TYPERACE_CLIENT_URL)")

	fs.IntVar(&cfg.NameMax, "name-max", 16, "maximum display name length in runes (env: TYPERACE_NAME_MAX)")
	fs.DurationVar(&cfg.Countdown, "countdown", 5*time.Second, "delay between round announcement and play (env: TYPERACE_COUNTDOWN)")
	fs.IntVar(&cfg.QueueSize, "queue-size", 64, "outbound frames buffered per session (env: TYPERACE_QUEUE_SIZE)")

	fs.StringVar(&cfg.DatabaseURL, "database-url", "", "postgres connection string for round history; empty disables it (env: TYPERACE_DATABASE_URL)")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", "", "sqlite file for round history; empty disables it (env: TYPERACE_SQLITE_PATH)")

	fs.StringVar(&cfg.RedisAddr, "redis-addr", "", "redis address for queueing round records; empty disables it (env: TYPERACE_REDIS_ADDR)")
	fs.IntVar(&cfg.RedisDB, "redis-db", 0, "redis database number (env: TYPERACE_REDIS_DB)")
	fs.StringVar(&cfg.RedisQueue, "redis-queue", "typerace_rounds", "redis list round records are pushed to (env: TYPERACE_REDIS_QUEUE)")

	fs.BoolVar(&cfg.Metrics, "metrics", true, "expose Prometheus metrics on /metrics (env: TYPERACE_METRICS)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "logrus level: trace, debug, info, warn, error (env: TYPERACE_LOG_LEVEL)")

	bindEnv(fs)
}

// HistorianConfig carries the settings of the queue drainer.
type HistorianConfig struct {
	DatabaseURL string

	RedisAddr  string
	RedisDB    int
	RedisQueue string

	FlushInterval time.Duration
	BatchSize     int

	LogLevel string
}

func (c *HistorianConfig) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database-url is required")
	}
	if c.RedisAddr == "" {
		return fmt.Errorf("redis-addr is required")
	}
	if c.RedisQueue == "" {
		return fmt.Errorf("redis-queue must not be empty")
	}
	if c.FlushInterval <= 0 {
		return fmt.Errorf("invalid flush-interval (must be positive): %s", c.FlushInterval)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("invalid batch-size (must be positive): %d", c.BatchSize)
	}
	return nil
}

// RegisterHistorian declares the historian flags on cmd and binds them to
// the environment.
func RegisterHistorian(cmd *cobra.Command, cfg *HistorianConfig) {
	fs := cmd.Flags()

	fs.StringVar(&cfg.DatabaseURL, "database-url", "", "postgres connection string (env: TYPERACE_DATABASE_URL)")

	fs.StringVar(&cfg.RedisAddr, "redis-addr", "localhost:6379", "redis address to drain round records from (env: TYPERACE_REDIS_ADDR)")
	fs.IntVar(&cfg.RedisDB, "redis-db", 0, "redis database number (env: TYPERACE_REDIS_DB)")
	fs.StringVar(&cfg.RedisQueue, "redis-queue", "typerace_rounds", "redis list to pop round records from (env: TYPERACE_REDIS_QUEUE)")

	fs.DurationVar(&cfg.FlushInterval, "flush-interval", 10*time.Second, "how often buffered records are written out (env: TYPERACE_FLUSH_INTERVAL)")
	fs.IntVar(&cfg.BatchSize, "batch-size", 100, "records per write batch (env: TYPERACE_BATCH_SIZE)")

	fs.StringVar(&cfg.LogLevel, "log-level", "info", "logrus level: trace, debug, info, warn, error (env: TYPERACE_LOG_LEVEL)")

	bindEnv(fs)
}

// bindEnv wires every declared flag to its TYPERACE_ variable. Environment
// values only apply when the flag was not set on the command line.
func bindEnv(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
