package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/DoyleJ11/impostor/internal/persist"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "IMPOSTOR"
	releaseVersion = "1.0.0"
)

type Config struct {
	Bind            string
	Port            int
	LogLevel        string
	LogFormat       string
	StoreDriver     string
	StorePath       string
	StoreDSN        string
	WordsDir        string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

var logLevels = []string{"debug", "info", "warn", "error"}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level %q (want one of %s)", c.LogLevel, strings.Join(logLevels, ", "))
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q (want console or json)", c.LogFormat)
	}
	switch c.StoreDriver {
	case persist.DriverMemory:
	case persist.DriverFile, persist.DriverSQLite:
		if strings.TrimSpace(c.StorePath) == "" {
			return fmt.Errorf("--store-path is required for the %s store", c.StoreDriver)
		}
	case persist.DriverPostgres:
		if strings.TrimSpace(c.StoreDSN) == "" {
			return errors.New("--store-dsn is required for the postgres store")
		}
	default:
		return fmt.Errorf("invalid store driver %q (want one of %s)", c.StoreDriver, strings.Join(persist.Drivers, ", "))
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

func (c *Config) Store() persist.Config {
	return persist.Config{Driver: c.StoreDriver, Path: c.StorePath, DSN: c.StoreDSN}
}

// LoadDotEnv copies a .env file into the process environment. A missing
// file is not an error; variables already set win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// NewCommand builds the server command. Every flag can also be set
// through an IMPOSTOR_ prefixed environment variable, which .env may
// provide. run is called with the validated config.
func NewCommand(cfg *Config, run func(context.Context, *Config) error) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "impostor",
		Short:         "Game server for Impostor, the pass-the-phone party game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: IMPOSTOR_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: IMPOSTOR_PORT)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "debug, info, warn or error (env: IMPOSTOR_LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format", "console", "console or json (env: IMPOSTOR_LOG_FORMAT)")
	fs.StringVar(&cfg.StoreDriver, "store", persist.DriverMemory, "snapshot store: memory, file, sqlite or postgres (env: IMPOSTOR_STORE)")
	fs.StringVar(&cfg.StorePath, "store-path", "", "directory for the file store, database file for sqlite (env: IMPOSTOR_STORE_PATH)")
	fs.StringVar(&cfg.StoreDSN, "store-dsn", "", "postgres connection string (env: IMPOSTOR_STORE_DSN)")
	fs.StringVar(&cfg.WordsDir, "words-dir", "", "directory with words_<lang>.csv overrides (env: IMPOSTOR_WORDS_DIR)")
	fs.StringSliceVar(&cfg.AllowedOrigins, "allowed-origins", nil, "extra websocket origin patterns, comma separated (env: IMPOSTOR_ALLOWED_ORIGINS)")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "grace period for open connections on shutdown (env: IMPOSTOR_SHUTDOWN_TIMEOUT)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("impostor v{{.Version}}\n")

	return cmd
}
