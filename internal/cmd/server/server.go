// Package server parses server command flags and starts the HTTP runtime.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/louisbranch/zkgames/internal/api"
	"github.com/louisbranch/zkgames/internal/auth"
	detectiveservice "github.com/louisbranch/zkgames/internal/detective/service"
	"github.com/louisbranch/zkgames/internal/hub"
	entrypoint "github.com/louisbranch/zkgames/internal/platform/cmd"
	seekservice "github.com/louisbranch/zkgames/internal/seek/service"
	"github.com/louisbranch/zkgames/internal/sequence"
	"github.com/louisbranch/zkgames/internal/storage/sqlite"
)

// Auth modes accepted by the server command.
const (
	authModeGrant    = "grant"
	authModeAllowAll = "allow-all"
)

// defaultEpoch anchors the height sequence when no epoch is configured.
const defaultEpoch = "2024-01-01T00:00:00Z"

// Config holds server command configuration.
type Config struct {
	Port     int    `env:"ZKGAMES_PORT" envDefault:"8080"`
	Addr     string `env:"ZKGAMES_ADDR"`
	DBPath   string `env:"ZKGAMES_DB_PATH" envDefault:"zkgames.db"`
	AuthMode string `env:"ZKGAMES_AUTH_MODE" envDefault:"grant"`
	HubMode  string `env:"ZKGAMES_HUB_MODE" envDefault:"log"`
	Epoch    string `env:"ZKGAMES_SEQUENCE_EPOCH"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The server listen address (overrides -port)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the SQLite database file")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the adjudication API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServer, func(ctx context.Context) error {
		return run(ctx, cfg)
	})
}

func run(ctx context.Context, cfg Config) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	authorizer, err := buildAuthorizer(cfg.AuthMode)
	if err != nil {
		return err
	}
	notifier, err := buildNotifier(cfg.HubMode)
	if err != nil {
		return err
	}
	source, err := buildSequence(cfg.Epoch)
	if err != nil {
		return err
	}

	detective := detectiveservice.New(
		detectiveservice.Stores{Cases: store, Games: store, Stats: store},
		authorizer, notifier, source,
	)
	seek := seekservice.New(
		seekservice.Stores{Scenes: store, Games: store},
		authorizer, notifier, source,
	)

	addr := cfg.Addr
	if addr == "" {
		addr = fmt.Sprintf(":%d", cfg.Port)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(detective, seek).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server listening addr=%s db=%s auth=%s", addr, cfg.DBPath, cfg.AuthMode)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func buildAuthorizer(mode string) (auth.Authorizer, error) {
	switch mode {
	case authModeGrant:
		grantCfg, err := auth.LoadGrantConfigFromEnv(nil)
		if err != nil {
			return nil, err
		}
		return auth.NewGrantVerifier(grantCfg)
	case authModeAllowAll:
		log.Printf("authorization disabled: every credential is accepted")
		return auth.AllowAll{}, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}
}

func buildNotifier(mode string) (hub.Notifier, error) {
	switch mode {
	case "log":
		return hub.LogNotifier{}, nil
	case "noop":
		return hub.Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown hub mode %q", mode)
	}
}

func buildSequence(epoch string) (sequence.Source, error) {
	if epoch == "" {
		epoch = defaultEpoch
	}
	anchor, err := time.Parse(time.RFC3339, epoch)
	if err != nil {
		return nil, fmt.Errorf("parse sequence epoch: %w", err)
	}
	return sequence.NewClock(anchor, nil), nil
}
