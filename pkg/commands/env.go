package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"tableflip.dev/stow/pkg/engine"
	"tableflip.dev/stow/pkg/remote"
	"tableflip.dev/stow/pkg/store"
)

// env is what every command that talks to the service needs.
type env struct {
	cfg     *store.Config
	client  *remote.Client
	log     *slog.Logger
	logFile io.Closer
}

func loadEnv() (*env, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	log, closer, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	client, err := remote.New(remote.Options{
		BaseURL:           cfg.Server,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            log,
	})
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}
	return &env{cfg: cfg, client: client, log: log, logFile: closer}, nil
}

// engine builds an engine over the client. With persist set the open nodes
// are remembered in the state directory, otherwise only in memory.
func (e *env) engine(persist bool) (*engine.Engine, error) {
	open := store.Memory()
	if persist {
		var err error
		if open, err = store.LoadOpenState(e.cfg); err != nil {
			return nil, err
		}
	}
	return engine.New(engine.Options{
		Service:     e.client,
		Parallel:    e.cfg.MaxParallel,
		PinnedQuery: e.cfg.PinnedQuery,
		OpenState:   open,
		Logger:      e.log,
	}), nil
}

func (e *env) Close() {
	if e.logFile != nil {
		_ = e.logFile.Close()
	}
}

// newLogger writes text logs to cfg.LogFile. The terminal belongs to the
// output, so without a file logs are discarded.
func newLogger(cfg *store.Config) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if cfg.LogLevel != "" {
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return nil, nil, fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
		}
	}
	if cfg.LogFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return log.With("pid", os.Getpid()), f, nil
}
