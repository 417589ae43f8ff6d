// Package app wires configuration, logging, the user-table transport, the
// credential store, the session gate and the terminal, and runs them until
// the user exits or the process is signalled.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/pricegate/internal/cli"
	"github.com/dmitrijs2005/pricegate/internal/config"
	"github.com/dmitrijs2005/pricegate/internal/cryptox"
	"github.com/dmitrijs2005/pricegate/internal/directory"
	"github.com/dmitrijs2005/pricegate/internal/filex"
	"github.com/dmitrijs2005/pricegate/internal/logging"
	"github.com/dmitrijs2005/pricegate/internal/session"
	"github.com/dmitrijs2005/pricegate/internal/transport/s3sheet"
	"github.com/dmitrijs2005/pricegate/internal/transport/sqltable"
	"github.com/dmitrijs2005/pricegate/internal/transport/yamlfile"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	transport directory.Transport
	store     *directory.Store
	terminal  *cli.App
}

// openTransport is a test seam; it picks the backend named by Config.Transport.
var openTransport = defaultOpenTransport

func defaultOpenTransport(ctx context.Context, c *config.Config) (directory.Transport, error) {
	ctx, cancel := context.WithTimeout(ctx, c.TransportTimeout)
	defer cancel()

	switch c.Transport {
	case config.TransportSQLite:
		if filex.IsSQLiteFile(c.SQLitePath) {
			if _, err := filex.EnsureParentDir(c.SQLitePath); err != nil {
				return nil, err
			}
		}
		t, err := sqltable.Open(ctx, sqltable.SQLite, c.SQLitePath)
		if err != nil {
			return nil, err
		}
		return t, nil
	case config.TransportPostgres:
		t, err := sqltable.Open(ctx, sqltable.Postgres, c.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return t, nil
	case config.TransportFile:
		if _, err := filex.EnsureParentDir(c.FilePath); err != nil {
			return nil, err
		}
		return yamlfile.New(c.FilePath), nil
	case config.TransportS3:
		t, err := s3sheet.Open(ctx, s3sheet.Options{
			Bucket:    c.S3Bucket,
			Key:       c.S3ObjectKey,
			Region:    c.S3Region,
			Endpoint:  c.S3BaseEndpoint,
			AccessKey: c.S3RootUser,
			SecretKey: c.S3RootPassword,
		})
		if err != nil {
			return nil, err
		}
		return t, nil
	case config.TransportMemory:
		return directory.NewMemoryTransport(), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", c.Transport)
	}
}

// NewApp builds the application. Operator logs go to stderr; the terminal
// reads stdin and writes stdout.
func NewApp(ctx context.Context, c *config.Config, stdin io.Reader, stdout, stderr io.Writer) (*App, error) {
	logger := logging.New(stderr, c.LogFormat, c.LogLevel).With("transport", c.Transport)

	hasher, err := cryptox.NewHasher(c.Digest, c.BcryptCost)
	if err != nil {
		return nil, err
	}

	t, err := openTransport(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("transport init error: %w", err)
	}

	store := directory.NewStore(t, hasher, logger, c.TransportTimeout)
	gate := session.NewGate(store, logger, c.EmergencyAccess)
	terminal := cli.NewApp(gate, logger, stdin, stdout)

	return &App{config: c, logger: logger, transport: t, store: store, terminal: terminal}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	stop := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-stop:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(stop)
	}
}

// Run blocks until the terminal returns or ctx is cancelled, then closes
// the transport. On cancellation a gate call in progress is waited for and
// later ones are refused; a terminal blocked on input is abandoned.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	stopSignals := app.initSignalHandler(cancelFunc)
	defer stopSignals()

	app.logger.Info(ctx, "Starting app...", "digest", app.config.Digest)
	if app.config.EmergencyAccess {
		app.logger.Warn(ctx, "emergency admin login is enabled")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		app.terminal.Run(ctx)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		app.logger.Info(ctx, "shutting down")
	}
	app.terminal.Quiesce()

	return app.Close()
}

func (app *App) Close() error {
	return app.store.Close()
}
