// internal/cli/serve.go
//
// `salesdash serve` – process entry point.
//
// Start-up order
// --------------
//
//  1. Resolve paths and load settings (config.Get).  Any error is fatal.
//
//  2. Start the rotating file logger in the resolved log directory.
//
//  3. Take the single-instance lock in the data directory.
//
//  4. Open the SQLite file, ensure bookkeeping tables, and stamp the start.
//
//  5. Serve /healthz, /metrics, and (debug only) /debug/config until
//     SIGINT or SIGTERM.

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mim3/salesdash/internal/config"
	"github.com/mim3/salesdash/internal/database"
	"github.com/mim3/salesdash/internal/instance"
	"github.com/mim3/salesdash/internal/logger"
	"github.com/mim3/salesdash/internal/server"
)

// NewServeCommand creates the serve subcommand.
func NewServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.listen_addr)")
	return cmd
}

func serve(ctx context.Context, addr string) error {
	s, err := config.Get()
	if err != nil {
		return err
	}
	rp, err := config.ResolvedPaths()
	if err != nil {
		return err
	}

	log, err := logger.New(s)
	if err != nil {
		return fmt.Errorf("start logger: %w", err)
	}
	defer log.Sync()
	log.Infow("starting", "version", Version, "install_mode", rp.Mode, "base_dir", rp.BaseDir)

	lock, err := instance.Acquire(rp.DataDir, s.App.Name)
	if err != nil {
		return err
	}
	defer lock.Release()

	db, err := database.Open(s)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Infow("database online", "path", rp.DatabasePath)

	if err := database.EnsureSchema(ctx, db); err != nil {
		return err
	}
	if err := database.RecordStartup(ctx, db, Version, string(rp.Mode)); err != nil {
		return err
	}

	if addr == "" {
		addr = s.Server.ListenAddr
	}
	h := server.Router(server.Deps{Settings: s, Paths: rp, DB: db, Version: Version})
	return server.Run(ctx, server.New(addr, h), nil)
}
