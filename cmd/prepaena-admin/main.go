package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"prepaena_backend/internal/admin"
	"prepaena_backend/internal/config"
	"prepaena_backend/pkg/logger"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	configDir := flag.String("config", "configs", "config directory")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		admin.Run(context.Background(), nil, nil, os.Stdout, os.Stderr)
	}
	flag.Parse()

	cmd, err := admin.Parse(flag.Args())
	if err != nil {
		return admin.Run(context.Background(), nil, flag.Args(), os.Stdout, os.Stderr)
	}

	logger.InitConsole(*verbose)
	defer logger.Log.Sync()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: load config:", err)
		return admin.ExitFailure
	}
	if cfg.Database.Driver != config.DriverPostgres {
		fmt.Fprintf(os.Stderr, "error: prepaena-admin needs postgres, configured driver is %s\n", cfg.Database.Driver)
		return admin.ExitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := admin.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return admin.ExitFailure
	}
	defer pool.Close()
	logger.Log.Debug("Connected", zap.String("command", cmd.Name))

	if err := admin.Execute(ctx, admin.NewStore(pool), cmd, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return admin.ExitFailure
	}
	return admin.ExitOK
}
