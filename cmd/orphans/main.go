// Command orphans lists and resolves profiles the registration saga could not
// roll back. It reads the same REDIS_* settings as the gateway.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"idgate/internal/auth/store/orphan"
	"idgate/internal/platform/config"
	"idgate/internal/platform/redis"
	"idgate/internal/tools/orphans"
)

func main() {
	cfg, err := orphans.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		slog.Error("invalid arguments", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("orphans command failed", "command", cfg.Command, "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg orphans.Config) error {
	redisCfg, err := config.LoadRedis()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := redis.New(ctx, redisCfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = client.Close() }()

	return orphans.Run(ctx, cfg, orphan.NewRedisStore(client), os.Stdout)
}
