package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/appointment_desk/internal/app"
	"github.com/Freeeeeet/appointment_desk/internal/config"
	"github.com/fatih/color"
	"go.uber.org/zap"
)

const usage = `usage: migrate <up|down|status|version>`

func main() {
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0)); err != nil {
		color.Red("✗ %v", err)
		os.Exit(1)
	}
}

func run(command string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := app.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel)))
	if err != nil {
		return err
	}
	defer migrator.Close()

	switch command {
	case "up":
		if err := migrator.Run(ctx); err != nil {
			return err
		}
		return printVersion(ctx, migrator, "Migrations applied")
	case "down":
		if err := migrator.Down(ctx); err != nil {
			return err
		}
		return printVersion(ctx, migrator, "Rolled back one migration")
	case "status":
		return migrator.Status(ctx)
	case "version":
		return printVersion(ctx, migrator, "Current schema")
	default:
		return fmt.Errorf("unknown command %q, %s", command, usage)
	}
}

func printVersion(ctx context.Context, migrator *app.Migrator, title string) error {
	version, err := migrator.Version(ctx)
	if err != nil {
		return err
	}

	color.Green("✓ %s", title)
	fmt.Printf("  version: %s\n", color.CyanString("%d", version))
	return nil
}
