package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Brinda301/sessiongate/internal/client/cli"
	"github.com/Brinda301/sessiongate/internal/client/config"
	"github.com/Brinda301/sessiongate/internal/platform/logging"
)

const usage = `Usage: sessiongate <command>

Commands:
  register   Create an account
  login      Sign in and store the session token
  whoami     Show the signed-in user
  logout     Drop the stored session
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	command := os.Args[1]
	if command == "help" || command == "-h" || command == "--help" {
		fmt.Print(usage)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	err = run(ctx, app, command)

	if closeErr := app.Close(); closeErr != nil {
		slog.Warn("Failed to close session store", "error", closeErr)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, app *cli.App, command string) error {
	switch command {
	case "register":
		return app.Register(ctx)
	case "login":
		return app.Login(ctx)
	case "whoami":
		return app.Whoami(ctx)
	case "logout":
		return app.Logout(ctx)
	default:
		return fmt.Errorf("unknown command %q, run 'sessiongate help' for usage", command)
	}
}
