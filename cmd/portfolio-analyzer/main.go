// Command portfolio-analyzer uploads a holdings CSV for analysis and
// presents the stored result.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"portfolio-analyzer/internal/cli"
	"portfolio-analyzer/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(nil, logging.NewLogger())
	defer app.Close()

	return cli.Execute(ctx, app, os.Args[1:])
}
