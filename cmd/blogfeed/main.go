package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "blogfeed",
		Usage: "Serve and archive the portfolio blog feed",
		Description: `blogfeed reads the author's Medium RSS feed.

		serve exposes the latest posts as JSON on /api/blog, falling back to a
		fixed list whenever the feed cannot be read.

		sync periodically archives the feed's posts in PostgreSQL and
		announces new or edited posts on RabbitMQ.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to config file",
				EnvVars: []string{"BLOGFEED_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			syncCmd(),
		},
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
