package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"

	"blog_feed/internal/api"
	"blog_feed/internal/config"
	"blog_feed/internal/feed"
	"blog_feed/internal/logger"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the blog endpoint",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"), true)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			log := logger.New(cfg.LogLevel)
			gin.SetMode(gin.ReleaseMode)

			ingestor := feed.New(feed.Config{
				URL:             cfg.Feed.URL,
				UserAgent:       cfg.Feed.UserAgent,
				Timeout:         cfg.Feed.Timeout,
				FallbackOnEmpty: cfg.Feed.FallbackOnEmpty,
			}, log)

			server, err := api.NewServer(api.Config{
				Addr:            cfg.Server.Addr,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
				RateLimitRPS:    cfg.Server.RateLimit.RPS,
				RateLimitBurst:  cfg.Server.RateLimit.Burst,
				TrustedProxies:  cfg.Server.TrustedProxies,
			}, ingestor, log)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}

			ctx, cancel := signalContext(log)
			defer cancel()

			log.Info("starting blog feed server",
				"feed", cfg.Feed.URL,
				"addr", cfg.Server.Addr,
			)

			if err := server.Run(ctx); err != nil {
				log.Error("server error", "error", err)
				return err
			}
			return nil
		},
	}
}
