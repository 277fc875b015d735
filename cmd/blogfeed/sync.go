package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/urfave/cli/v2"

	"blog_feed/internal/config"
	"blog_feed/internal/feed"
	"blog_feed/internal/logger"
	"blog_feed/internal/publisher"
	"blog_feed/internal/scheduler"
	"blog_feed/internal/service"
	"blog_feed/internal/storage/postgres"
)

func syncCmd() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Archive feed posts in PostgreSQL and announce changes",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "once",
				Usage: "run a single sync and exit",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"), false)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			log := logger.New(cfg.LogLevel)

			db, err := sqlx.Connect("postgres", cfg.Database.DSN())
			if err != nil {
				log.Error("failed to connect to database", "error", err)
				return err
			}
			defer db.Close()
			log.Info("connected to database")

			// A nil interface, not a nil *RabbitMQ, keeps publishing off.
			var pub service.Publisher
			if cfg.Sync.Publish {
				rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
					URL:        cfg.RabbitMQ.URL,
					Exchange:   cfg.RabbitMQ.Exchange,
					RoutingKey: cfg.RabbitMQ.RoutingKey,
					QueueName:  cfg.RabbitMQ.QueueName,
				}, log)
				if err != nil {
					log.Error("failed to connect to rabbitmq", "error", err)
					return err
				}
				defer rabbitMQ.Close()
				pub = rabbitMQ
			}

			ingestor := feed.New(feed.Config{
				URL:       cfg.Feed.URL,
				UserAgent: cfg.Feed.UserAgent,
				Timeout:   cfg.Feed.Timeout,
			}, log)

			syncService := service.NewSyncService(
				ingestor,
				postgres.NewPostStore(db),
				postgres.NewTagStore(db),
				postgres.NewSyncStateStore(db),
				postgres.NewTransactionManager(db),
				pub,
				log,
			)

			sched := scheduler.NewScheduler(syncService, cfg.Sync.Interval, cfg.Sync.RunTimeout, log)

			ctx, cancel := signalContext(log)
			defer cancel()

			if c.Bool("once") {
				return sched.RunOnce(ctx)
			}

			log.Info("starting blog feed syncer",
				"feed", ingestor.Name(),
				"interval", cfg.Sync.Interval,
				"publish", cfg.Sync.Publish,
			)

			if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("scheduler error", "error", err)
				return err
			}
			return nil
		},
	}
}
