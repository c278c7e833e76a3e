package app

import (
	"context"
	"upwatch/config"
	middle "upwatch/internals/middleware"
	"upwatch/internals/modules/alert"
	"upwatch/internals/modules/checker"
	"upwatch/internals/modules/monitor"
	"upwatch/internals/modules/reconciler"
	"upwatch/internals/modules/worker"
	"upwatch/internals/notify"
	"upwatch/internals/security"
	"upwatch/internals/server"
	"upwatch/pkg/httpclient"
	"upwatch/pkg/rabbitmq"
	"upwatch/pkg/redisstore"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Options carries the per-process control flags into the wiring.
type Options struct {
	Limit     int
	Partition reconciler.Partition
}

type Container struct {
	DB          *pgxpool.Pool
	RedisClient *redisstore.Client
	Logger      *zerolog.Logger

	Repo       *monitor.Repository
	Executor   *checker.Executor
	Engine     *alert.Engine
	Stats      *worker.Stats
	Reconciler *reconciler.Reconciler

	handler *server.Handler
	authMW  *middle.AuthMiddleware

	amqpConn *amqp091.Connection
	amqpPub  *rabbitmq.Publisher
}

func NewContainer(ctx context.Context, db *pgxpool.Pool, cfg *config.Config, opts Options, logger *zerolog.Logger) (*Container, error) {

	c := &Container{
		DB:     db,
		Logger: logger,
	}

	// Optional infra: redis status mirror.
	if cfg.Redis != nil && cfg.Redis.URL != "" {
		redisClient, err := redisstore.New(cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		c.RedisClient = redisClient
		logger.Info().Msg("redis status cache initialized")
	}

	// Optional infra: alert event fanout.
	var events alert.EventPublisher
	if cfg.RabbitMQ != nil && cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.NewConnection(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		if err := rabbitmq.SetupTopology(conn, cfg.RabbitMQ); err != nil {
			conn.Close()
			return nil, err
		}
		pub, err := rabbitmq.NewPublisher(conn, cfg.RabbitMQ.ExchangeName, cfg.RabbitMQ.RoutingKey)
		if err != nil {
			conn.Close()
			return nil, err
		}
		c.amqpConn = conn
		c.amqpPub = pub
		events = alert.NewAMQPEventPublisher(pub)
		logger.Info().Msg("alert event publisher initialized")
	}

	client := httpclient.NewHttpClient()

	c.Repo = monitor.NewRepository(db)
	c.Executor = checker.NewExecutor(cfg.Checker, client, logger)

	notifiers := map[notify.Channel]notify.Notifier{
		notify.ChannelTelegram: notify.NewTelegramNotifier(client, logger),
		notify.ChannelWebhook:  notify.NewWebhookNotifier(client, logger),
		notify.ChannelFirebase: notify.NewFirebaseNotifier(client, cfg.Alerting.FirebaseEndpoint, cfg.Alerting.FirebaseServerKey, logger),
	}
	c.Engine = alert.NewEngine(cfg.Alerting, c.Repo, notifiers, events, logger)

	c.Stats = worker.NewStats()

	// One admission gate per process bounds in-flight checks across all
	// workers of this shard.
	gate := make(chan struct{}, cfg.Scheduler.MaxConcurrentChecks)

	var cache worker.StatusCache
	if c.RedisClient != nil {
		cache = c.RedisClient
	}

	spawn := func(itemID int64) reconciler.Managed {
		return worker.New(itemID, worker.Deps{
			Store:           c.Repo,
			Executor:        c.Executor,
			Alerts:          c.Engine,
			Cache:           cache,
			Gate:            gate,
			DriftInterval:   cfg.Scheduler.DriftInterval,
			DefaultInterval: cfg.Scheduler.DefaultCheckInterval,
			Stats:           c.Stats,
			Logger:          logger,
		})
	}

	c.Reconciler = reconciler.New(c.Repo, spawn, cfg.Scheduler.ReconcileInterval, opts.Limit, opts.Partition, logger)

	c.handler = server.NewHandler(c.Reconciler, c.Stats, c.RedisClient, logger)

	if cfg.Auth != nil && cfg.Auth.Secret != "" {
		tokenSvc := security.NewTokenService(cfg.Auth)
		c.authMW = middle.NewAuthMiddleware(tokenSvc)
	}

	return c, nil
}

func (c *Container) Shutdown() error {
	if c.amqpPub != nil {
		c.amqpPub.Close()
	}
	if c.amqpConn != nil {
		c.amqpConn.Close()
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}
	return nil
}
