package app

import (
	"context"
	"log"
	"time"

	"talent-bridge/internal/config"
	"talent-bridge/internal/database"
	dbpostgres "talent-bridge/internal/database/postgres"
	"talent-bridge/internal/infrastructure/cache"
	"talent-bridge/internal/notify"
	"talent-bridge/internal/ws"
)

type Container struct {
	Config config.Config
	DB     database.DB
	Cache  *cache.Redis
	Hub    *ws.Hub
	Fanout *notify.Fanout
	Logger *log.Logger
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := database.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	rds := cache.NewRedis(logger)
	hub := ws.NewHub(logger)
	fanout := notify.NewFanout(
		notify.NewHubSender(hub),
		rds,
		logger,
		cfg.Notify.SendTimeout,
		cfg.Notify.IdempotencyTTL,
	)

	return &Container{
		Config: cfg,
		DB:     db,
		Cache:  rds,
		Hub:    hub,
		Fanout: fanout,
		Logger: logger,
	}, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
