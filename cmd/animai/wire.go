package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"animai/internal/api"
	"animai/internal/config"
	"animai/internal/db"
	"animai/internal/incubator"
	"animai/internal/llm"
	"animai/internal/lock"
	"animai/internal/metrics"
	redisdb "animai/internal/redis"
	"animai/internal/reply"
	"animai/internal/store"
)

// app holds every long-lived dependency; Close releases them in reverse
// order of construction.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     store.Store
	redis     *redis.Client
	metrics   *metrics.Metrics
	hub       *api.Hub
	incubator *incubator.Incubator
	checks    map[string]api.HealthCheck

	closers []func() error
}

func build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
		checks:  map[string]api.HealthCheck{},
	}
	ready := false
	defer func() {
		if !ready {
			_ = a.Close()
		}
	}()

	var err error
	if a.store, err = openStore(cfg.Database, logger, a.checks); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.store.Close)

	if cfg.Redis.Enabled {
		if a.redis, err = redisdb.Connect(ctx, cfg.Redis); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, a.redis.Close)
	}

	var locker lock.Locker = lock.NewLocal()
	if cfg.Lock.Backend == "redis" {
		locker = lock.NewRedis(a.redis, cfg.Lock.TTL, logger.Named("lock"))
	}

	gen, fallback, err := a.replyGenerators()
	if err != nil {
		return nil, err
	}

	a.hub = api.NewHub(a.metrics)
	a.incubator = incubator.New(incubator.Options{
		Store:    a.store,
		Locker:   locker,
		Reply:    gen,
		Fallback: fallback,
		Window:   cfg.Growth.PersonalityWindow,
		LockWait: cfg.Lock.WaitTimeout,
		Notifier: a.hub,
		Metrics:  a.metrics,
		Logger:   logger,
	})

	logger.Info("Components ready",
		zap.String("database", cfg.Database.Driver),
		zap.String("lock", cfg.Lock.Backend),
		zap.String("reply", gen.Name()),
		zap.Bool("redis", a.redis != nil))
	ready = true
	return a, nil
}

func openStore(cfg config.DatabaseConfig, logger *zap.Logger, checks map[string]api.HealthCheck) (store.Store, error) {
	switch cfg.Driver {
	case "memory":
		return store.NewMemory(), nil
	case "null":
		return store.NewNull(), nil
	}
	gdb, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	checks["database"] = sqlDB.PingContext
	return store.NewGorm(gdb), nil
}

// replyGenerators returns the active generator and the one used when it
// fails. Rule replies need no fallback.
func (a *app) replyGenerators() (reply.Generator, reply.Generator, error) {
	cfg := a.cfg
	switch cfg.Reply.Mode {
	case "rule":
		return reply.NewRuleGenerator(), nil, nil
	case "model":
	default:
		return nil, nil, fmt.Errorf("unknown reply mode %q", cfg.Reply.Mode)
	}

	lc := llm.DefaultConfig()
	lc.Model = cfg.LLM.Name
	lc.URL = cfg.LLM.URL
	lc.APIKey = cfg.LLM.APIKey
	lc.MaxConcurrent = cfg.LLM.MaxConcurrent
	lc.CriticalQueueSize = cfg.LLM.QueueSize
	lc.CriticalTimeout = cfg.LLM.Timeout
	lc.RateLimit = cfg.LLM.RateLimit
	lc.Burst = cfg.LLM.Burst
	lc.BreakerThreshold = cfg.LLM.BreakerThreshold
	lc.BreakerCooldown = cfg.LLM.BreakerCooldown

	breaker := llm.NewCircuitBreaker(lc.BreakerThreshold, lc.BreakerCooldown, a.logger)
	manager := llm.NewManager(lc, breaker, a.logger)
	a.closers = append(a.closers, func() error { manager.Stop(); return nil })
	if err := a.metrics.RegisterLLM(manager, breaker); err != nil {
		return nil, nil, err
	}

	client := llm.NewClient(manager, llm.PriorityCritical, lc)
	return reply.NewModelGenerator(client, cfg.Reply.Timeout), reply.NewRuleGenerator(), nil
}

func (a *app) deps() api.Deps {
	return api.Deps{
		Config:    a.cfg,
		Incubator: a.incubator,
		Redis:     a.redis,
		Metrics:   a.metrics,
		Hub:       a.hub,
		Logger:    a.logger,
		Checks:    a.checks,
	}
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
