// Package app assembles stores, the upstream client and services from config.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fountain-monitor/internal/core/auth"
	"fountain-monitor/internal/core/cache"
	"fountain-monitor/internal/core/config"
	"fountain-monitor/internal/core/database"
	"fountain-monitor/internal/core/lock"
	"fountain-monitor/internal/core/server"
	"fountain-monitor/internal/domain"
	"fountain-monitor/internal/repo"
	"fountain-monitor/internal/service"
	"fountain-monitor/internal/upstream"
)

type App struct {
	Cfg        *config.Config
	Log        *zap.Logger
	JWT        *auth.JWTer
	Upstream   *upstream.Client
	Users      *service.Users
	Favorites  *service.Favorites
	Statistics *service.Statistics

	closers []func() error
}

// New wires every dependency. Close releases what it opened.
func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, error) {
	a := &App{
		Cfg: cfg,
		Log: l,
		JWT: &auth.JWTer{
			Secret: []byte(cfg.JWT.Secret),
			Issuer: cfg.JWT.Issuer,
			TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		},
	}
	if len(a.JWT.Secret) == 0 {
		return nil, errors.New("jwt.secret is required")
	}

	users, stats, err := a.openStores(cfg.DB)
	if err != nil {
		return nil, err
	}

	up, err := upstream.New(upstream.Options{
		BaseURL:      cfg.Upstream.BaseURL,
		Timeout:      cfg.Upstream.Timeout(),
		MaxIdleConns: cfg.Upstream.MaxIdleConns,
	}, l.Named("upstream"))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Upstream = up

	var locker lock.Locker = lock.NewKeyedMutex()
	var statOpts []service.StatisticsOption
	if cfg.Redis.Enabled() {
		rdb := cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		a.closers = append(a.closers, rdb.Close)
		if err := pingRedis(ctx, rdb); err != nil {
			a.Close()
			return nil, err
		}
		ttl := time.Duration(cfg.Favorites.LockTTLSec) * time.Second
		// local first so same-process contention never reaches redis
		locker = lock.Chain{locker, lock.NewRedisLocker(rdb, cfg.App.Name+":lock:", ttl, l.Named("lock"))}
		statOpts = append(statOpts, service.WithSnapshotCache(
			cache.New(rdb, cfg.App.Name+":"),
			time.Duration(cfg.Statistics.CacheTTLMin)*time.Minute,
		))
		l.Info("redis enabled", zap.String("addr", cfg.Redis.Addr))
	}

	a.Users = service.NewUsers(users, locker, l.Named("users"))
	a.Favorites = service.NewFavorites(users, up, locker, l.Named("favorites"), cfg.Favorites.ResolveConcurrency)
	a.Statistics = service.NewStatistics(up, stats, l.Named("statistics"), statOpts...)
	return a, nil
}

func (a *App) openStores(c config.DB) (domain.UserDirectory, domain.StatisticsStore, error) {
	if c.Driver == "memory" {
		a.Log.Warn("using in-memory stores; data is lost on exit")
		return repo.NewMemoryUserRepo(), repo.NewMemoryStatisticsRepo(), nil
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             c.Driver,
		DSN:                c.DSN,
		Username:           c.Username,
		Password:           c.Password,
		MaxOpenConns:       c.MaxOpenConns,
		MaxIdleConns:       c.MaxIdleConns,
		ConnMaxLifetimeMin: c.ConnMaxLifetimeMin,
		LogLevel:           c.LogLevel,
	}, a.Log)
	if err != nil {
		return nil, nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	if c.AutoMigrate {
		if err := repo.AutoMigrate(db); err != nil {
			a.Close()
			return nil, nil, fmt.Errorf("automigrate: %w", err)
		}
		a.Log.Info("automigrate done")
	}
	a.Log.Info("database connected", zap.String("driver", c.Driver))
	return repo.NewUserRepo(db), repo.NewStatisticsRepo(db), nil
}

func pingRedis(ctx context.Context, rdb *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// ServerOptions derives router options for the named listener.
func (a *App) ServerOptions(name string) server.Options {
	return server.Options{
		Name:         name,
		Mode:         server.ModeFor(a.Cfg.App.Env),
		AllowOrigins: a.Cfg.App.AllowOrigins,
	}
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Warn("close", zap.Error(err))
		}
	}
	a.closers = nil
}
