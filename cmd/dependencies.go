package cmd

import (
	"context"
	"stock-advisor/config"
	"stock-advisor/pkg/cache"
	"stock-advisor/pkg/logger"
	"stock-advisor/pkg/postgres"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AppDependency struct {
	db        *postgres.DB
	cfg       *config.Config
	log       *logger.Logger
	validator *goValidator.Validate
	echo      *echo.Echo
	cache     cache.Cache
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.NewWithAlert(cfg)
	if err != nil {
		return nil, err
	}

	db, err := postgres.NewDB(cfg.DB, log)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}

	return &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: goValidator.New(),
		db:        db,
		echo:      echo.New(),
		cache:     cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
	}, nil
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
