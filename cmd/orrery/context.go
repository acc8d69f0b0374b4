package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"orrery/internal/config"
	"orrery/internal/logging"
	"orrery/internal/solar"
	"orrery/internal/store"
)

// commandContext lazily materializes the shared dependencies a subcommand
// needs: config, logger, the store, and the domain service.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	storeOnce sync.Once
	store     *store.Store
	storeErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) ensureStore() (*store.Store, error) {
	c.storeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.storeErr = err
			return
		}
		st, err := store.Open(cfg)
		if err != nil {
			c.storeErr = err
			return
		}
		c.ensureLogger().Debug("store opened", logging.String("path", st.Path()))
		c.store = st
	})
	return c.store, c.storeErr
}

// service builds the domain service, seeding the predefined tags on first
// use so a fresh database is immediately usable.
func (c *commandContext) service(ctx context.Context) (*solar.Service, error) {
	st, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	svc := solar.NewService(st, c.ensureLogger())
	if err := svc.SeedPredefinedTags(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}
