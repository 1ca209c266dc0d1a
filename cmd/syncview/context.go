package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"syncview/internal/cache"
	"syncview/internal/config"
	"syncview/internal/stdaemon"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
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
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) client() (*stdaemon.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	client, err := stdaemon.New(cfg.Daemon.URL, cfg.Daemon.APIKey, time.Duration(cfg.Daemon.RequestTimeout)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("build daemon client: %w", err)
	}
	return client, nil
}

func (c *commandContext) openStore() (*cache.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := cache.Open(cfg.DatabasePath())
	if errors.Is(err, cache.ErrLocked) {
		return nil, fmt.Errorf("%w; is `syncview watch` running?", err)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// withStore runs fn with an open cache store and closes it afterwards.
func (c *commandContext) withStore(fn func(*cache.Store) error) error {
	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
