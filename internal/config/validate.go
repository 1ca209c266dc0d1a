package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDaemon(); err != nil {
		return err
	}
	if err := c.validateScheduler(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if c.Daemon.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/syncview/config.toml"
		}
		return fmt.Errorf("daemon.api_key is required. Set SYNCVIEW_API_KEY env var or edit %s (create with 'syncview config init')", defaultPath)
	}
	if c.Daemon.EventTimeout > 300 {
		return errors.New("daemon.event_timeout must not exceed 300 seconds")
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if c.Scheduler.Workers > 64 {
		return errors.New("scheduler.workers must not exceed 64")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
