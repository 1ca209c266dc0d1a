package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeDaemon(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScheduler()
	c.normalizeEvents()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeDaemon() error {
	c.Daemon.URL = strings.TrimRight(strings.TrimSpace(c.Daemon.URL), "/")
	if c.Daemon.URL == "" {
		c.Daemon.URL = defaultDaemonURL
	}
	if !strings.Contains(c.Daemon.URL, "://") {
		c.Daemon.URL = "http://" + c.Daemon.URL
	}
	if _, err := url.Parse(c.Daemon.URL); err != nil {
		return fmt.Errorf("daemon.url: %w", err)
	}
	if c.Daemon.APIKey == "" {
		if value, ok := os.LookupEnv("SYNCVIEW_API_KEY"); ok {
			c.Daemon.APIKey = value
		} else if value, ok := os.LookupEnv("SYNCTHING_API_KEY"); ok {
			c.Daemon.APIKey = value
		}
	}
	if c.Daemon.RequestTimeout <= 0 {
		c.Daemon.RequestTimeout = defaultRequestTimeout
	}
	if c.Daemon.EventTimeout <= 0 {
		c.Daemon.EventTimeout = defaultEventTimeout
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScheduler() {
	if c.Scheduler.Workers <= 0 {
		c.Scheduler.Workers = defaultWorkers
	}
	if c.Scheduler.DrainIntervalMS <= 0 {
		c.Scheduler.DrainIntervalMS = defaultDrainIntervalMS
	}
}

func (c *Config) normalizeEvents() {
	if c.Events.RetryBackoff <= 0 {
		c.Events.RetryBackoff = defaultEventRetryBackoff
	}
	if c.Events.EmptyPollsBeforeReset <= 0 {
		c.Events.EmptyPollsBeforeReset = defaultEmptyPollsBeforeReset
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}
