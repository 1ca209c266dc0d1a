package config

const (
	defaultDaemonURL             = "http://127.0.0.1:8384"
	defaultDataDir               = "~/.local/share/syncview"
	defaultLogDir                = "~/.local/share/syncview/logs"
	defaultRequestTimeout        = 30
	defaultEventTimeout          = 60
	defaultWorkers               = 10
	defaultDrainIntervalMS       = 250
	defaultEventRetryBackoff     = 5
	defaultEmptyPollsBeforeReset = 3
	defaultNotifyRequestTimeout  = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Daemon: Daemon{
			URL:            defaultDaemonURL,
			RequestTimeout: defaultRequestTimeout,
			EventTimeout:   defaultEventTimeout,
		},
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Scheduler: Scheduler{
			Workers:         defaultWorkers,
			DrainIntervalMS: defaultDrainIntervalMS,
		},
		Events: Events{
			RetryBackoff:          defaultEventRetryBackoff,
			EmptyPollsBeforeReset: defaultEmptyPollsBeforeReset,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			SyncStarted:    false,
			SyncFinished:   true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
