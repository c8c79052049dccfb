package config

const (
	defaultDataDir              = "~/.local/share/curtail"
	defaultLogDir               = "~/.local/share/curtail/logs"
	defaultBind                 = "127.0.0.1:8180"
	defaultPublicBaseURL        = "http://127.0.0.1:8180"
	defaultServerRequestTimeout = 30
	defaultCollectorTimeout     = 5
	defaultCollectorMaxAttempts = 3
	defaultCollectorBackoffMS   = 1000
	defaultValidityMinutes      = 30
	defaultCacheTTLSeconds      = 60
	defaultSweepInterval        = 60
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Server: Server{
			Bind:           defaultBind,
			PublicBaseURL:  defaultPublicBaseURL,
			AllowedOrigins: []string{"*"},
			RequestTimeout: defaultServerRequestTimeout,
		},
		Collector: Collector{
			RequestTimeout: defaultCollectorTimeout,
			MaxAttempts:    defaultCollectorMaxAttempts,
			RetryBackoffMS: defaultCollectorBackoffMS,
		},
		Shortener: Shortener{
			DefaultValidityMinutes: defaultValidityMinutes,
			CacheTTLSeconds:        defaultCacheTTLSeconds,
		},
		Workflow: Workflow{
			SweepInterval: defaultSweepInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
