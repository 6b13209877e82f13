package config

const (
	defaultConfigPath            = "~/.config/pitchctl/config.toml"
	defaultBaseURL               = "http://localhost:8000"
	defaultRequestTimeoutSeconds = 30
	defaultUploadTimeoutSeconds  = 600
	defaultMaxResponseBytes      = 16 << 20
	defaultStateDir              = "~/.local/share/pitchctl"
	defaultLogDir                = "~/.local/share/pitchctl/logs"
	defaultPollIntervalSeconds   = 5
	defaultPollTimeoutSeconds    = 3600
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Backend: Backend{
			BaseURL:               defaultBaseURL,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			UploadTimeoutSeconds:  defaultUploadTimeoutSeconds,
			MaxResponseBytes:      defaultMaxResponseBytes,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Polling: Polling{
			IntervalSeconds: defaultPollIntervalSeconds,
			TimeoutSeconds:  defaultPollTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
