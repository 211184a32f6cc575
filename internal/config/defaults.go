package config

const (
	defaultLogDir    = "~/.local/share/photofmt/logs"
	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	// DefaultQuality is the JPEG quality used when none is configured or the
	// provided value is out of range.
	DefaultQuality = 95

	// MinQuality and MaxQuality bound the JPEG quality setting.
	MinQuality = 1
	MaxQuality = 100
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Organize: Organize{
			Quality: DefaultQuality,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
