package config

import "strings"

// normalize expands paths and canonicalizes string fields so validation and
// downstream code see one representation.
func (c *Config) normalize() error {
	logDir, err := expandPath(strings.TrimSpace(c.Paths.LogDir))
	if err != nil {
		return err
	}
	c.Paths.LogDir = logDir

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	if c.Organize.Quality == 0 {
		c.Organize.Quality = DefaultQuality
	}

	return nil
}
