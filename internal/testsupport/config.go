package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/lorrislin/Photo-Dir-Formatter/internal/config"
)

// NewConfig produces a config seeded with a unique temp log directory per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	return &cfg
}
