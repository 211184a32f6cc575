package organize

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/lorrislin/Photo-Dir-Formatter/internal/services"
)

// lockPath derives a stable lock file location for a root directory. Locks
// live under the log dir so the organizer never has to write into the tree it
// is organizing.
func lockPath(lockDir, root string) string {
	sum := sha256.Sum256([]byte(root))
	return filepath.Join(lockDir, fmt.Sprintf("organize-%x.lock", sum[:8]))
}

// acquireRunLock takes an advisory lock guarding the root against a second
// concurrent organize run. The caller must Unlock the returned lock.
func acquireRunLock(lockDir, root string) (*flock.Flock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "organizing", "prepare lock directory", "", err)
	}
	lock := flock.New(lockPath(lockDir, root))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "organizing", "acquire run lock", "", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTransient, "organizing", "acquire run lock",
			fmt.Sprintf("another photofmt run is already processing %s", root), nil)
	}
	return lock, nil
}
