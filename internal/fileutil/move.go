package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// MoveOutcome describes the result of a collision-safe move.
type MoveOutcome int

const (
	// MoveDone means the file now lives in the destination folder.
	MoveDone MoveOutcome = iota
	// MoveSkipped means a file with the same name already exists in the
	// destination folder; the source was left untouched.
	MoveSkipped
)

var renameFunc = os.Rename

// SetRenameForTests swaps the rename primitive so tests can inject filesystem
// failures. The returned function restores the original.
func SetRenameForTests(fn func(oldpath, newpath string) error) func() {
	prev := renameFunc
	renameFunc = fn
	return func() { renameFunc = prev }
}

// MoveToFolder moves src into destFolder, creating the folder (and parents)
// when absent. The destination keeps the source's base name. An existing
// destination file is never overwritten: the move is skipped and the source
// left in place. Cross-device renames fall back to a verified copy followed by
// removal of the source.
func MoveToFolder(src, destFolder string) (MoveOutcome, error) {
	if err := os.MkdirAll(destFolder, 0o755); err != nil {
		return MoveSkipped, fmt.Errorf("create destination folder: %w", err)
	}

	dest := filepath.Join(destFolder, filepath.Base(src))
	if _, err := os.Lstat(dest); err == nil {
		return MoveSkipped, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return MoveSkipped, fmt.Errorf("inspect destination: %w", err)
	}

	if err := renameFunc(src, dest); err != nil {
		if !isCrossDevice(err) {
			return MoveSkipped, fmt.Errorf("rename: %w", err)
		}
		if copyErr := CopyFileVerified(src, dest); copyErr != nil {
			return MoveSkipped, fmt.Errorf("cross-device copy: %w", copyErr)
		}
		if err := os.Remove(src); err != nil {
			return MoveSkipped, fmt.Errorf("remove source after copy: %w", err)
		}
	}
	return MoveDone, nil
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	return errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV)
}
