package processor

import (
	"errors"
	"fmt"
	"io/fs"
)

// DescribeFSError turns a filesystem error into a human-readable message,
// distinguishing not-found and permission-denied from everything else.
func DescribeFSError(action, path string, err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Sprintf("Could not %s %s: no such file or directory", action, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Sprintf("Permission denied when trying to %s %s", action, path)
	default:
		return fmt.Sprintf("An unknown error occurred when trying to %s %s: %v", action, path, err)
	}
}
