package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// AppName names the per-user log directory
const AppName = "ffpool"

// DefaultDir returns the platform-appropriate log directory for app
func DefaultDir(app string) (string, error) {
	return defaultDir(runtime.GOOS, app, os.UserCacheDir, os.UserHomeDir)
}

func defaultDir(goos, app string, cacheDir, homeDir func() (string, error)) (string, error) {
	home, homeErr := homeDir()

	switch goos {
	case "windows":
		if local, err := cacheDir(); err == nil {
			return filepath.Join(local, app, "logs"), nil
		}
		if homeErr == nil {
			return filepath.Join(home, "AppData", "Local", app, "logs"), nil
		}
	case "darwin":
		if homeErr == nil {
			return filepath.Join(home, "Library", "Logs", app), nil
		}
		return filepath.Join("/Users/Shared", "Library", "Logs", app), nil
	case "linux":
		if cache, err := cacheDir(); err == nil {
			return filepath.Join(cache, app, "logs"), nil
		}
		if homeErr == nil {
			return filepath.Join(home, ".cache", app, "logs"), nil
		}
	default:
		if homeErr == nil {
			return filepath.Join(home, app, "logs"), nil
		}
		return filepath.Join(".", app, "logs"), nil
	}

	return "", fmt.Errorf("could not determine a log directory: %w", homeErr)
}

// RunLog describes one log file found in a log directory
type RunLog struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
	Active  bool // the run that owns it still holds its lock
}

// ListRuns returns the log files in dir, newest first.
// Lock files left behind by crashed runs are cleaned up on the way.
func ListRuns(dir string) ([]RunLog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read log directory %s: %w", dir, err)
	}

	var runs []RunLog
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		runs = append(runs, RunLog{
			Name:    entry.Name(),
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Active:  isActive(path),
		})
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].ModTime.After(runs[j].ModTime)
	})
	return runs, nil
}

func isActive(logPath string) bool {
	lockPath := logPath + lockSuffix
	if _, err := os.Stat(lockPath); errors.Is(err, os.ErrNotExist) {
		return false
	}

	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return false
	}
	if !ok {
		return true
	}

	_ = lock.Unlock()
	_ = os.Remove(lockPath)
	return false
}
