package video

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"unicode/utf8"
)

// WalkErrorFunc receives per-entry errors hit while expanding directories.
// Expansion continues after the callback returns.
type WalkErrorFunc func(path string, err error)

// ExpandInputsMatching turns the user-supplied inputs into a flat list of file paths.
// Regular files are kept as given, directories are walked recursively without
// following symlinks, and symlinked entries inside directories are skipped.
// Paths that cannot be stat'ed are passed through unchanged so the processor
// reports them as skips. match filters files found inside directories; inputs
// named directly are never filtered. A nil match keeps everything.
func ExpandInputsMatching(inputs []string, match func(path string) bool, onError WalkErrorFunc) []string {
	var files []string

	for _, input := range inputs {
		fi, err := os.Lstat(input)
		if err != nil || !fi.IsDir() {
			files = append(files, input)
			continue
		}

		files = append(files, walkDirectory(input, match, onError)...)
	}

	return files
}

// walkDirectory uses filepath.WalkDir to find all regular files below directory
func walkDirectory(directory string, match func(string) bool, onError WalkErrorFunc) []string {
	var files []string

	_ = filepath.WalkDir(directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if onError != nil {
				onError(path, err)
			}
			// Skip the unreadable directory but keep walking its siblings
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if d.Type().IsRegular() && (match == nil || match(path)) {
			files = append(files, path)
		}

		return nil
	})

	return files
}

// FileListError describes why a file list could not be used
type FileListError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FileListError) Error() string {
	return e.Reason
}

func (e *FileListError) Unwrap() error {
	return e.Err
}

// LoadFileList reads one input path per line from the file at path.
// Surrounding whitespace is trimmed from every line and blank lines are dropped.
func LoadFileList(path string) ([]string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, classifyFileListError(path, err)
	}

	if !utf8.Valid(contents) {
		return nil, &FileListError{
			Path:   path,
			Reason: fmt.Sprintf("the contents of %s contain invalid data, please make sure it is encoded as UTF-8", path),
		}
	}

	var paths []string
	for _, line := range strings.Split(strings.TrimSpace(string(contents)), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paths = append(paths, line)
		}
	}

	return paths, nil
}

func classifyFileListError(path string, err error) error {
	var reason string
	switch {
	case errors.Is(err, fs.ErrNotExist):
		reason = fmt.Sprintf("no file found at %s", path)
	case errors.Is(err, fs.ErrPermission):
		reason = fmt.Sprintf("permission denied when reading file %s", path)
	case errors.Is(err, syscall.EISDIR):
		reason = fmt.Sprintf("the path %s is a directory", path)
	default:
		reason = fmt.Sprintf("an error occurred reading the file at %s: %v", path, err)
	}
	return &FileListError{Path: path, Reason: reason, Err: err}
}
