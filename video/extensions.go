package video

import (
	"path/filepath"
	"strings"
)

// MediaExtensions are the container formats picked up by --ext media
var MediaExtensions = []string{
	".mp4", ".m4v", ".webm", ".mov", ".flv", ".mkv", ".avi", ".wmv", ".mpg", ".mpeg", ".ts", ".m2ts",
	".mp3", ".m4a", ".flac", ".wav", ".ogg", ".opus", ".aac",
}

// ExtensionMatcher returns a filter accepting files whose extension is in exts.
// Entries are case-insensitive and the leading dot is optional; the entry "media"
// expands to MediaExtensions. No entries means no filter, signalled by a nil func.
func ExtensionMatcher(exts []string) func(path string) bool {
	wanted := make(map[string]struct{})
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		switch e {
		case "":
			continue
		case "media":
			for _, m := range MediaExtensions {
				wanted[m] = struct{}{}
			}
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		wanted[e] = struct{}{}
	}

	if len(wanted) == 0 {
		return nil
	}

	return func(path string) bool {
		_, ok := wanted[strings.ToLower(filepath.Ext(path))]
		return ok
	}
}
