package video

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Placeholder tokens understood by ResolveOutputPath
const (
	TokenExt    = "{{ext}}"
	TokenName   = "{{name}}"
	TokenDir    = "{{dir}}"
	TokenParent = "{{parent}}"
)

var (
	// ErrNoExtension is returned for inputs like "clip" or ".mov" that carry no extension
	ErrNoExtension = errors.New("input has no file extension")
	// ErrNoStem is returned for inputs without a file name
	ErrNoStem = errors.New("input has no file name")
)

// ResolveOutputPath expands the placeholder tokens in pattern for the given input path.
//
// All tokens are substituted in a single pass, so a file name that itself contains
// placeholder text is copied verbatim and never expanded a second time.
func ResolveOutputPath(input, pattern string) (string, error) {
	parts, err := splitInput(input)
	if err != nil {
		return "", fmt.Errorf("resolve output for %s: %w", input, err)
	}

	r := strings.NewReplacer(
		TokenExt, parts.ext,
		TokenName, parts.name,
		TokenDir, parts.dir,
		TokenParent, parts.parent,
	)
	return r.Replace(pattern), nil
}

type inputParts struct {
	ext    string
	name   string
	dir    string
	parent string
}

func splitInput(input string) (inputParts, error) {
	dir, base := filepath.Split(input)
	if base == "" || base == "." || base == ".." {
		return inputParts{}, ErrNoStem
	}

	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	// ".mov" is a hidden file named ".mov", not an extension
	if ext == "" || ext == "." || name == "" {
		return inputParts{}, ErrNoExtension
	}

	var parts inputParts
	parts.ext = strings.TrimPrefix(ext, ".")
	parts.name = name
	if dir != "" {
		parts.dir = filepath.Clean(dir)
		parts.parent = lastSegment(parts.dir)
	}
	return parts, nil
}

// lastSegment returns the final element of dir, or "" when dir has no named element
func lastSegment(dir string) string {
	base := filepath.Base(dir)
	switch base {
	case ".", "..", string(filepath.Separator):
		return ""
	}
	if vol := filepath.VolumeName(dir); vol != "" && base == vol {
		return ""
	}
	return base
}
