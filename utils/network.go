package utils

import (
	"path/filepath"
	"strings"
	"unicode"
)

// Mount roots that usually hold NFS/SMB shares, removable media or network volumes
var networkMountRoots = []string{"/mnt/", "/media/", "/net/", "/Volumes/"}

// Path words naming a network filesystem, e.g. /srv/nfs-share or /shares/smb
var networkWords = map[string]bool{
	"nfs": true, "cifs": true, "smb": true, "webdav": true, "ftp": true, "sftp": true,
}

// IsNetworkDrive guesses whether path lives on a network share.
// Parallel workers tend to thrash network storage, so the answer only drives a hint.
func IsNetworkDrive(path string) bool {
	// UNC paths are checked before Abs rewrites them
	if strings.HasPrefix(path, "//") || strings.HasPrefix(path, `\\`) {
		return true
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	abs = filepath.ToSlash(abs)

	for _, root := range networkMountRoots {
		if strings.HasPrefix(abs, root) {
			return true
		}
	}

	words := strings.FieldsFunc(strings.ToLower(abs), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, word := range words {
		if networkWords[word] {
			return true
		}
	}
	return false
}

// NetworkInputs returns the inputs that look network-mounted, in input order
func NetworkInputs(paths []string) []string {
	var remote []string
	for _, p := range paths {
		if IsNetworkDrive(p) {
			remote = append(remote, p)
		}
	}
	return remote
}
