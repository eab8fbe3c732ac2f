package utils

import (
	"fmt"
	"os/exec"
	"runtime"
)

// ValidateTool checks that binary can be found and returns its resolved path
func ValidateTool(binary string) (string, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH. %s", binary, installationInstructions(runtime.GOOS))
	}
	return path, nil
}

// installationInstructions returns platform-specific installation instructions
func installationInstructions(goos string) string {
	switch goos {
	case "darwin":
		return "Install with: brew install ffmpeg"
	case "linux":
		return "Install with: apt-get install ffmpeg (Ubuntu/Debian) or yum install ffmpeg (CentOS/RHEL)"
	case "windows":
		return "Download from https://ffmpeg.org/download.html and add to PATH"
	default:
		return "Download from https://ffmpeg.org/download.html"
	}
}
