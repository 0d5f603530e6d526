package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// FirstLine extracts the first non-empty line from command output.
// Windows tools emit \r\n and `where` may print several matches.
func FirstLine(out string) string {
	for _, line := range strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

func Normalize(path string) string {
	path = filepath.Clean(strings.TrimSpace(path))
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if runtime.GOOS == "windows" {
		path = strings.ToLower(path)
	}
	return path
}

// IsExecutable reports whether path points to a runnable interpreter.
// Windows has no execute bit; existence plus a known executable
// extension is enough there.
func IsExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if runtime.GOOS == "windows" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".exe", ".bat", ".cmd":
			return true
		}
		return false
	}
	return info.Mode().Perm()&0111 != 0
}
