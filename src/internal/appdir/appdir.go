package appdir

import (
	"os"
	"path/filepath"
	"runtime"
)

func Home() (string, error) {
	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, "idesync"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "AppData", "Local", "idesync"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "idesync"), nil
}

func MustHome() string {
	home, err := Home()
	if err != nil {
		return "idesync"
	}
	return home
}

func ConfigFile() string {
	return filepath.Join(MustHome(), "config.yaml")
}

func ProfileDir() string {
	return filepath.Join(MustHome(), "profiles")
}

func EnsureHome() error {
	return os.MkdirAll(MustHome(), 0755)
}
