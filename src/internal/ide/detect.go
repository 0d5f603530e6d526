package ide

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

type Installation struct {
	Product   string
	Version   string
	ConfigDir string
	SDKTable  string
}

// ConfigBase returns the per-user JetBrains configuration root for the
// current platform. Linux config moved under ~/.config in 2020.1; older
// setups keep dot-directories directly in the home directory.
func ConfigBase() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "JetBrains"), nil
	case "windows":
		if roaming := os.Getenv("APPDATA"); roaming != "" {
			return filepath.Join(roaming, "JetBrains"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "JetBrains"), nil
	default:
		cfg := filepath.Join(home, ".config", "JetBrains")
		if _, err := os.Stat(cfg); err == nil {
			return cfg, nil
		}
		return home, nil
	}
}

func FindInstallations() ([]Installation, error) {
	base, err := ConfigBase()
	if err != nil {
		return nil, err
	}
	return findInstallationsIn(base)
}

func findInstallationsIn(base string) ([]Installation, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var found []Installation
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		product := productFor(e.Name())
		if product == "" {
			continue
		}
		dir := filepath.Join(base, e.Name())
		found = append(found, Installation{
			Product:   product,
			Version:   e.Name(),
			ConfigDir: dir,
			SDKTable:  filepath.Join(dir, "options", "jdk.table.xml"),
		})
	}

	// Newest version of each product first.
	sort.Slice(found, func(i, j int) bool {
		if found[i].Product != found[j].Product {
			return found[i].Product < found[j].Product
		}
		return found[i].Version > found[j].Version
	})
	return found, nil
}

func productFor(dirName string) string {
	switch {
	case strings.HasPrefix(dirName, "PyCharm"):
		if strings.Contains(dirName, "CE") {
			return "PyCharm Community"
		}
		return "PyCharm Professional"
	case strings.HasPrefix(dirName, "IntelliJIdea"):
		return "IntelliJ IDEA"
	case dirName == "IntelliJ":
		return "IntelliJ IDEA (Generic)"
	}
	return ""
}
