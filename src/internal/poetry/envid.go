package poetry

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// DeriveEnvID labels the environment an interpreter belongs to. Poetry
// names virtualenv directories <project>-<hash>-py<version>, so the venv
// root's base name (two levels above bin/python or Scripts\python.exe)
// is the closest thing to a stable label. This is display-only, not a
// semantic key; if the naming convention ever changes, this function is
// the only place to touch.
func DeriveEnvID(interpreterPath string) string {
	envRoot := filepath.Dir(filepath.Dir(interpreterPath))
	id := sanitizeAttr(filepath.Base(envRoot))
	if id == "" || id == "." || id == string(filepath.Separator) {
		return hashID(interpreterPath)
	}
	return id
}

// sanitizeAttr strips characters that would need escaping inside an XML
// attribute value.
func sanitizeAttr(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '&', '"', '\'':
			return -1
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

func hashID(path string) string {
	sum := sha256.Sum256([]byte(path))
	return "env-" + hex.EncodeToString(sum[:])[:8]
}
