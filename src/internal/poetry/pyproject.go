package poetry

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"idesync/src/internal/utils"
)

type pyprojectFile struct {
	Tool struct {
		Poetry map[string]any `toml:"poetry"`
	} `toml:"tool"`
}

// IsPoetryProject reports whether root holds a pyproject.toml with a
// [tool.poetry] table.
func IsPoetryProject(root string) bool {
	var doc pyprojectFile
	if _, err := toml.DecodeFile(filepath.Join(root, "pyproject.toml"), &doc); err != nil {
		return false
	}
	return doc.Tool.Poetry != nil
}

// PythonVersion runs the interpreter and reports its major.minor version.
func (r *Resolver) PythonVersion(ctx context.Context, interpreter string) (string, error) {
	runner := r.Run
	if runner == nil {
		runner = execRun
	}
	out, err := runner(ctx, "", interpreter, "--version")
	if err != nil {
		return "", fmt.Errorf("query %s --version: %w", interpreter, err)
	}
	line := utils.FirstLine(out)
	version, ok := strings.CutPrefix(line, "Python ")
	if !ok {
		return "", fmt.Errorf("unexpected version output %q from %s", line, interpreter)
	}
	parts := strings.Split(version, ".")
	if len(parts) >= 2 {
		return parts[0] + "." + parts[1], nil
	}
	return version, nil
}
