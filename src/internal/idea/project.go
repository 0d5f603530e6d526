package idea

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	MetadataDirName = ".idea"
	nameFileName    = ".name"
)

var ErrProjectNotFound = errors.New("no .idea directory found")

type ProjectContext struct {
	Root        string
	MetadataDir string
	Name        string
}

// Locate finds the IDE metadata directory directly under start. The scope
// is exactly the given path; ancestors are not searched.
func Locate(start string) (ProjectContext, error) {
	root := start
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	metaDir := filepath.Join(root, MetadataDirName)
	info, err := os.Stat(metaDir)
	if err != nil {
		return ProjectContext{}, fmt.Errorf("%w in %s; open the project in PyCharm or IntelliJ IDEA once first", ErrProjectNotFound, root)
	}
	if !info.IsDir() {
		return ProjectContext{}, fmt.Errorf("%w: %s exists but is not a directory", ErrProjectNotFound, metaDir)
	}

	return ProjectContext{Root: root, MetadataDir: metaDir, Name: projectName(root, metaDir)}, nil
}

func projectName(root, metaDir string) string {
	if data, err := os.ReadFile(filepath.Join(metaDir, nameFileName)); err == nil {
		if name := strings.TrimSpace(string(data)); name != "" {
			return name
		}
	}
	return filepath.Base(root)
}

func (c ProjectContext) MiscPath() string {
	return filepath.Join(c.MetadataDir, MiscFileName)
}

// IsPythonProject guesses from existing IDE metadata whether the project
// is set up for Python. A project with no usable signal counts as Python:
// the user may be configuring a fresh checkout.
func (c ProjectContext) IsPythonProject() bool {
	modules, err := os.ReadFile(filepath.Join(c.MetadataDir, "modules.xml"))
	if err != nil {
		return true
	}
	if strings.Contains(string(modules), `type="PYTHON_MODULE"`) {
		return true
	}
	for _, name := range []string{"workspace.xml", MiscFileName} {
		content, err := os.ReadFile(filepath.Join(c.MetadataDir, name))
		if err != nil {
			continue
		}
		for _, marker := range []string{"PythonLanguage", "Python SDK", "PyInterpreter"} {
			if strings.Contains(string(content), marker) {
				return true
			}
		}
	}
	return false
}
