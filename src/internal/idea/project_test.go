package idea

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocate(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, MetadataDirName), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	project, err := Locate(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if project.MetadataDir != filepath.Join(root, MetadataDirName) {
		t.Fatalf("unexpected metadata dir: %s", project.MetadataDir)
	}
	if project.Name != filepath.Base(root) {
		t.Fatalf("expected name %s, got %s", filepath.Base(root), project.Name)
	}
}

func TestLocateNameFileOverride(t *testing.T) {
	root := t.TempDir()
	metaDir := filepath.Join(root, MetadataDirName)
	if err := os.Mkdir(metaDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(metaDir, nameFileName), []byte("My Project\n"), 0644); err != nil {
		t.Fatalf("write .name: %v", err)
	}

	project, err := Locate(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if project.Name != "My Project" {
		t.Fatalf("expected name from .name file, got %q", project.Name)
	}
}

func TestLocateEmptyNameFileFallsBack(t *testing.T) {
	root := t.TempDir()
	metaDir := filepath.Join(root, MetadataDirName)
	if err := os.Mkdir(metaDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(metaDir, nameFileName), []byte("  \n"), 0644); err != nil {
		t.Fatalf("write .name: %v", err)
	}

	project, err := Locate(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if project.Name != filepath.Base(root) {
		t.Fatalf("expected fallback to directory name, got %q", project.Name)
	}
}

func TestLocateMissing(t *testing.T) {
	_, err := Locate(t.TempDir())
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestLocateMetadataIsAFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, MetadataDirName), []byte("not a dir"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Locate(root)
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestIsPythonProject(t *testing.T) {
	root := t.TempDir()
	metaDir := filepath.Join(root, MetadataDirName)
	if err := os.Mkdir(metaDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	project, err := Locate(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No signal at all counts as Python.
	if !project.IsPythonProject() {
		t.Fatal("project without metadata should default to Python")
	}

	modules := `<modules><module type="JAVA_MODULE" /></modules>`
	if err := os.WriteFile(filepath.Join(metaDir, "modules.xml"), []byte(modules), 0644); err != nil {
		t.Fatalf("write modules.xml: %v", err)
	}
	if project.IsPythonProject() {
		t.Fatal("java-only module list should not count as Python")
	}

	workspace := `<project><component name="x">Python SDK</component></project>`
	if err := os.WriteFile(filepath.Join(metaDir, "workspace.xml"), []byte(workspace), 0644); err != nil {
		t.Fatalf("write workspace.xml: %v", err)
	}
	if !project.IsPythonProject() {
		t.Fatal("Python SDK marker in workspace.xml should count as Python")
	}
}
