package idea

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/beevik/etree"

	"idesync/src/internal/poetry"
	"idesync/src/internal/telemetry"
)

const (
	MiscFileName = "misc.xml"
	BackupSuffix = ".backup"

	componentName = "ProjectRootManager"
	sdkType       = "Python SDK"
	languageLevel = "JDK_11"
	outputURL     = "file://$PROJECT_DIR$/out"
)

var (
	ErrConfigParse = errors.New("configuration file is not well-formed XML")
	ErrConfigWrite = errors.New("configuration file could not be written")
)

type Mode int

const (
	DryRun Mode = iota
	Write
)

type ChangeReport struct {
	Changed     bool
	PreviousSDK string
	NewSDK      string
	BackupPath  string
}

// SDKName composes the SDK label the IDE displays. Poetry's PyCharm
// integration matches on this exact format; do not change it.
func SDKName(envID string) string {
	return fmt.Sprintf("Poetry (%s)", envID)
}

type Patcher struct {
	Backup bool
}

func NewPatcher() *Patcher {
	return &Patcher{Backup: true}
}

// Apply makes the ProjectRootManager component of misc.xml declare the
// resolved interpreter as project SDK. The document is parsed into a
// tree, the one component is patched in place and the same tree is
// serialized again, so unrelated components, attributes and comments
// survive. A pre-change backup is written before any byte-level change.
func (p *Patcher) Apply(metadataDir string, res poetry.ResolvedInterpreter, projectName string, mode Mode, force bool) (rep ChangeReport, retErr error) {
	done := telemetry.StartSpan("idea.patch", "project", projectName, "env_id", res.EnvID, "dry_run", mode == DryRun)
	defer func() {
		fields := []any{"status", "ok", "changed", rep.Changed}
		if retErr != nil {
			fields = []any{"status", "error", "error", retErr.Error()}
		}
		done(fields...)
	}()

	path := filepath.Join(metadataDir, MiscFileName)

	var original []byte
	doc := etree.NewDocument()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		original = data
		if parseErr := doc.ReadFromBytes(data); parseErr != nil {
			return ChangeReport{}, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, parseErr)
		}
		if doc.Root() == nil {
			return ChangeReport{}, fmt.Errorf("%w: %s has no root element", ErrConfigParse, path)
		}
	case os.IsNotExist(err):
		doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
		doc.CreateElement("project").CreateAttr("version", "4")
	default:
		return ChangeReport{}, fmt.Errorf("read %s: %w", path, err)
	}

	report := ChangeReport{NewSDK: SDKName(res.EnvID)}

	component := findComponent(doc.Root())
	if component != nil {
		report.PreviousSDK = component.SelectAttrValue("project-jdk-name", "")
	}

	if componentInSync(component, report.NewSDK) && !force {
		return report, nil
	}

	if component == nil {
		component = doc.Root().CreateElement("component")
		component.CreateAttr("name", componentName)
	}
	component.CreateAttr("version", "2")
	component.CreateAttr("languageLevel", languageLevel)
	component.CreateAttr("project-jdk-name", report.NewSDK)
	component.CreateAttr("project-jdk-type", sdkType)
	if component.SelectElement("output") == nil {
		component.CreateElement("output").CreateAttr("url", outputURL)
	}

	if original == nil {
		doc.Indent(2)
	}
	updated, err := doc.WriteToBytes()
	if err != nil {
		return ChangeReport{}, fmt.Errorf("%w: serialize %s: %v", ErrConfigWrite, path, err)
	}
	report.Changed = !bytes.Equal(updated, original)

	if mode == DryRun || !report.Changed {
		return report, nil
	}

	if len(original) > 0 && p.Backup {
		backupPath := path + BackupSuffix
		if err := os.WriteFile(backupPath, original, 0644); err != nil {
			return ChangeReport{}, fmt.Errorf("%w: backup %s: %v", ErrConfigWrite, backupPath, err)
		}
		report.BackupPath = backupPath
	}
	if err := os.WriteFile(path, updated, 0644); err != nil {
		return ChangeReport{}, fmt.Errorf("%w: %s: %v", ErrConfigWrite, path, err)
	}
	return report, nil
}

// CurrentSDK reads the configured project SDK name without modifying
// anything. A missing file reports the empty name.
func CurrentSDK(metadataDir string) (string, error) {
	path := filepath.Join(metadataDir, MiscFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	doc := etree.NewDocument()
	if parseErr := doc.ReadFromBytes(data); parseErr != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrConfigParse, path, parseErr)
	}
	component := findComponent(doc.Root())
	if component == nil {
		return "", nil
	}
	return component.SelectAttrValue("project-jdk-name", ""), nil
}

func findComponent(root *etree.Element) *etree.Element {
	if root == nil {
		return nil
	}
	for _, el := range root.SelectElements("component") {
		if el.SelectAttrValue("name", "") == componentName {
			return el
		}
	}
	return nil
}

// componentInSync reports whether every attribute the patch would assert
// already carries its target value, including the output declaration.
func componentInSync(c *etree.Element, sdkName string) bool {
	return c != nil &&
		c.SelectAttrValue("version", "") == "2" &&
		c.SelectAttrValue("languageLevel", "") == languageLevel &&
		c.SelectAttrValue("project-jdk-name", "") == sdkName &&
		c.SelectAttrValue("project-jdk-type", "") == sdkType &&
		c.SelectElement("output") != nil
}
