package setup

import (
	"context"
	"os"

	"github.com/pterm/pterm"

	"idesync/src/internal/idea"
	"idesync/src/internal/poetry"
	"idesync/src/internal/telemetry"
)

type Options struct {
	ProjectPath string
	DryRun      bool
	Force       bool
	Verbose     bool
}

type Result struct {
	Project     idea.ProjectContext
	Interpreter poetry.ResolvedInterpreter
	ConfigFile  string
	Report      idea.ChangeReport
}

// Orchestrator wires locator, resolver and patcher into one run. The
// collaborators are fields so tests can substitute a resolver with a
// faked poetry binary.
type Orchestrator struct {
	Resolver *poetry.Resolver
	Patcher  *idea.Patcher
}

func New() *Orchestrator {
	return &Orchestrator{Resolver: poetry.NewResolver(), Patcher: idea.NewPatcher()}
}

// Run locates the IDE project, resolves the poetry interpreter and
// patches misc.xml, in that order. A failure in any stage surfaces as
// that stage's typed error and leaves no file-system side effects from
// later stages.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (Result, error) {
	done := telemetry.StartSpan("setup.run", "path", opts.ProjectPath, "dry_run", opts.DryRun, "force", opts.Force)

	projectPath := opts.ProjectPath
	if projectPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			done("status", "error", "error", err.Error())
			return Result{}, err
		}
		projectPath = wd
	}

	if opts.Verbose {
		pterm.Info.Printf("Setting up IDE configuration for %s\n", projectPath)
		if !poetry.IsPoetryProject(projectPath) {
			pterm.Warning.Println("No pyproject.toml with a [tool.poetry] section found")
		}
	}

	project, err := idea.Locate(projectPath)
	if err != nil {
		done("status", "error", "error", err.Error())
		return Result{}, err
	}
	if opts.Verbose {
		pterm.Info.Printf("Project: %s (%s)\n", project.Name, project.MetadataDir)
		if !project.IsPythonProject() {
			pterm.Warning.Println("Project metadata does not look like a Python project")
		}
	}

	resolved, err := o.Resolver.Resolve(ctx, project.Root)
	if err != nil {
		done("status", "error", "error", err.Error())
		return Result{}, err
	}
	if opts.Verbose {
		pterm.Info.Printf("Interpreter: %s (via %s)\n", resolved.Path, resolved.Source)
		pterm.Info.Printf("Environment: %s\n", resolved.EnvID)
	}

	mode := idea.Write
	if opts.DryRun {
		mode = idea.DryRun
	}
	report, err := o.Patcher.Apply(project.MetadataDir, resolved, project.Name, mode, opts.Force)
	if err != nil {
		done("status", "error", "error", err.Error())
		return Result{}, err
	}

	done("status", "ok", "changed", report.Changed)
	return Result{
		Project:     project,
		Interpreter: resolved,
		ConfigFile:  project.MiscPath(),
		Report:      report,
	}, nil
}
