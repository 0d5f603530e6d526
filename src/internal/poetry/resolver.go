package poetry

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"idesync/src/internal/telemetry"
	"idesync/src/internal/utils"
)

var (
	ErrEnvironmentNotFound = errors.New("poetry environment not found")
	ErrInterpreterInvalid  = errors.New("interpreter failed validation")
)

// Source identifies which poetry query produced an interpreter.
type Source int

const (
	SourceEnvInfo  Source = iota // poetry env info --path
	SourceRunWhich               // poetry run which python
)

func (s Source) String() string {
	if s == SourceRunWhich {
		return "run-which"
	}
	return "env-info"
}

type ResolvedInterpreter struct {
	Path   string
	EnvID  string
	Source Source
}

// RunCommand executes name with args in dir and returns its stdout.
// Tests substitute this to fake the poetry binary.
type RunCommand func(ctx context.Context, dir, name string, args ...string) (string, error)

func execRun(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	return string(out), err
}

const DefaultTimeout = 5 * time.Second

type Resolver struct {
	Poetry  string
	Timeout time.Duration
	Run     RunCommand
}

func NewResolver() *Resolver {
	return &Resolver{Poetry: "poetry", Timeout: DefaultTimeout, Run: execRun}
}

type provider struct {
	source Source
	query  func(ctx context.Context, root string) (string, error)
}

// providers are tried in order; the first one that yields a candidate
// path wins candidacy and the candidate is validated. Adding a third
// query means appending here.
func (r *Resolver) providers() []provider {
	return []provider{
		{SourceEnvInfo, r.queryEnvInfo},
		{SourceRunWhich, r.queryRunWhich},
	}
}

// Resolve finds the Python interpreter of the project's poetry
// environment. A candidate obtained from poetry that fails validation is
// a misconfiguration, not absence, so the cascade stops there instead of
// trying the next query.
func (r *Resolver) Resolve(parent context.Context, projectRoot string) (res ResolvedInterpreter, retErr error) {
	done := telemetry.StartSpan("poetry.resolve", "root", projectRoot)
	defer func() {
		fields := []any{"status", "ok", "source", res.Source.String()}
		if retErr != nil {
			fields = []any{"status", "error", "error", retErr.Error()}
		}
		done(fields...)
	}()

	ctx, cancel := context.WithTimeout(parent, r.timeout())
	defer cancel()

	for _, p := range r.providers() {
		candidate, err := p.query(ctx, projectRoot)
		if ctx.Err() != nil {
			return ResolvedInterpreter{}, fmt.Errorf("%w: poetry did not answer within %s", ErrEnvironmentNotFound, r.timeout())
		}
		if err != nil || candidate == "" {
			continue
		}
		path := utils.Normalize(candidate)
		if !utils.IsExecutable(path) {
			return ResolvedInterpreter{}, fmt.Errorf("%w: %s reported by `poetry %s` does not exist or is not executable", ErrInterpreterInvalid, path, p.source)
		}
		return ResolvedInterpreter{Path: path, EnvID: DeriveEnvID(path), Source: p.source}, nil
	}

	if r.IsAvailable(parent) {
		return ResolvedInterpreter{}, fmt.Errorf("%w: poetry reported no environment for %s; run `poetry install` first", ErrEnvironmentNotFound, projectRoot)
	}
	return ResolvedInterpreter{}, fmt.Errorf("%w: poetry is not installed or not on PATH", ErrEnvironmentNotFound)
}

func (r *Resolver) queryEnvInfo(ctx context.Context, root string) (string, error) {
	out, err := r.run(ctx, root, "env", "info", "--path")
	if err != nil {
		return "", err
	}
	envRoot := utils.FirstLine(out)
	if envRoot == "" {
		return "", nil
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(envRoot, "Scripts", "python.exe"), nil
	}
	return filepath.Join(envRoot, "bin", "python"), nil
}

func (r *Resolver) queryRunWhich(ctx context.Context, root string) (string, error) {
	locator := "which"
	if runtime.GOOS == "windows" {
		locator = "where"
	}
	out, err := r.run(ctx, root, "run", locator, "python")
	if err != nil {
		return "", err
	}
	return utils.FirstLine(out), nil
}

// IsAvailable probes for a working poetry binary.
func (r *Resolver) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()
	out, err := r.run(ctx, "", "--version")
	return err == nil && utils.FirstLine(out) != ""
}

func (r *Resolver) run(ctx context.Context, dir string, args ...string) (string, error) {
	runner := r.Run
	if runner == nil {
		runner = execRun
	}
	poetry := r.Poetry
	if poetry == "" {
		poetry = "poetry"
	}
	return runner(ctx, dir, poetry, args...)
}

func (r *Resolver) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return DefaultTimeout
}
