package poetry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

const fakeEnvName = "demo-app-x7Kp2Qv9-py3.12"

// writeFakeInterpreter lays out a venv-shaped directory with an
// executable python file and returns the interpreter path.
func writeFakeInterpreter(t *testing.T) string {
	t.Helper()
	envRoot := filepath.Join(t.TempDir(), fakeEnvName)
	binDir := filepath.Join(envRoot, "bin")
	name := "python"
	if runtime.GOOS == "windows" {
		binDir = filepath.Join(envRoot, "Scripts")
		name = "python.exe"
	}
	if err := os.MkdirAll(binDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(binDir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("write interpreter: %v", err)
	}
	return path
}

func whichArgs() string {
	if runtime.GOOS == "windows" {
		return "run where python"
	}
	return "run which python"
}

type fakePoetry struct {
	responses map[string]string
	failures  map[string]error
	calls     []string
}

func (f *fakePoetry) run(ctx context.Context, dir, name string, args ...string) (string, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	if err, ok := f.failures[key]; ok {
		return "", err
	}
	if out, ok := f.responses[key]; ok {
		return out, nil
	}
	return "", errors.New("command failed: " + key)
}

func newTestResolver(f *fakePoetry) *Resolver {
	r := NewResolver()
	r.Run = f.run
	return r
}

func TestResolvePrimaryQuery(t *testing.T) {
	path := writeFakeInterpreter(t)
	envRoot := filepath.Dir(filepath.Dir(path))
	fake := &fakePoetry{responses: map[string]string{
		"env info --path": envRoot + "\n",
	}}

	res, err := newTestResolver(fake).Resolve(context.Background(), "/proj")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != SourceEnvInfo {
		t.Fatalf("expected env-info source, got %s", res.Source)
	}
	if res.EnvID != fakeEnvName {
		t.Fatalf("expected env id %s, got %s", fakeEnvName, res.EnvID)
	}
	if filepath.Base(filepath.Dir(filepath.Dir(res.Path))) != fakeEnvName {
		t.Fatalf("unexpected interpreter path: %s", res.Path)
	}
}

func TestResolveFallsBackToRunWhich(t *testing.T) {
	path := writeFakeInterpreter(t)
	fake := &fakePoetry{
		responses: map[string]string{whichArgs(): path + "\n"},
		failures:  map[string]error{"env info --path": errors.New("exit status 1")},
	}

	res, err := newTestResolver(fake).Resolve(context.Background(), "/proj")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != SourceRunWhich {
		t.Fatalf("expected run-which source, got %s", res.Source)
	}
}

func TestResolveBothQueriesFail(t *testing.T) {
	fake := &fakePoetry{responses: map[string]string{
		"--version": "Poetry (version 1.8.3)\n",
	}}

	_, err := newTestResolver(fake).Resolve(context.Background(), "/proj")
	if !errors.Is(err, ErrEnvironmentNotFound) {
		t.Fatalf("expected ErrEnvironmentNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "poetry install") {
		t.Fatalf("expected install hint for available poetry, got %q", err)
	}
}

func TestResolvePoetryMissing(t *testing.T) {
	fake := &fakePoetry{}

	_, err := newTestResolver(fake).Resolve(context.Background(), "/proj")
	if !errors.Is(err, ErrEnvironmentNotFound) {
		t.Fatalf("expected ErrEnvironmentNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "PATH") {
		t.Fatalf("expected PATH hint for missing poetry, got %q", err)
	}
}

func TestResolveInvalidCandidateDoesNotCascade(t *testing.T) {
	valid := writeFakeInterpreter(t)
	fake := &fakePoetry{responses: map[string]string{
		"env info --path": filepath.Join(t.TempDir(), "gone") + "\n",
		whichArgs():       valid + "\n",
	}}

	_, err := newTestResolver(fake).Resolve(context.Background(), "/proj")
	if !errors.Is(err, ErrInterpreterInvalid) {
		t.Fatalf("expected ErrInterpreterInvalid, got %v", err)
	}
	for _, call := range fake.calls {
		if call == whichArgs() {
			t.Fatal("fallback query ran after an invalid primary candidate")
		}
	}
}

func TestResolveTimeout(t *testing.T) {
	r := NewResolver()
	r.Timeout = 10 * time.Millisecond
	r.Run = func(ctx context.Context, dir, name string, args ...string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}

	start := time.Now()
	_, err := r.Resolve(context.Background(), "/proj")
	if !errors.Is(err, ErrEnvironmentNotFound) {
		t.Fatalf("expected ErrEnvironmentNotFound on timeout, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("resolution was not bounded by the timeout")
	}
}

func TestIsAvailable(t *testing.T) {
	fake := &fakePoetry{responses: map[string]string{"--version": "Poetry (version 1.8.3)\n"}}
	if !newTestResolver(fake).IsAvailable(context.Background()) {
		t.Fatal("expected poetry to be reported available")
	}

	broken := &fakePoetry{}
	if newTestResolver(broken).IsAvailable(context.Background()) {
		t.Fatal("expected poetry to be reported unavailable")
	}
}

func TestPythonVersion(t *testing.T) {
	fake := &fakePoetry{responses: map[string]string{"--version": "Python 3.12.1\n"}}
	version, err := newTestResolver(fake).PythonVersion(context.Background(), "/env/bin/python")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version != "3.12" {
		t.Fatalf("expected 3.12, got %s", version)
	}
}

func TestPythonVersionUnexpectedOutput(t *testing.T) {
	fake := &fakePoetry{responses: map[string]string{"--version": "not python\n"}}
	if _, err := newTestResolver(fake).PythonVersion(context.Background(), "/env/bin/python"); err == nil {
		t.Fatal("expected error for unexpected version output")
	}
}
