package ide

import (
	"os"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

type RuntimeContext struct {
	Product string
	Hosted  bool
}

// DetectRuntime reports whether this process appears to run inside a
// JetBrains IDE (embedded terminal, run configuration or hosted
// interpreter), identified by environment markers and the parent
// process tree.
func DetectRuntime() RuntimeContext {
	ctx := RuntimeContext{Hosted: os.Getenv("PYCHARM_HOSTED") != ""}

	if product := walkParentProcesses(); product != "" {
		ctx.Product = product
		return ctx
	}
	if ctx.Hosted || hasJetBrainsEnv() {
		ctx.Product = "JetBrains (unknown product)"
	}
	return ctx
}

func hasJetBrainsEnv() bool {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "PYCHARM_") {
			return true
		}
	}
	return false
}

func walkParentProcesses() string {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return ""
	}
	// Depth cap guards against cyclic pid reuse on exotic systems.
	for depth := 0; p != nil && depth < 32; depth++ {
		token := processToken(p)
		switch {
		case strings.Contains(token, "pycharm"):
			return "PyCharm"
		case strings.Contains(token, "intellij"), strings.Contains(token, "idea"):
			return "IntelliJ IDEA"
		}
		parent, err := p.Parent()
		if err != nil {
			return ""
		}
		p = parent
	}
	return ""
}

func processToken(p *process.Process) string {
	if exe, err := p.Exe(); err == nil && exe != "" {
		return strings.ToLower(exe)
	}
	if name, err := p.Name(); err == nil && name != "" {
		return strings.ToLower(name)
	}
	if cmd, err := p.Cmdline(); err == nil {
		return strings.ToLower(cmd)
	}
	return ""
}
