package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/vanderheijden86/cdash/pkg/debug"
)

// Result is the outcome of one hook run.
type Result struct {
	Hook     Hook
	Phase    HookPhase
	Success  bool
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// Executor runs the hooks of one export.
type Executor struct {
	config  *Config
	ctx     ExportContext
	results []Result
}

// NewExecutor creates an executor for cfg around the export described by ctx.
func NewExecutor(cfg *Config, ctx ExportContext) *Executor {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Executor{config: cfg, ctx: ctx}
}

// SetFiles records the written files for post-export hooks.
func (e *Executor) SetFiles(paths []string) {
	e.ctx.Files = append([]string(nil), paths...)
}

// RunPreExport runs pre-export hooks in order and stops at the first
// failing hook whose policy is fail.
func (e *Executor) RunPreExport() error {
	for _, h := range e.config.GetHooks(PreExport) {
		r := e.run(h, PreExport)
		if !r.Success && h.OnError != OnErrorContinue {
			return fmt.Errorf("pre-export hook %q failed: %w", h.Name, r.Error)
		}
	}
	return nil
}

// RunPostExport runs every post-export hook. The first failure whose
// policy is fail is returned after all hooks ran.
func (e *Executor) RunPostExport() error {
	var first error
	for _, h := range e.config.GetHooks(PostExport) {
		r := e.run(h, PostExport)
		if !r.Success && h.OnError == OnErrorFail && first == nil {
			first = fmt.Errorf("post-export hook %q failed: %w", h.Name, r.Error)
		}
	}
	return first
}

func (e *Executor) run(h Hook, phase HookPhase) Result {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", h.Command)
	cmd.Env = append(os.Environ(), e.ctx.ToEnv()...)
	for k, v := range h.Env {
		cmd.Env = append(cmd.Env, k+"="+os.ExpandEnv(v))
	}
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r := Result{
		Hook:     h,
		Phase:    phase,
		Success:  err == nil,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
		Error:    err,
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		r.Success = false
		r.Error = fmt.Errorf("timed out after %v", timeout)
	}
	debug.Log("hook %s (%s): success=%v in %v", h.Name, phase, r.Success, r.Duration)

	e.results = append(e.results, r)
	return r
}

// Results returns the results of every hook run so far.
func (e *Executor) Results() []Result {
	return e.results
}

// Summary describes the runs in a few lines, or "" when nothing ran.
func (e *Executor) Summary() string {
	if len(e.results) == 0 {
		return ""
	}
	var ok, failed int
	for _, r := range e.results {
		if r.Success {
			ok++
		} else {
			failed++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hooks: %d succeeded, %d failed", ok, failed)
	for _, r := range e.results {
		if r.Success {
			continue
		}
		fmt.Fprintf(&sb, "\n  %s (%s): %v", r.Hook.Name, r.Phase, r.Error)
		if r.Stderr != "" {
			fmt.Fprintf(&sb, "\n    stderr: %s", truncate(r.Stderr, 200))
		}
	}
	return sb.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
