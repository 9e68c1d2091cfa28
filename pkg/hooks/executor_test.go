package hooks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestExecutorRunSimpleHook(t *testing.T) {
	config := &Config{Hooks: HooksByPhase{PreExport: []Hook{
		{Name: "echo-test", Command: "echo hello", Timeout: 5 * time.Second, OnError: OnErrorFail},
	}}}

	executor := NewExecutor(config, ExportContext{Dir: "/tmp/out", Format: "svg", Timestamp: time.Now()})
	if err := executor.RunPreExport(); err != nil {
		t.Fatalf("expected hook to succeed, got: %v", err)
	}

	results := executor.Results()
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].Success {
		t.Errorf("expected success, got failure: %v", results[0].Error)
	}
	if results[0].Stdout != "hello" {
		t.Errorf("expected stdout 'hello', got %q", results[0].Stdout)
	}
	if results[0].Phase != PreExport {
		t.Errorf("expected pre-export phase, got %s", results[0].Phase)
	}
}

func TestRunPreExportStopsOnFail(t *testing.T) {
	config := &Config{Hooks: HooksByPhase{PreExport: []Hook{
		{Name: "fail-fast", Command: "exit 1", Timeout: time.Second, OnError: OnErrorFail},
		{Name: "should-not-run", Command: "echo nope", Timeout: time.Second, OnError: OnErrorFail},
	}}}

	executor := NewExecutor(config, ExportContext{})
	if err := executor.RunPreExport(); err == nil {
		t.Fatal("expected error from failing pre-export hook")
	}
	results := executor.Results()
	if len(results) != 1 {
		t.Fatalf("expected only first hook to run, got %d results", len(results))
	}
}

func TestRunPreExportContinue(t *testing.T) {
	config := &Config{Hooks: HooksByPhase{PreExport: []Hook{
		{Name: "soft", Command: "exit 3", Timeout: time.Second, OnError: OnErrorContinue},
		{Name: "next", Command: "echo ran", Timeout: time.Second, OnError: OnErrorFail},
	}}}

	executor := NewExecutor(config, ExportContext{})
	if err := executor.RunPreExport(); err != nil {
		t.Fatalf("continue policy should not fail the phase: %v", err)
	}
	if got := executor.Results()[1].Stdout; got != "ran" {
		t.Errorf("second hook stdout = %q", got)
	}
}

func TestRunPostExportFailOnErrorStillRunsAll(t *testing.T) {
	config := &Config{Hooks: HooksByPhase{PostExport: []Hook{
		{Name: "fail", Command: "exit 1", Timeout: time.Second, OnError: OnErrorFail},
		{Name: "after", Command: "echo ok", Timeout: time.Second, OnError: OnErrorContinue},
	}}}

	executor := NewExecutor(config, ExportContext{})
	err := executor.RunPostExport()
	if err == nil {
		t.Fatal("expected error for post-export hook with on_error=fail")
	}
	if !strings.Contains(err.Error(), `"fail"`) {
		t.Errorf("error should name the hook: %v", err)
	}

	results := executor.Results()
	if len(results) != 2 {
		t.Fatalf("expected both hooks to run, got %d", len(results))
	}
	if results[1].Stdout != "ok" {
		t.Errorf("expected second hook to run despite earlier failure, got stdout %q", results[1].Stdout)
	}
}

func TestExecutorHookTimeout(t *testing.T) {
	config := &Config{Hooks: HooksByPhase{PreExport: []Hook{
		{Name: "slow-hook", Command: "sleep 10", Timeout: 100 * time.Millisecond, OnError: OnErrorFail},
	}}}

	executor := NewExecutor(config, ExportContext{})
	if err := executor.RunPreExport(); err == nil {
		t.Error("expected timeout error")
	}

	results := executor.Results()
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Success {
		t.Error("expected hook to fail due to timeout")
	}
	if results[0].Duration < 100*time.Millisecond {
		t.Errorf("expected duration >= 100ms, got %v", results[0].Duration)
	}
	if !strings.Contains(results[0].Error.Error(), "timed out") {
		t.Errorf("expected timeout error, got %v", results[0].Error)
	}
}

func TestExecutorEnvironmentVariables(t *testing.T) {
	config := &Config{Hooks: HooksByPhase{PostExport: []Hook{
		{Name: "env-test", Command: "echo $CDASH_SELECTION $CDASH_ROW_COUNT $CDASH_EXPORT_FILES", Timeout: 5 * time.Second},
	}}}

	executor := NewExecutor(config, ExportContext{Selection: "water-strength", RowCount: 99})
	executor.SetFiles([]string{"/out/a.svg"})
	if err := executor.RunPostExport(); err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if got := executor.Results()[0].Stdout; got != "water-strength 99 /out/a.svg" {
		t.Errorf("expected env vars in output, got %q", got)
	}
}

func TestExecutorCustomEnvExpansion(t *testing.T) {
	t.Setenv("TEST_HOOK_VAR", "expanded_value")

	config := &Config{Hooks: HooksByPhase{PreExport: []Hook{{
		Name:    "env-expand",
		Command: "echo $CUSTOM_VAR",
		Timeout: 5 * time.Second,
		OnError: OnErrorFail,
		Env:     map[string]string{"CUSTOM_VAR": "${TEST_HOOK_VAR}"},
	}}}}

	executor := NewExecutor(config, ExportContext{})
	if err := executor.RunPreExport(); err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if got := executor.Results()[0].Stdout; got != "expanded_value" {
		t.Errorf("expected env expansion, got %q", got)
	}
}

func TestExecutorCommandNotFound(t *testing.T) {
	config := &Config{Hooks: HooksByPhase{PreExport: []Hook{
		{Name: "missing", Command: "definitely-not-a-real-command-xyz", Timeout: time.Second, OnError: OnErrorFail},
	}}}

	exec := NewExecutor(config, ExportContext{})
	if err := exec.RunPreExport(); err == nil {
		t.Fatal("expected error for missing command")
	}
	results := exec.Results()
	if len(results) != 1 || results[0].Success {
		t.Fatalf("expected failure result for missing command, got %+v", results)
	}
	if results[0].Stderr == "" {
		t.Fatal("expected stderr to include shell error")
	}
}

func TestExecutorPermissionDenied(t *testing.T) {
	script := filepath.Join(t.TempDir(), "script.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho nope\n"), 0644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	config := &Config{Hooks: HooksByPhase{PreExport: []Hook{
		{Name: "perm", Command: script, Timeout: time.Second, OnError: OnErrorFail},
	}}}

	exec := NewExecutor(config, ExportContext{})
	if err := exec.RunPreExport(); err == nil {
		t.Fatal("expected permission error")
	}
}

func TestExecutorSummary(t *testing.T) {
	config := &Config{Hooks: HooksByPhase{
		PreExport:  []Hook{{Name: "success-hook", Command: "echo ok", Timeout: 5 * time.Second, OnError: OnErrorContinue}},
		PostExport: []Hook{{Name: "noisy", Command: "printf '%0300d' 0 1>&2; exit 1", Timeout: time.Second, OnError: OnErrorContinue}},
	}}

	executor := NewExecutor(config, ExportContext{})
	if executor.Summary() != "" {
		t.Error("summary should be empty before any run")
	}
	_ = executor.RunPreExport()
	_ = executor.RunPostExport()

	summary := executor.Summary()
	if !strings.Contains(summary, "1 succeeded") || !strings.Contains(summary, "1 failed") {
		t.Errorf("summary should mention success and failure count: %s", summary)
	}
	for _, line := range strings.Split(summary, "\n") {
		if strings.Contains(line, "stderr:") && len(line) > 230 {
			t.Fatalf("expected truncated stderr line, got length %d", len(line))
		}
	}
	if !strings.Contains(summary, "...") {
		t.Fatal("expected ellipsis indicating truncation")
	}
}

func TestTruncateBehaviour(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate should return original when shorter, got %q", got)
	}
	if got := truncate("abcdefghijklmnopqrstuvwxyz", 8); got != "abcde..." {
		t.Fatalf("unexpected truncation output: %q", got)
	}
}
