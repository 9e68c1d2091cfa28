package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var callCount atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() {
			callCount.Add(1)
		})
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	if count := callCount.Load(); count != 1 {
		t.Errorf("expected 1 callback invocation, got %d", count)
	}
	if d.Pending() {
		t.Error("nothing should be pending after the callback ran")
	}
}

func TestDebouncer_LastFunctionWins(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var got atomic.Int32
	d.Trigger(func() { got.Store(1) })
	d.Trigger(func() { got.Store(2) })

	time.Sleep(100 * time.Millisecond)
	if got.Load() != 2 {
		t.Errorf("expected the last function to run, got %d", got.Load())
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() {
		called.Store(true)
	})
	if !d.Pending() {
		t.Error("expected a pending function")
	}
	d.Cancel()

	time.Sleep(100 * time.Millisecond)

	if called.Load() {
		t.Error("callback should not have been invoked after cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	d := NewDebouncer(0)
	if d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected default duration %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

func writeDataset(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_DetectsRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concrete.csv")
	writeDataset(t, path, "age,strength\n28,30\n")

	var changed atomic.Int32
	w, err := New(path,
		WithDebounceDuration(50*time.Millisecond),
		WithOnChange(func() { changed.Add(1) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	writeDataset(t, path, "age,strength\n28,30\n90,55\n")

	if !waitFor(t, 2*time.Second, func() bool { return changed.Load() > 0 }) {
		t.Fatal("expected change to be detected")
	}
	if w.Changes() < 1 {
		t.Errorf("expected Changes() >= 1, got %d", w.Changes())
	}
}

func TestWatcher_AtomicRenameSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "concrete.csv")
	writeDataset(t, path, "age\n1\n")

	var (
		mu     sync.Mutex
		errs   []error
		change atomic.Int32
	)
	w, err := New(path,
		WithDebounceDuration(80*time.Millisecond),
		WithOnChange(func() { change.Add(1) }),
		WithOnError(func(err error) {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	time.Sleep(100 * time.Millisecond)

	tmp := filepath.Join(dir, ".concrete.csv.tmp")
	writeDataset(t, tmp, "age\n1\n2\n")
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 2*time.Second, func() bool { return change.Load() > 0 }) {
		t.Fatal("expected rename-over save to count as a change")
	}
	mu.Lock()
	defer mu.Unlock()
	for _, e := range errs {
		if errors.Is(e, ErrFileRemoved) {
			t.Errorf("rename-over save should not report removal")
		}
	}
}

func TestWatcher_SQLiteCompanionFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "concrete.db")
	writeDataset(t, path, "x")

	w, err := New(path, WithDebounceDuration(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if w.IsPolling() {
		t.Skip("polling mode on this filesystem")
	}
	time.Sleep(100 * time.Millisecond)

	writeDataset(t, path+"-wal", "wal frames")

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Fatal("expected a WAL write to count as a change")
	}
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "concrete.csv")
	writeDataset(t, path, "age\n1\n")

	var changed atomic.Int32
	w, err := New(path,
		WithDebounceDuration(30*time.Millisecond),
		WithOnChange(func() { changed.Add(1) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if w.IsPolling() {
		t.Skip("polling mode watches only the file itself")
	}
	time.Sleep(100 * time.Millisecond)

	writeDataset(t, filepath.Join(dir, "notes.txt"), "unrelated")
	time.Sleep(200 * time.Millisecond)

	if changed.Load() != 0 {
		t.Errorf("sibling write should not trigger a change, got %d", changed.Load())
	}
}

func TestWatcher_PollingFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concrete.csv")
	writeDataset(t, path, "age\n1\n")

	var changed atomic.Int32
	w, err := New(path,
		WithForcePoll(true),
		WithPollInterval(40*time.Millisecond),
		WithDebounceDuration(20*time.Millisecond),
		WithOnChange(func() { changed.Add(1) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("expected polling mode")
	}

	time.Sleep(60 * time.Millisecond)
	writeDataset(t, path, "age\n1\n2\n3\n")

	if !waitFor(t, 2*time.Second, func() bool { return changed.Load() > 0 }) {
		t.Error("expected polling to detect the change")
	}
}

func TestWatcher_PollingFileRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concrete.csv")
	writeDataset(t, path, "age\n1\n")

	var removed atomic.Bool
	w, err := New(path,
		WithForcePoll(true),
		WithPollInterval(30*time.Millisecond),
		WithOnError(func(err error) {
			if errors.Is(err, ErrFileRemoved) {
				removed.Store(true)
			}
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 2*time.Second, removed.Load) {
		t.Error("expected ErrFileRemoved")
	}
}

func TestWatcher_EnvForcePoll(t *testing.T) {
	t.Setenv(ForcePollEnvVar, "1")

	path := filepath.Join(t.TempDir(), "concrete.csv")
	writeDataset(t, path, "age\n")

	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Error("expected CDASH_FORCE_POLL to force polling")
	}
}

func TestWatcher_StartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-yet.csv")

	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if w.IsStarted() {
		t.Error("should not be started before Start")
	}
	if err := w.Start(); err != nil {
		t.Fatalf("missing file should not fail Start: %v", err)
	}
	if err := w.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
	w.Stop()
	w.Stop()
	if w.IsStarted() {
		t.Error("should be stopped")
	}
	if err := w.Start(); err != nil {
		t.Errorf("restart failed: %v", err)
	}
	w.Stop()
}

func TestWatcher_Accessors(t *testing.T) {
	w, err := New("relative.csv", WithPollInterval(5*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(w.Path()) {
		t.Errorf("expected absolute path, got %s", w.Path())
	}
	if w.PollInterval() != 5*time.Second {
		t.Errorf("unexpected poll interval %v", w.PollInterval())
	}
	if w.FilesystemType() != FSTypeUnknown {
		t.Errorf("filesystem type is only detected at Start, got %s", w.FilesystemType())
	}

	w2, _ := New("x.csv", WithPollInterval(0))
	if w2.PollInterval() != DefaultPollInterval {
		t.Errorf("zero interval should keep the default, got %v", w2.PollInterval())
	}
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{" YES ", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"nope", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Setenv("CDASH_TEST_BOOL", tt.value)
		if got := envBool("CDASH_TEST_BOOL"); got != tt.want {
			t.Errorf("envBool(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestIsRemoteFilesystem(t *testing.T) {
	for _, fs := range []FilesystemType{FSTypeNFS, FSTypeSMB, FSTypeFUSE, FSType9P} {
		if !isRemoteFilesystem(fs) {
			t.Errorf("%s should be remote", fs)
		}
	}
	for _, fs := range []FilesystemType{FSTypeLocal, FSTypeUnknown} {
		if isRemoteFilesystem(fs) {
			t.Errorf("%s should not be remote", fs)
		}
	}
}

func TestDetectFilesystemType_NonExistentDir(t *testing.T) {
	if got := DetectFilesystemType("/definitely/not/here/file.csv"); got != FSTypeUnknown {
		t.Errorf("expected unknown for missing dir, got %s", got)
	}
}
