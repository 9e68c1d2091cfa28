package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/cdash/pkg/model"
)

// AssertRowCount verifies the table has the expected number of rows.
func AssertRowCount(t *testing.T, tbl *model.Table, expected int) {
	t.Helper()
	if got := tbl.Len(); got != expected {
		t.Errorf("expected %d rows, got %d", expected, got)
	}
}

// AssertColumns verifies the table has exactly the named columns, in order.
func AssertColumns(t *testing.T, tbl *model.Table, names ...string) {
	t.Helper()
	got := tbl.Names()
	if strings.Join(got, ",") != strings.Join(names, ",") {
		t.Errorf("columns = %v, want %v", got, names)
	}
}

// AssertNumeric verifies each named column exists and parsed as numbers.
func AssertNumeric(t *testing.T, tbl *model.Table, names ...string) {
	t.Helper()
	for _, n := range names {
		c, err := tbl.Column(n)
		if err != nil {
			t.Errorf("column %s: %v", n, err)
			continue
		}
		if !c.Numeric {
			t.Errorf("column %s is not numeric", n)
		}
	}
}

// AssertErrorIs verifies err wraps target.
func AssertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Errorf("expected error wrapping %v, got %v", target, err)
	}
}

// AssertContains verifies s contains every substring.
func AssertContains(t *testing.T, s string, subs ...string) {
	t.Helper()
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			t.Errorf("output missing %q:\n%s", sub, s)
		}
	}
}

// AssertNotContains verifies s contains none of the substrings.
func AssertNotContains(t *testing.T, s string, subs ...string) {
	t.Helper()
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			t.Errorf("output unexpectedly contains %q:\n%s", sub, s)
		}
	}
}

// AssertJSONEqual compares two values after JSON round-tripping.
func AssertJSONEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}
	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}
	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// Golden file helpers

// GoldenFile handles golden file comparisons.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper.
// If GENERATE_GOLDEN env var is set, golden files will be updated.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    dir,
		name:   name,
		update: os.Getenv("GENERATE_GOLDEN") != "",
	}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual content against the golden file, or rewrites it
// when GENERATE_GOLDEN is set.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()

	path := g.Path()
	if g.update {
		if err := os.MkdirAll(g.dir, 0755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Fatalf("golden file does not exist: %s\nRun with GENERATE_GOLDEN=1 to create it", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}
	if string(expected) == actual {
		return
	}

	expLines := strings.Split(string(expected), "\n")
	actLines := strings.Split(actual, "\n")
	for i := 0; i < len(expLines) || i < len(actLines); i++ {
		var exp, act string
		if i < len(expLines) {
			exp = expLines[i]
		}
		if i < len(actLines) {
			act = actLines[i]
		}
		if exp != act {
			g.t.Errorf("golden file mismatch at line %d:\nexpected: %s\nactual:   %s", i+1, exp, act)
			return
		}
	}
	g.t.Errorf("golden file mismatch (length differs)")
}

// WriteCSV writes tbl as CSV under dir and returns the path.
func WriteCSV(t *testing.T, dir, name string, tbl *model.Table) string {
	t.Helper()
	return WriteFile(t, dir, name, ToCSV(tbl))
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
