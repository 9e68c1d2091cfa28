package export

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/cdash/pkg/chart"
	"github.com/vanderheijden86/cdash/pkg/hooks"
	"github.com/vanderheijden86/cdash/pkg/model"
	"github.com/vanderheijden86/cdash/pkg/stats"
	"github.com/vanderheijden86/cdash/pkg/testutil"
)

var purple = color.RGBA{0x80, 0x00, 0x80, 0xff}

func sampleChart(t *testing.T) *chart.BarChart {
	t.Helper()
	c, err := chart.NewBarChart(testutil.QuickTable(40), chart.BarSpec{
		Title:   "Cement vs Water",
		XColumn: "cement",
		YColumn: "water",
		XLabel:  "Cement (kg/m³)",
		YLabel:  "Water (kg/m³)",
		Color:   purple,
	})
	if err != nil {
		t.Fatalf("NewBarChart: %v", err)
	}
	return c
}

func sampleSummary(t *testing.T) (*stats.Summary, *chart.Heatmap) {
	t.Helper()
	s, err := stats.Describe(testutil.QuickTable(40))
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	return s, chart.NewHeatmap(s, "Summary statistics (heat map)")
}

func TestSaveBarChart_SVGAndPNG(t *testing.T) {
	c := sampleChart(t)
	tmp := t.TempDir()

	cases := []struct {
		name string
		file string
	}{
		{"svg", "chart.svg"},
		{"png", "chart.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := filepath.Join(tmp, tc.file)
			if err := SaveBarChart(SnapshotOptions{Path: out}, c); err != nil {
				t.Fatalf("SaveBarChart: %v", err)
			}
			info, err := os.Stat(out)
			if err != nil {
				t.Fatalf("output not created: %v", err)
			}
			if info.Size() == 0 {
				t.Fatal("output file is empty")
			}
		})
	}
}

func TestSaveBarChart_PNGDecodes(t *testing.T) {
	out := filepath.Join(t.TempDir(), "chart.png")
	if err := SaveBarChart(SnapshotOptions{Path: out}, sampleChart(t)); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 960 || b.Dy() != 640 {
		t.Errorf("unexpected size %v", b)
	}
}

func TestRenderBarSVG_Content(t *testing.T) {
	var buf bytes.Buffer
	if err := renderBarSVG(&buf, buildBarLayout(sampleChart(t))); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	testutil.AssertContains(t, out,
		"<svg",
		"Cement vs Water",
		"Water (kg/m³)",
		`fill="#800080"`,
		"rotate(-90",
	)
	if !strings.HasSuffix(strings.TrimSpace(out), "</svg>") {
		t.Error("svg is not closed")
	}
}

func TestBuildBarLayout_BarsInsidePlot(t *testing.T) {
	l := buildBarLayout(sampleChart(t))
	if len(l.Bars) == 0 {
		t.Fatal("expected bars")
	}
	for i, b := range l.Bars {
		if b.X < l.Left-1 || b.X+b.W > l.Right+1 {
			t.Errorf("bar %d outside plot horizontally: %+v", i, b)
		}
		if b.Y < l.Top-1 || b.Y+b.H > l.Bottom+1 {
			t.Errorf("bar %d outside plot vertically: %+v", i, b)
		}
	}
}

func TestSaveHeatmap(t *testing.T) {
	_, h := sampleSummary(t)
	dir := t.TempDir()

	for _, format := range []string{FormatSVG, FormatPNG} {
		out := filepath.Join(dir, "heat")
		if err := SaveHeatmap(SnapshotOptions{Path: out, Format: format}, h); err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if _, err := os.Stat(out + "." + format); err != nil {
			t.Errorf("%s: expected extension to be appended: %v", format, err)
		}
	}
}

func TestRenderHeatSVG_Content(t *testing.T) {
	_, h := sampleSummary(t)
	var buf bytes.Buffer
	if err := renderHeatSVG(&buf, buildHeatLayout(h)); err != nil {
		t.Fatal(err)
	}
	testutil.AssertContains(t, buf.String(),
		"Summary statistics (heat map)",
		"linearGradient",
		"url(#colorbar)",
		"25%",
		"strength",
	)
}

func TestSnapshot_UnsupportedFormat(t *testing.T) {
	err := SaveBarChart(SnapshotOptions{Path: "chart.txt", Format: "txt"}, sampleChart(t))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSnapshot_NilInputs(t *testing.T) {
	if err := SaveBarChart(SnapshotOptions{Path: "x.svg"}, nil); err == nil {
		t.Error("expected error for nil chart")
	}
	if err := SaveHeatmap(SnapshotOptions{Path: "x.svg"}, &chart.Heatmap{}); err == nil {
		t.Error("expected error for empty heat map")
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		in       SnapshotOptions
		wantPath string
		wantFmt  string
	}{
		{SnapshotOptions{Path: "a.png"}, "a.png", FormatPNG},
		{SnapshotOptions{Path: "a.PNG"}, "a.PNG", FormatPNG},
		{SnapshotOptions{Path: "a"}, "a.svg", FormatSVG},
		{SnapshotOptions{Path: "a", Format: ".PNG"}, "a.png", FormatPNG},
		{SnapshotOptions{Path: "a.out", Format: "svg"}, "a.out", FormatSVG},
	}
	for _, tt := range tests {
		got, err := tt.in.resolve()
		if err != nil {
			t.Errorf("resolve(%+v): %v", tt.in, err)
			continue
		}
		if got.Path != tt.wantPath || got.Format != tt.wantFmt {
			t.Errorf("resolve(%+v) = %s/%s, want %s/%s", tt.in, got.Path, got.Format, tt.wantPath, tt.wantFmt)
		}
	}
	if _, err := (SnapshotOptions{}).resolve(); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestWriteSummary_NullForMissing(t *testing.T) {
	tbl := testutil.QuickTable(5)
	nan := math.NaN()
	tbl.Columns = append(tbl.Columns, testutil.NumericColumn("empty", nan, nan, nan, nan, nan))
	s, err := stats.Describe(tbl)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteSummary(&buf, NewSummaryDocument(s, "concrete.csv", tbl.Len())); err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Rows    int              `json:"rows"`
		Source  string           `json:"source"`
		Columns []map[string]any `json:"columns"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if doc.Rows != 5 || doc.Source != "concrete.csv" {
		t.Errorf("unexpected header: %+v", doc)
	}
	last := doc.Columns[len(doc.Columns)-1]
	if last["column"] != "empty" {
		t.Fatalf("expected the empty column last, got %v", last["column"])
	}
	if last["mean"] != nil {
		t.Errorf("mean of an empty column should be null, got %v", last["mean"])
	}
	if last["count"] != float64(0) {
		t.Errorf("count should be 0, got %v", last["count"])
	}
}

func TestExportAll(t *testing.T) {
	s, h := sampleSummary(t)
	dir := filepath.Join(t.TempDir(), "out")

	paths, err := ExportAll(context.Background(), Options{Dir: dir, Format: "PNG"}, Bundle{
		Name:    "cement-water",
		Chart:   sampleChart(t),
		Heatmap: h,
		Summary: s,
		Rows:    40,
	})
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	want := []string{
		filepath.Join(dir, "cement-water.png"),
		filepath.Join(dir, "summary-heatmap.png"),
		filepath.Join(dir, "summary.json"),
	}
	if len(paths) != len(want) {
		t.Fatalf("got %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %s, want %s", i, paths[i], want[i])
		}
		if _, err := os.Stat(want[i]); err != nil {
			t.Errorf("missing %s: %v", want[i], err)
		}
	}
}

func TestExportAll_SkipsMissingChart(t *testing.T) {
	s, h := sampleSummary(t)
	paths, err := ExportAll(context.Background(), Options{Dir: t.TempDir()}, Bundle{
		Heatmap: h,
		Summary: s,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Errorf("expected heat map and summary only, got %v", paths)
	}
}

func TestExportAll_Errors(t *testing.T) {
	if _, err := ExportAll(context.Background(), Options{Format: "gif"}, Bundle{Chart: sampleChart(t)}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := ExportAll(context.Background(), Options{Dir: t.TempDir()}, Bundle{}); err == nil {
		t.Error("expected error for empty bundle")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ExportAll(ctx, Options{Dir: t.TempDir()}, Bundle{Chart: sampleChart(t)}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestExportAll_Hooks(t *testing.T) {
	s, h := sampleSummary(t)
	dir := t.TempDir()
	log := filepath.Join(dir, "hooks.log")

	cfg := &hooks.Config{Hooks: hooks.HooksByPhase{
		PreExport: []hooks.Hook{
			{Name: "pre", Command: "echo pre $CDASH_SELECTION >> " + log, Timeout: 5 * time.Second, OnError: hooks.OnErrorFail},
		},
		PostExport: []hooks.Hook{
			{Name: "post", Command: "echo post $CDASH_EXPORT_FILES >> " + log, Timeout: 5 * time.Second, OnError: hooks.OnErrorContinue},
		},
	}}
	paths, err := ExportAll(context.Background(), Options{Dir: dir, Hooks: cfg}, Bundle{
		Name:    "age-strength",
		Heatmap: h,
		Summary: s,
	})
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}

	data, err := os.ReadFile(log)
	if err != nil {
		t.Fatalf("hooks did not run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 hook lines, got %q", data)
	}
	if lines[0] != "pre age-strength" {
		t.Errorf("pre hook line = %q", lines[0])
	}
	if !strings.Contains(lines[1], paths[0]) {
		t.Errorf("post hook should see written files, got %q", lines[1])
	}
}

func TestExportAll_PreHookAborts(t *testing.T) {
	s, _ := sampleSummary(t)
	dir := filepath.Join(t.TempDir(), "out")
	cfg := &hooks.Config{Hooks: hooks.HooksByPhase{PreExport: []hooks.Hook{
		{Name: "gate", Command: "exit 1", Timeout: time.Second, OnError: hooks.OnErrorFail},
	}}}

	if _, err := ExportAll(context.Background(), Options{Dir: dir, Hooks: cfg}, Bundle{Summary: s}); err == nil {
		t.Fatal("expected failing pre-export hook to abort")
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("nothing should be written after an aborted export, stat err = %v", err)
	}
}

func TestExportAll_LargeAxisValues(t *testing.T) {
	tbl := &model.Table{Columns: []model.Column{
		testutil.NumericColumn("age", 1e17, 1e17+16),
		testutil.NumericColumn("strength", 12.5, 40.1),
	}}
	c, err := chart.NewBarChart(tbl, chart.BarSpec{Title: "Age", XColumn: "age", YColumn: "strength", Color: purple})
	if err != nil {
		t.Fatalf("NewBarChart: %v", err)
	}

	done := make(chan error, 1)
	dir := t.TempDir()
	go func() {
		_, err := ExportAll(context.Background(), Options{Dir: dir, Format: "png"}, Bundle{Name: "age", Chart: c})
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ExportAll: %v", err)
		}
	case <-time.After(20 * time.Second):
		t.Fatal("export did not finish")
	}
	if _, err := os.Stat(filepath.Join(dir, "age.png")); err != nil {
		t.Errorf("chart snapshot missing: %v", err)
	}
}
