package export

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/cdash/pkg/chart"
	"github.com/vanderheijden86/cdash/pkg/debug"
	"github.com/vanderheijden86/cdash/pkg/hooks"
	"github.com/vanderheijden86/cdash/pkg/stats"
)

// File names written by ExportAll, without extension.
const (
	HeatmapName = "summary-heatmap"
	SummaryName = "summary.json"
)

// Bundle is what one snapshot contains. Nil parts are skipped, so a page
// whose chart failed still exports its statistics.
type Bundle struct {
	Name    string // base name for the chart image, e.g. the selection key
	Chart   *chart.BarChart
	Heatmap *chart.Heatmap
	Summary *stats.Summary
	Source  string
	Rows    int
}

// Options controls ExportAll.
type Options struct {
	Dir    string
	Format string // svg or png; empty means svg
	Hooks  *hooks.Config
}

// ExportAll writes every part of b into opts.Dir concurrently and returns
// the written paths in sorted order. The first failure cancels the rest.
// Pre-export hooks run first and a failing one aborts the export;
// post-export hooks see the written files. A post-export failure is
// returned together with the paths.
func ExportAll(ctx context.Context, opts Options, b Bundle) ([]string, error) {
	defer debug.LogEnterExit("export.ExportAll")()

	format := strings.ToLower(opts.Format)
	if format == "" {
		format = FormatSVG
	}
	if format != FormatSVG && format != FormatPNG {
		return nil, fmt.Errorf("%q (want svg or png): %w", format, ErrUnsupportedFormat)
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	if b.Chart == nil && b.Heatmap == nil && b.Summary == nil {
		return nil, fmt.Errorf("nothing to export")
	}

	var hx *hooks.Executor
	if !opts.Hooks.Empty() {
		hx = hooks.NewExecutor(opts.Hooks, hooks.ExportContext{
			Dir:       dir,
			Format:    format,
			Selection: b.Name,
			RowCount:  b.Rows,
			Timestamp: time.Now(),
		})
		if err := hx.RunPreExport(); err != nil {
			return nil, err
		}
	}

	paths, err := writeAll(ctx, dir, format, b)
	if err != nil {
		return nil, err
	}

	if hx != nil {
		hx.SetFiles(paths)
		err = hx.RunPostExport()
		debug.Log("export: %s", hx.Summary())
	}
	return paths, err
}

func writeAll(ctx context.Context, dir, format string, b Bundle) ([]string, error) {

	type job struct {
		path string
		run  func() error
	}
	var jobs []job

	if b.Chart != nil {
		name := b.Name
		if name == "" {
			name = "chart"
		}
		p := filepath.Join(dir, name+"."+format)
		c := b.Chart
		jobs = append(jobs, job{p, func() error {
			return SaveBarChart(SnapshotOptions{Path: p, Format: format}, c)
		}})
	}
	if b.Heatmap != nil {
		p := filepath.Join(dir, HeatmapName+"."+format)
		h := b.Heatmap
		jobs = append(jobs, job{p, func() error {
			return SaveHeatmap(SnapshotOptions{Path: p, Format: format}, h)
		}})
	}
	if b.Summary != nil {
		p := filepath.Join(dir, SummaryName)
		doc := NewSummaryDocument(b.Summary, b.Source, b.Rows)
		jobs = append(jobs, job{p, func() error {
			return SaveSummary(p, doc)
		}})
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := j.run(); err != nil {
				return fmt.Errorf("export %s: %w", filepath.Base(j.path), err)
			}
			debug.Log("export: wrote %s", j.path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	paths := make([]string, len(jobs))
	for i, j := range jobs {
		paths[i] = j.path
	}
	sort.Strings(paths)
	return paths, nil
}
