// Package export writes dashboard snapshots: the selected bar chart and the
// summary heat map as SVG or PNG images, and the summary statistics as JSON.
package export

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/cdash/pkg/chart"
	"github.com/vanderheijden86/cdash/pkg/metrics"
)

// Image formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ErrUnsupportedFormat is returned for formats other than svg and png.
var ErrUnsupportedFormat = errors.New("unsupported format")

// SnapshotOptions controls image export.
type SnapshotOptions struct {
	Path   string // Output path; format inferred from extension when Format is empty
	Format string // "svg" or "png" (case-insensitive)
}

// resolve fills in the format and path, appending an extension to a bare
// path.
func (o SnapshotOptions) resolve() (SnapshotOptions, error) {
	format := strings.ToLower(strings.TrimPrefix(o.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(o.Path)) {
		case ".png":
			format = FormatPNG
		default:
			format = FormatSVG
		}
	}
	if format != FormatSVG && format != FormatPNG {
		return o, fmt.Errorf("%q (want svg or png): %w", format, ErrUnsupportedFormat)
	}
	if o.Path == "" {
		return o, fmt.Errorf("output path is required")
	}
	if filepath.Ext(o.Path) == "" {
		o.Path += "." + format
	}
	o.Format = format
	return o, nil
}

// SaveBarChart renders c to opts.Path.
func SaveBarChart(opts SnapshotOptions, c *chart.BarChart) error {
	defer metrics.Timer(metrics.Export)()

	if c == nil {
		return fmt.Errorf("no chart to export")
	}
	opts, err := opts.resolve()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout := buildBarLayout(c)
	if opts.Format == FormatPNG {
		return renderBarPNG(opts.Path, layout)
	}
	return writeFile(opts.Path, func(f *os.File) error {
		return renderBarSVG(f, layout)
	})
}

// SaveHeatmap renders h to opts.Path.
func SaveHeatmap(opts SnapshotOptions, h *chart.Heatmap) error {
	defer metrics.Timer(metrics.Export)()

	if h == nil || len(h.Rows) == 0 {
		return fmt.Errorf("no summary to export")
	}
	opts, err := opts.resolve()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout := buildHeatLayout(h)
	if opts.Format == FormatPNG {
		return renderHeatPNG(opts.Path, layout)
	}
	return writeFile(opts.Path, func(f *os.File) error {
		return renderHeatSVG(f, layout)
	})
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// --- shared styling ---------------------------------------------------------

var (
	colorBackdrop = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorAxis     = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorGrid     = color.RGBA{0xb0, 0xb0, 0xb0, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x55, 0x55, 0x55, 0xff}
	colorLegendBG = color.RGBA{0xff, 0xff, 0xff, 0xe6}
	colorCellLine = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
