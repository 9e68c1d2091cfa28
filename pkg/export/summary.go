package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/cdash/pkg/metrics"
	"github.com/vanderheijden86/cdash/pkg/stats"
	"github.com/vanderheijden86/cdash/pkg/version"
)

// SummaryDocument is the JSON form of the summary statistics.
type SummaryDocument struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Version     string         `json:"version"`
	Source      string         `json:"source,omitempty"`
	Rows        int            `json:"rows"`
	Statistics  []string       `json:"statistics"`
	Columns     []stats.Record `json:"columns"`
}

// NewSummaryDocument wraps s for serialisation. Missing values become null.
func NewSummaryDocument(s *stats.Summary, source string, rows int) SummaryDocument {
	return SummaryDocument{
		GeneratedAt: time.Now().UTC(),
		Version:     version.Version,
		Source:      source,
		Rows:        rows,
		Statistics:  append([]string(nil), stats.Statistics...),
		Columns:     s.Records(),
	}
}

// WriteSummary encodes doc as indented JSON.
func WriteSummary(w io.Writer, doc SummaryDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// SaveSummary writes doc to path, creating the parent directory.
func SaveSummary(path string, doc SummaryDocument) error {
	defer metrics.Timer(metrics.Export)()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	return writeFile(path, func(f *os.File) error {
		return WriteSummary(f, doc)
	})
}
