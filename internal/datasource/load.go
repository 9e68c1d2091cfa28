package datasource

import (
	"fmt"
	"time"

	"github.com/vanderheijden86/cdash/pkg/debug"
	"github.com/vanderheijden86/cdash/pkg/loader"
	"github.com/vanderheijden86/cdash/pkg/metrics"
	"github.com/vanderheijden86/cdash/pkg/model"
)

// LoadTable resolves path (file, directory, or "" for CDASH_DATA / cwd),
// detects its source type and loads it.
func LoadTable(path string) (*model.Table, DataSource, error) {
	resolved, err := loader.ResolveDataPath(path)
	if err != nil {
		return nil, DataSource{}, err
	}
	src, err := Detect(resolved)
	if err != nil {
		return nil, DataSource{}, err
	}
	tbl, err := LoadFromSource(src)
	if err != nil {
		return nil, src, err
	}
	return tbl, src, nil
}

// LoadFromSource loads a table from a specific DataSource, dispatching to the
// appropriate reader based on source type.
func LoadFromSource(source DataSource) (*model.Table, error) {
	debug.Log("loading %s", source)
	defer metrics.TimerWithCallback(metrics.DataLoad, func(d time.Duration) {
		debug.LogTiming("load "+source.Path, d)
	})()

	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		return reader.LoadTable()

	case SourceTypeCSV:
		return loader.LoadTableFromFileWithOptions(source.Path, loader.ParseOptions{Comma: source.Comma})

	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}
