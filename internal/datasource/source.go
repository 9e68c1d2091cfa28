// Package datasource detects what kind of dataset a path points at and
// loads it into a model.Table. CSV files are the primary source; a SQLite
// database holding a measurements table is also accepted.
package datasource

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeCSV is a delimited text file with a header row
	SourceTypeCSV SourceType = "csv"
	// SourceTypeSQLite is a SQLite database with a measurements table
	SourceTypeSQLite SourceType = "sqlite"
)

// DefaultSQLiteTable is the table read from SQLite sources.
const DefaultSQLiteTable = "measurements"

var sqliteMagic = []byte("SQLite format 3\x00")

// DataSource represents a dataset on disk
type DataSource struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the absolute path to the source file
	Path string `json:"path"`
	// Table is the SQLite table to read (ignored for CSV)
	Table string `json:"table,omitempty"`
	// Comma is the CSV delimiter (ignored for SQLite)
	Comma rune `json:"-"`
	// ModTime is the last modification time of the source
	ModTime time.Time `json:"mod_time"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	desc := fmt.Sprintf("%s (%s, %d bytes, mod=%s)", s.Path, s.Type, s.Size, s.ModTime.Format(time.RFC3339))
	if s.Type == SourceTypeSQLite {
		desc += fmt.Sprintf(" table=%s", s.Table)
	}
	return desc
}

// Detect stats path and classifies it. Known extensions decide directly;
// anything else is sniffed for the SQLite header and otherwise treated as
// CSV. A .tsv extension selects a tab delimiter.
func Detect(path string) (DataSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return DataSource{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return DataSource{}, fmt.Errorf("cannot stat data source: %w", err)
	}
	if info.IsDir() {
		return DataSource{}, fmt.Errorf("data source %s is a directory", abs)
	}

	src := DataSource{
		Path:    abs,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}

	switch strings.ToLower(filepath.Ext(abs)) {
	case ".db", ".sqlite", ".sqlite3":
		src.Type = SourceTypeSQLite
	case ".csv", ".txt":
		src.Type = SourceTypeCSV
	case ".tsv":
		src.Type = SourceTypeCSV
		src.Comma = '\t'
	default:
		isDB, err := hasSQLiteHeader(abs)
		if err != nil {
			return DataSource{}, err
		}
		if isDB {
			src.Type = SourceTypeSQLite
		} else {
			src.Type = SourceTypeCSV
		}
	}
	if src.Type == SourceTypeSQLite {
		src.Table = DefaultSQLiteTable
	}
	return src, nil
}

func hasSQLiteHeader(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("cannot open data source: %w", err)
	}
	defer f.Close()

	head := make([]byte, len(sqliteMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return bytes.Equal(head[:n], sqliteMagic), nil
}
