package loader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vanderheijden86/cdash/pkg/debug"
	"github.com/vanderheijden86/cdash/pkg/model"
)

// DataPathEnvVar is the name of the environment variable for a default dataset path.
const DataPathEnvVar = "CDASH_DATA"

// PreferredDataNames defines the lookup order when only a directory is given.
var PreferredDataNames = []string{"concrete.csv", "Concrete_Data.csv", "measurements.csv", "concrete.db"}

// ErrEmptyFile is returned when the input has no header row.
var ErrEmptyFile = errors.New("data file is empty")

// ResolveDataPath returns the dataset path to load, respecting CDASH_DATA.
// An explicit path wins; a directory is searched for PreferredDataNames.
func ResolveDataPath(path string) (string, error) {
	if path == "" {
		path = os.Getenv(DataPathEnvVar)
	}
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("no dataset found at %s: %w", path, err)
	}
	if !info.IsDir() {
		return path, nil
	}
	return FindDataPath(path)
}

// FindDataPath locates a dataset file in dir, preferring PreferredDataNames
// and falling back to the first non-empty .csv file.
func FindDataPath(dir string) (string, error) {
	for _, name := range PreferredDataNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() && info.Size() > 0 {
			return p, nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read data directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if info, err := e.Info(); err == nil && info.Size() > 0 {
			return p, nil
		}
	}
	return "", fmt.Errorf("no CSV dataset found in %s", dir)
}

// ParseOptions configures CSV parsing.
type ParseOptions struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// WarningHandler is called with warning messages (e.g. ragged rows).
	// If nil, warnings go to the debug log.
	WarningHandler func(string)
}

// LoadTableFromFile reads a CSV dataset from path.
func LoadTableFromFile(path string) (*model.Table, error) {
	return LoadTableFromFileWithOptions(path, ParseOptions{})
}

// LoadTableFromFileWithOptions reads a CSV dataset from path with custom options.
func LoadTableFromFileWithOptions(path string, opts ParseOptions) (*model.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer file.Close()

	tbl, err := ParseTableWithOptions(file, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tbl.Source = path
	debug.Log("loaded %d rows x %d columns from %s", tbl.Len(), len(tbl.Columns), path)
	return tbl, nil
}

// ParseTable parses CSV content with a header row into a table.
func ParseTable(r io.Reader) (*model.Table, error) {
	return ParseTableWithOptions(r, ParseOptions{})
}

// ParseTableWithOptions parses CSV content with custom options.
//
// Every header column is kept. A column is numeric when every non-empty
// cell parses as a float; empty cells become NaN. Rows shorter than the
// header are padded with empty cells, longer rows are truncated.
func ParseTableWithOptions(r io.Reader, opts ParseOptions) (*model.Table, error) {
	warn := opts.WarningHandler
	if warn == nil {
		warn = func(msg string) { debug.Log("loader: %s", msg) }
	}

	cr := csv.NewReader(&bomReader{r: bufio.NewReader(r)})
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make([]model.Column, len(header))
	for i, name := range header {
		cols[i] = model.Column{Name: strings.TrimSpace(name), Numeric: true}
	}

	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" && len(cols) > 1 {
			continue
		}
		if len(record) != len(cols) {
			warn(fmt.Sprintf("line %d has %d fields, header has %d", line, len(record), len(cols)))
		}
		for i := range cols {
			var cell string
			if i < len(record) {
				cell = strings.TrimSpace(record[i])
			}
			cols[i].Raw = append(cols[i].Raw, cell)
		}
	}

	for i := range cols {
		cols[i].Values, cols[i].Numeric = parseNumbers(cols[i].Raw)
	}
	return &model.Table{Columns: cols}, nil
}

// missingTokens are the cell values read as missing, matching the
// defaults of common dataframe readers.
var missingTokens = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true,
	"-1.#IND": true, "-1.#QNAN": true, "1.#IND": true, "1.#QNAN": true,
	"-NaN": true, "-nan": true, "NaN": true, "nan": true,
	"<NA>": true, "N/A": true, "n/a": true, "NA": true, "na": true,
	"NULL": true, "null": true, "None": true,
}

// IsMissing reports whether cell is one of the missing-value tokens.
func IsMissing(cell string) bool {
	return missingTokens[cell]
}

// parseNumbers converts cells to floats. Missing tokens are NaN. The second
// return value is false as soon as any other cell fails to parse.
func parseNumbers(raw []string) ([]float64, bool) {
	values := make([]float64, len(raw))
	for i, cell := range raw {
		if IsMissing(cell) {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

// bomReader strips a UTF-8 byte order mark from the start of the stream.
type bomReader struct {
	r       *bufio.Reader
	checked bool
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		if head, err := b.r.Peek(3); err == nil && bytes.Equal(head, []byte{0xEF, 0xBB, 0xBF}) {
			_, _ = b.r.Discard(3)
		}
	}
	return b.r.Read(p)
}
