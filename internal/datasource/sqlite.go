package datasource

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/cdash/pkg/loader"
	"github.com/vanderheijden86/cdash/pkg/model"
)

// SQLiteReader provides read access to a measurements database
type SQLiteReader struct {
	db    *sql.DB
	path  string
	table string
}

// NewSQLiteReader opens a SQLite database for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}
	table := source.Table
	if table == "" {
		table = DefaultSQLiteTable
	}
	if !validIdentifier(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	return &SQLiteReader{
		db:    db,
		path:  source.Path,
		table: table,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadTable reads every row of the measurements table. Column order follows
// the table definition; NULL becomes an empty cell (NaN when numeric).
func (r *SQLiteReader) LoadTable() (*model.Table, error) {
	rows, err := r.db.Query(fmt.Sprintf("SELECT * FROM %q", r.table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	cols := make([]model.Column, len(names))
	for i, n := range names {
		cols[i] = model.Column{Name: n, Numeric: true}
	}

	cells := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range cells {
		ptrs[i] = &cells[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table, err)
		}
		for i, v := range cells {
			raw, num, ok := convertCell(v)
			cols[i].Raw = append(cols[i].Raw, raw)
			if !ok {
				cols[i].Numeric = false
			}
			cols[i].Values = append(cols[i].Values, num)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range cols {
		if !cols[i].Numeric {
			cols[i].Values = nil
		}
	}
	return &model.Table{Source: r.path, Columns: cols}, nil
}

// convertCell renders a scanned value as text and reports whether it is
// usable as a number. NULL counts as a missing number.
func convertCell(v any) (string, float64, bool) {
	switch x := v.(type) {
	case nil:
		return "", math.NaN(), true
	case int64:
		return strconv.FormatInt(x, 10), float64(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), x, true
	case []byte:
		return parseText(string(x))
	case string:
		return parseText(x)
	default:
		s := fmt.Sprint(x)
		return s, math.NaN(), false
	}
}

func parseText(s string) (string, float64, bool) {
	s = strings.TrimSpace(s)
	if loader.IsMissing(s) {
		return s, math.NaN(), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s, math.NaN(), false
	}
	return s, f, true
}

func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
