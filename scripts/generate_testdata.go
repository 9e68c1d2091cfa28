//go:build ignore

// generate_testdata.go creates standard concrete datasets for benchmarking
// and manual runs.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/benchmark/small.csv    (100 rows)
//	testdata/benchmark/medium.csv   (1030 rows, the size of the UCI set)
//	testdata/benchmark/large.csv    (10000 rows, 5% missing cells)
//	testdata/benchmark/medium.db    (medium as a SQLite measurements table)
package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/cdash/internal/datasource"
	"github.com/vanderheijden86/cdash/pkg/model"
	"github.com/vanderheijden86/cdash/pkg/testutil"
)

type datasetSpec struct {
	name    string
	size    int
	missing float64
}

var datasets = []datasetSpec{
	{"small", 100, 0},
	{"medium", 1030, 0},
	{"large", 10000, 0.05},
}

func main() {
	outputDir := filepath.Join("testdata", "benchmark")
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		fmt.Printf("Generating %s dataset (%d rows)...\n", ds.name, ds.size)

		gen := testutil.New(testutil.GeneratorConfig{
			Seed:        int64(ds.size), // reproducible per size
			MissingRate: ds.missing,
		})
		tbl := gen.Table(ds.size)
		csv := testutil.ToCSV(tbl)

		outputPath := filepath.Join(outputDir, ds.name+".csv")
		if err := os.WriteFile(outputPath, []byte(csv), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}
		fmt.Printf("  Written %s (%d bytes)\n", outputPath, len(csv))

		if ds.name == "medium" {
			dbPath := filepath.Join(outputDir, ds.name+".db")
			if err := writeSQLite(dbPath, tbl); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", dbPath, err)
				os.Exit(1)
			}
			fmt.Printf("  Written %s\n", dbPath)
		}
	}

	fmt.Println("\nDone! Test datasets created in", outputDir)
}

// writeSQLite stores tbl as the measurements table, replacing any old file.
func writeSQLite(path string, tbl *model.Table) error {
	_ = os.Remove(path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	names := tbl.Names()
	cols := make([]string, len(names))
	marks := make([]string, len(names))
	for i, n := range names {
		cols[i] = n + " REAL"
		marks[i] = "?"
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", datasource.DefaultSQLiteTable, strings.Join(cols, ", "))
	if _, err := db.Exec(create); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		datasource.DefaultSQLiteTable, strings.Join(names, ", "), strings.Join(marks, ", "))
	stmt, err := tx.Prepare(insert)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := 0; i < tbl.Len(); i++ {
		args := make([]any, len(names))
		for j, cell := range tbl.Row(i) {
			if cell == "" {
				args[j] = nil
			} else {
				args[j] = cell
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
