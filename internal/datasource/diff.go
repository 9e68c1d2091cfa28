package datasource

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/cdash/pkg/model"
)

// TableDiff describes how a reloaded table differs from the previous one
type TableDiff struct {
	// RowsBefore is the row count of the previous table
	RowsBefore int
	// RowsAfter is the row count of the reloaded table
	RowsAfter int
	// AddedColumns are columns present only in the reloaded table
	AddedColumns []string
	// RemovedColumns are columns present only in the previous table
	RemovedColumns []string
	// ChangedCells counts cells that differ in rows and columns both tables share
	ChangedCells int
}

// HasChanges returns true if the reload changed anything visible
func (d TableDiff) HasChanges() bool {
	return d.RowsBefore != d.RowsAfter ||
		len(d.AddedColumns) > 0 ||
		len(d.RemovedColumns) > 0 ||
		d.ChangedCells > 0
}

// Summary returns a one-line human-readable summary
func (d TableDiff) Summary() string {
	if !d.HasChanges() {
		return fmt.Sprintf("no changes (%d rows)", d.RowsAfter)
	}
	var parts []string
	if d.RowsBefore != d.RowsAfter {
		parts = append(parts, fmt.Sprintf("rows %d → %d", d.RowsBefore, d.RowsAfter))
	}
	if len(d.AddedColumns) > 0 {
		parts = append(parts, fmt.Sprintf("+%s", strings.Join(d.AddedColumns, ",")))
	}
	if len(d.RemovedColumns) > 0 {
		parts = append(parts, fmt.Sprintf("-%s", strings.Join(d.RemovedColumns, ",")))
	}
	if d.ChangedCells > 0 {
		parts = append(parts, fmt.Sprintf("%d cells changed", d.ChangedCells))
	}
	return strings.Join(parts, "; ")
}

// CompareTables diffs two tables by column name and row position
func CompareTables(before, after *model.Table) TableDiff {
	d := TableDiff{
		RowsBefore: before.Len(),
		RowsAfter:  after.Len(),
	}

	prev := make(map[string]*model.Column)
	if before != nil {
		for i := range before.Columns {
			prev[before.Columns[i].Name] = &before.Columns[i]
		}
	}

	seen := make(map[string]bool)
	if after != nil {
		for _, c := range after.Columns {
			seen[c.Name] = true
			old, ok := prev[c.Name]
			if !ok {
				d.AddedColumns = append(d.AddedColumns, c.Name)
				continue
			}
			n := min(len(old.Raw), len(c.Raw))
			for i := 0; i < n; i++ {
				if old.Raw[i] != c.Raw[i] {
					d.ChangedCells++
				}
			}
		}
	}
	if before != nil {
		for _, c := range before.Columns {
			if !seen[c.Name] {
				d.RemovedColumns = append(d.RemovedColumns, c.Name)
			}
		}
	}
	return d
}
