package stats

import (
	"math"
	"strconv"
	"strings"
)

// Record is one column's summary in a JSON-safe form. Missing statistics
// (NaN) are nil.
type Record struct {
	Column string   `json:"column"`
	Count  *float64 `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Q1     *float64 `json:"25%"`
	Q2     *float64 `json:"50%"`
	Q3     *float64 `json:"75%"`
	Max    *float64 `json:"max"`
}

// Records converts the summary for JSON output.
func (s *Summary) Records() []Record {
	out := make([]Record, 0, len(s.Columns))
	for _, c := range s.Columns {
		out = append(out, Record{
			Column: c.Name,
			Count:  finite(c.Get(StatCount)),
			Mean:   finite(c.Get(StatMean)),
			Std:    finite(c.Get(StatStd)),
			Min:    finite(c.Get(StatMin)),
			Q1:     finite(c.Get(StatQ1)),
			Q2:     finite(c.Get(StatQ2)),
			Q3:     finite(c.Get(StatQ3)),
			Max:    finite(c.Get(StatMax)),
		})
	}
	return out
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// TSV renders the summary as tab-separated text in the transposed layout:
// a header of statistic names, then one line per column.
func (s *Summary) TSV() string {
	var b strings.Builder
	b.WriteString("column")
	for _, st := range Statistics {
		b.WriteByte('\t')
		b.WriteString(st)
	}
	b.WriteByte('\n')
	for _, c := range s.Columns {
		b.WriteString(c.Name)
		for _, v := range c.Values {
			b.WriteByte('\t')
			if math.IsNaN(v) {
				b.WriteString("NaN")
			} else {
				b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
