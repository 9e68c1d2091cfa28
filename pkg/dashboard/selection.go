// Package dashboard wires the loaded table to the four fixed chart
// selections, their narratives and the summary statistics.
package dashboard

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/vanderheijden86/cdash/pkg/chart"
	"github.com/vanderheijden86/cdash/pkg/model"
)

// ErrUnknownSelection is returned by Resolve for labels outside the
// fixed set.
var ErrUnknownSelection = errors.New("unknown selection")

// Selection keys.
const (
	KeyAgeStrength    = "age-strength"
	KeyCementStrength = "cement-strength"
	KeyWaterStrength  = "water-strength"
	KeyCementWater    = "cement-water"
)

// Selection is one of the fixed bar charts.
type Selection struct {
	Key       string
	Label     string
	XColumn   string
	YColumn   string
	XLabel    string
	YLabel    string
	Alternate bool // drawn in the alternate color
}

// Color returns the bar color for s.
func (s Selection) Color() color.RGBA {
	if s.Alternate {
		return chart.ColorAlternate
	}
	return chart.ColorDefault
}

// BarSpec turns s into a chart spec titled with its label.
func (s Selection) BarSpec() chart.BarSpec {
	return chart.BarSpec{
		Title:   s.Label,
		XColumn: s.XColumn,
		YColumn: s.YColumn,
		XLabel:  s.XLabel,
		YLabel:  s.YLabel,
		Color:   s.Color(),
	}
}

// Keys lists the selection keys in menu order.
var Keys = []string{KeyAgeStrength, KeyCementStrength, KeyWaterStrength, KeyCementWater}

var selectionColumns = map[string][2]string{
	KeyAgeStrength:    {model.ColAge, model.ColStrength},
	KeyCementStrength: {model.ColCement, model.ColStrength},
	KeyWaterStrength:  {model.ColWater, model.ColStrength},
	KeyCementWater:    {model.ColCement, model.ColWater},
}

// Selections returns the four selections in menu order, labelled in lang.
func Selections(lang Language) []Selection {
	cat := catalogFor(lang)
	out := make([]Selection, 0, len(Keys))
	for _, k := range Keys {
		cols := selectionColumns[k]
		out = append(out, Selection{
			Key:       k,
			Label:     cat.labels[k],
			XColumn:   cols[0],
			YColumn:   cols[1],
			XLabel:    cat.axis[cols[0]],
			YLabel:    cat.axis[cols[1]],
			Alternate: k == KeyCementWater,
		})
	}
	return out
}

// Default returns the first selection.
func Default(lang Language) Selection {
	return Selections(lang)[0]
}

// Resolve finds the selection named by label, which may be a menu label in
// any supported language, a key, or a 1-based menu index. The result is
// labelled in lang.
func Resolve(label string, lang Language) (Selection, error) {
	want := strings.TrimSpace(label)
	sels := Selections(lang)

	if n, err := strconv.Atoi(want); err == nil {
		if n >= 1 && n <= len(sels) {
			return sels[n-1], nil
		}
		return Selection{}, fmt.Errorf("%q: %w", label, ErrUnknownSelection)
	}

	for i, k := range Keys {
		if strings.EqualFold(want, k) {
			return sels[i], nil
		}
		for _, l := range Languages {
			if strings.EqualFold(want, catalogFor(l).labels[k]) {
				return sels[i], nil
			}
		}
	}
	return Selection{}, fmt.Errorf("%q: %w", label, ErrUnknownSelection)
}

// Index returns the menu position of key, or -1.
func Index(key string) int {
	for i, k := range Keys {
		if k == key {
			return i
		}
	}
	return -1
}
