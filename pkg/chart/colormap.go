package chart

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Colormap maps t in [0,1] to a color by interpolating between stops.
type Colormap struct {
	Name  string
	stops []colorful.Color
}

// NewColormap builds a colormap from hex stops spaced evenly over [0,1].
func NewColormap(name string, hexStops ...string) Colormap {
	cm := Colormap{Name: name}
	for _, h := range hexStops {
		c, err := colorful.Hex(h)
		if err != nil {
			continue
		}
		cm.stops = append(cm.stops, c)
	}
	return cm
}

// YlGnBu is the ColorBrewer yellow-green-blue sequential ramp; darker means
// higher.
var YlGnBu = NewColormap("YlGnBu",
	"#ffffd9", "#edf8b1", "#c7e9b4", "#7fcdbb", "#41b6c4",
	"#1d91c0", "#225ea8", "#253494", "#081d58",
)

// At returns the color at t. NaN maps to the lowest stop.
func (cm Colormap) At(t float64) color.RGBA {
	if len(cm.stops) == 0 {
		return color.RGBA{A: 0xff}
	}
	if math.IsNaN(t) || t <= 0 {
		return toRGBA(cm.stops[0])
	}
	if t >= 1 {
		return toRGBA(cm.stops[len(cm.stops)-1])
	}
	pos := t * float64(len(cm.stops)-1)
	i := int(pos)
	frac := pos - float64(i)
	return toRGBA(cm.stops[i].BlendRgb(cm.stops[i+1], frac))
}

// Normalize maps v from [lo,hi] to [0,1].
func Normalize(v, lo, hi float64) float64 {
	if hi <= lo || math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, (v-lo)/(hi-lo)))
}

// IsDark reports whether light text reads better than dark text on c.
func IsDark(c color.RGBA) bool {
	cf, _ := colorful.MakeColor(c)
	l, _, _ := cf.Lab()
	return l < 0.55
}

// Hex renders c as #rrggbb.
func Hex(c color.RGBA) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
