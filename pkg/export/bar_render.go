package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/cdash/pkg/chart"
)

// --- layout computation ----------------------------------------------------

type barRect struct {
	X, Y, W, H float64
}

type barLayout struct {
	Width, Height int

	// plot area in pixels
	Left, Right, Top, Bottom float64

	XLo, XHi, YLo, YHi float64
	XTicks, YTicks     []float64

	Bars   []barRect
	Color  color.RGBA
	Title  string
	XLabel string
	YLabel string
	Legend string
}

func buildBarLayout(c *chart.BarChart) barLayout {
	const (
		width        = 960
		height       = 640
		marginLeft   = 84.0
		marginRight  = 32.0
		marginTop    = 64.0
		marginBottom = 76.0
	)

	l := barLayout{
		Width:  width,
		Height: height,
		Left:   marginLeft,
		Right:  width - marginRight,
		Top:    marginTop,
		Bottom: height - marginBottom,
		Color:  c.Color,
		Title:  c.Title,
		XLabel: c.XLabel,
		YLabel: c.YLabel,
		Legend: c.Legend,
	}

	l.XLo, l.XHi = c.XExtent()
	l.YLo = math.Min(0, c.YMin)
	l.YHi = c.YMax * 1.05
	if l.YHi <= l.YLo {
		l.YHi = l.YLo + 1
	}
	l.XTicks = chart.Ticks(l.XLo, l.XHi, 8)
	l.YTicks = chart.Ticks(l.YLo, l.YHi, 6)

	for _, b := range c.Bars {
		x0 := l.px(b.X - c.Width/2)
		x1 := l.px(b.X + c.Width/2)
		y0 := l.py(math.Max(b.Y, 0))
		y1 := l.py(math.Min(b.Y, 0))
		l.Bars = append(l.Bars, barRect{
			X: x0,
			Y: y0,
			W: math.Max(1, x1-x0),
			H: y1 - y0,
		})
	}
	return l
}

func (l barLayout) px(x float64) float64 {
	return l.Left + (x-l.XLo)/(l.XHi-l.XLo)*(l.Right-l.Left)
}

func (l barLayout) py(y float64) float64 {
	return l.Bottom - (y-l.YLo)/(l.YHi-l.YLo)*(l.Bottom-l.Top)
}

func tickLabel(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// --- rendering -------------------------------------------------------------

func renderBarPNG(path string, l barLayout) error {
	dc := drawBarPNG(l)
	return dc.SavePNG(path)
}

func drawBarPNG(l barLayout) *gg.Context {
	dc := gg.NewContext(l.Width, l.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	// grid
	dc.SetColor(colorGrid)
	dc.SetLineWidth(0.8)
	dc.SetDash(4, 3)
	for _, v := range l.YTicks {
		y := l.py(v)
		dc.DrawLine(l.Left, y, l.Right, y)
		dc.Stroke()
	}
	for _, v := range l.XTicks {
		x := l.px(v)
		dc.DrawLine(x, l.Top, x, l.Bottom)
		dc.Stroke()
	}
	dc.SetDash()

	// bars
	dc.SetColor(l.Color)
	for _, b := range l.Bars {
		dc.DrawRectangle(b.X, b.Y, b.W, b.H)
		dc.Fill()
	}

	// axes
	dc.SetColor(colorAxis)
	dc.SetLineWidth(1.2)
	dc.DrawRectangle(l.Left, l.Top, l.Right-l.Left, l.Bottom-l.Top)
	dc.Stroke()

	dc.SetColor(colorSubtle)
	for _, v := range l.YTicks {
		dc.DrawStringAnchored(tickLabel(v), l.Left-8, l.py(v), 1, 0.5)
	}
	for _, v := range l.XTicks {
		dc.DrawStringAnchored(tickLabel(v), l.px(v), l.Bottom+14, 0.5, 0.5)
	}

	dc.SetColor(colorText)
	dc.DrawStringAnchored(l.Title, float64(l.Width)/2, l.Top/2, 0.5, 0.5)
	dc.DrawStringAnchored(l.XLabel, (l.Left+l.Right)/2, float64(l.Height)-28, 0.5, 0.5)

	dc.Push()
	ylx, yly := 22.0, (l.Top+l.Bottom)/2
	dc.RotateAbout(gg.Radians(-90), ylx, yly)
	dc.DrawStringAnchored(l.YLabel, ylx, yly, 0.5, 0.5)
	dc.Pop()

	drawBarLegend(dc, l)
	return dc
}

func drawBarLegend(dc *gg.Context, l barLayout) {
	tw, _ := dc.MeasureString(l.Legend)
	boxW := tw + 44
	boxH := 26.0
	x := l.Right - boxW - 10
	y := l.Top + 10

	dc.SetColor(colorLegendBG)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 4)
	dc.Fill()
	dc.SetColor(colorGrid)
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 4)
	dc.Stroke()

	dc.SetColor(l.Color)
	dc.DrawRectangle(x+10, y+8, 18, 10)
	dc.Fill()
	dc.SetColor(colorText)
	dc.DrawStringAnchored(l.Legend, x+36, y+boxH/2, 0, 0.5)
}

func renderBarSVG(w io.Writer, l barLayout) error {
	canvas := svg.New(w)
	canvas.Start(l.Width, l.Height)
	canvas.Title(l.Title)
	canvas.Rect(0, 0, l.Width, l.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))

	left, right, top, bottom := int(l.Left), int(l.Right), int(l.Top), int(l.Bottom)
	gridStyle := fmt.Sprintf("stroke:%s;stroke-width:0.8;stroke-dasharray:4,3", css(colorGrid))
	for _, v := range l.YTicks {
		y := int(math.Round(l.py(v)))
		canvas.Line(left, y, right, y, gridStyle)
	}
	for _, v := range l.XTicks {
		x := int(math.Round(l.px(v)))
		canvas.Line(x, top, x, bottom, gridStyle)
	}

	canvas.Group(fmt.Sprintf(`fill="%s"`, css(l.Color)))
	for _, b := range l.Bars {
		canvas.Rect(int(math.Round(b.X)), int(math.Round(b.Y)), max(1, int(math.Round(b.W))), int(math.Round(b.H)))
	}
	canvas.Gend()

	canvas.Rect(left, top, right-left, bottom-top, fmt.Sprintf("fill:none;stroke:%s;stroke-width:1.2", css(colorAxis)))

	tick := fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorSubtle))
	for _, v := range l.YTicks {
		canvas.Text(left-8, int(l.py(v))+4, tickLabel(v), tick+";text-anchor:end")
	}
	for _, v := range l.XTicks {
		canvas.Text(int(l.px(v)), bottom+18, tickLabel(v), tick+";text-anchor:middle")
	}

	label := fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;text-anchor:middle", css(colorText))
	canvas.Text(l.Width/2, int(l.Top/2)+5, l.Title, label+";font-size:16px;font-weight:bold")
	canvas.Text((left+right)/2, l.Height-24, l.XLabel, label)
	canvas.TranslateRotate(22, (top+bottom)/2, -90)
	canvas.Text(0, 5, l.YLabel, label)
	canvas.Gend()

	boxW := len([]rune(l.Legend))*7 + 44
	x := right - boxW - 10
	y := top + 10
	canvas.Rect(x, y, boxW, 26, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(colorLegendBG), css(colorGrid)))
	canvas.Rect(x+10, y+8, 18, 10, fmt.Sprintf("fill:%s", css(l.Color)))
	canvas.Text(x+36, y+17, l.Legend, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorText)))

	canvas.End()
	return nil
}
