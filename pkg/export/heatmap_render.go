package export

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/cdash/pkg/chart"
)

type heatCell struct {
	X, Y  float64
	Fill  color.RGBA
	Ink   color.RGBA
	Label string
}

type heatLayout struct {
	Width, Height int
	Title         string

	Left, Top    float64
	CellW, CellH float64

	Rows  []string
	Cols  []string
	Cells []heatCell

	// colorbar
	BarX, BarY, BarW, BarH float64
	BarStops               []color.RGBA
	BarTicks               []float64
	Lo, Hi                 float64
}

const (
	heatCellW    = 86.0
	heatCellH    = 34.0
	heatRowLabel = 22 // characters
	heatBarSteps = 64
)

func buildHeatLayout(h *chart.Heatmap) heatLayout {
	left := 16.0 + heatRowLabel*7
	top := 72.0

	l := heatLayout{
		Title: h.Title,
		Left:  left,
		Top:   top,
		CellW: heatCellW,
		CellH: heatCellH,
		Rows:  make([]string, len(h.Rows)),
		Cols:  h.Cols,
		Lo:    h.Lo,
		Hi:    h.Hi,
	}
	for i, r := range h.Rows {
		l.Rows[i] = truncate(r, heatRowLabel)
	}

	for r := range h.Rows {
		for c := range h.Cols {
			l.Cells = append(l.Cells, heatCell{
				X:     left + float64(c)*heatCellW,
				Y:     top + float64(r)*heatCellH,
				Fill:  h.CellColor(r, c),
				Ink:   h.TextColor(r, c),
				Label: h.Annotation(r, c),
			})
		}
	}

	gridRight := left + float64(len(h.Cols))*heatCellW
	gridH := math.Max(float64(len(h.Rows))*heatCellH, 120)
	l.BarX = gridRight + 24
	l.BarY = top
	l.BarW = 18
	l.BarH = gridH
	for i := 0; i < heatBarSteps; i++ {
		// top of the bar is the high end
		t := 1 - float64(i)/float64(heatBarSteps-1)
		l.BarStops = append(l.BarStops, h.Cmap.At(t))
	}
	l.BarTicks = h.ColorbarTicks(5)

	l.Width = int(l.BarX + l.BarW + 80)
	l.Height = int(top + gridH + 32)
	return l
}

// barY maps a value onto the colorbar's vertical extent.
func (l heatLayout) barY(v float64) float64 {
	if l.Hi == l.Lo {
		return l.BarY + l.BarH/2
	}
	return l.BarY + l.BarH - (v-l.Lo)/(l.Hi-l.Lo)*l.BarH
}

func renderHeatPNG(path string, l heatLayout) error {
	return drawHeatPNG(l).SavePNG(path)
}

func drawHeatPNG(l heatLayout) *gg.Context {
	dc := gg.NewContext(l.Width, l.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(colorText)
	dc.DrawStringAnchored(l.Title, float64(l.Width)/2, 24, 0.5, 0.5)

	dc.SetColor(colorSubtle)
	for c, name := range l.Cols {
		dc.DrawStringAnchored(name, l.Left+float64(c)*l.CellW+l.CellW/2, l.Top-12, 0.5, 0.5)
	}
	for r, name := range l.Rows {
		dc.DrawStringAnchored(name, l.Left-8, l.Top+float64(r)*l.CellH+l.CellH/2, 1, 0.5)
	}

	dc.SetLineWidth(1)
	for _, cell := range l.Cells {
		dc.SetColor(cell.Fill)
		dc.DrawRectangle(cell.X, cell.Y, l.CellW, l.CellH)
		dc.Fill()
		dc.SetColor(colorCellLine)
		dc.DrawRectangle(cell.X, cell.Y, l.CellW, l.CellH)
		dc.Stroke()
		dc.SetColor(cell.Ink)
		dc.DrawStringAnchored(cell.Label, cell.X+l.CellW/2, cell.Y+l.CellH/2, 0.5, 0.5)
	}

	step := l.BarH / float64(len(l.BarStops))
	for i, c := range l.BarStops {
		dc.SetColor(c)
		dc.DrawRectangle(l.BarX, l.BarY+float64(i)*step, l.BarW, step+0.5)
		dc.Fill()
	}
	dc.SetColor(colorAxis)
	dc.DrawRectangle(l.BarX, l.BarY, l.BarW, l.BarH)
	dc.Stroke()

	dc.SetColor(colorSubtle)
	for _, v := range l.BarTicks {
		y := l.barY(v)
		dc.DrawLine(l.BarX+l.BarW, y, l.BarX+l.BarW+4, y)
		dc.Stroke()
		dc.DrawStringAnchored(tickLabel(v), l.BarX+l.BarW+8, y, 0, 0.5)
	}
	return dc
}

func renderHeatSVG(w io.Writer, l heatLayout) error {
	canvas := svg.New(w)
	canvas.Start(l.Width, l.Height)
	canvas.Title(l.Title)
	canvas.Rect(0, 0, l.Width, l.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))

	offsets := make([]svg.Offcolor, len(l.BarStops))
	for i, c := range l.BarStops {
		offsets[i] = svg.Offcolor{
			Offset:  uint8(i * 100 / (len(l.BarStops) - 1)),
			Color:   css(c),
			Opacity: 1,
		}
	}
	canvas.Def()
	canvas.LinearGradient("colorbar", 0, 0, 0, 100, offsets)
	canvas.DefEnd()

	canvas.Text(l.Width/2, 30, l.Title,
		fmt.Sprintf("fill:%s;font-size:16px;font-weight:bold;font-family:monospace;text-anchor:middle", css(colorText)))

	left, top := int(l.Left), int(l.Top)
	cw, ch := int(l.CellW), int(l.CellH)
	label := fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle))
	for c, name := range l.Cols {
		canvas.Text(left+c*cw+cw/2, top-8, name, label+";text-anchor:middle")
	}
	for r, name := range l.Rows {
		canvas.Text(left-8, top+r*ch+ch/2+4, name, label+";text-anchor:end")
	}

	for _, cell := range l.Cells {
		x, y := int(cell.X), int(cell.Y)
		canvas.Rect(x, y, cw, ch, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(cell.Fill), css(colorCellLine)))
		canvas.Text(x+cw/2, y+ch/2+4, cell.Label,
			fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace;text-anchor:middle", css(cell.Ink)))
	}

	bx, by, bw, bh := int(l.BarX), int(l.BarY), int(l.BarW), int(l.BarH)
	canvas.Rect(bx, by, bw, bh, fmt.Sprintf("fill:url(#colorbar);stroke:%s;stroke-width:1", css(colorAxis)))
	for _, v := range l.BarTicks {
		y := int(math.Round(l.barY(v)))
		canvas.Line(bx+bw, y, bx+bw+4, y, fmt.Sprintf("stroke:%s", css(colorSubtle)))
		canvas.Text(bx+bw+8, y+4, tickLabel(v), label)
	}

	canvas.End()
	return nil
}
