package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
	"gonum.org/v1/gonum/floats"

	"github.com/vanderheijden86/underhood/pkg/demos"
	"github.com/vanderheijden86/underhood/pkg/theme"
)

const (
	chartWidth  = 640
	chartHeight = 360
	chartMargin = 48
)

// Chart is a single line series over integer steps.
type Chart struct {
	Name   string // file stem
	Title  string
	XLabel string
	YLabel string
	Values []float64
	// YMax fixes the top of the y axis; zero scales to the data.
	YMax float64
}

// TrainingCharts are the loss curve and the default LR schedule.
func TrainingCharts() []Chart {
	return []Chart{
		{
			Name:   "loss_curve",
			Title:  "Training loss",
			XLabel: "step",
			YLabel: "loss (nats/token)",
			Values: demos.LossSeries(),
			YMax:   5,
		},
		{
			Name:   "lr_schedule",
			Title:  "Learning rate schedule (10% warmup, cosine decay)",
			XLabel: "step",
			YLabel: "LR multiplier",
			Values: demos.LRSeries(0.1),
			YMax:   1,
		},
	}
}

// chartPalette resolves the colors charts are drawn with. Charts always use
// the light appearance so they read on white pages.
type chartPalette struct {
	background, axis, line, text string
}

func paletteFor(th theme.Theme) chartPalette {
	th = th.WithMode(theme.ModeLight)
	return chartPalette{
		background: "#ffffff",
		axis:       th.Hex(th.Muted),
		line:       th.Hex(th.Primary),
		text:       th.Hex(th.Text),
	}
}

// bounds returns the y range of c.
func (c Chart) bounds() (lo, hi float64) {
	if len(c.Values) == 0 {
		return 0, 1
	}
	lo = floats.Min(c.Values)
	if lo > 0 {
		lo = 0
	}
	hi = c.YMax
	if hi == 0 {
		hi = floats.Max(c.Values)
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

// points maps the series into plot coordinates (origin top-left).
func (c Chart) points() (xs, ys []float64) {
	lo, hi := c.bounds()
	plotW := float64(chartWidth - 2*chartMargin)
	plotH := float64(chartHeight - 2*chartMargin)
	n := len(c.Values)
	xs = make([]float64, n)
	ys = make([]float64, n)
	for i, v := range c.Values {
		fx := 0.0
		if n > 1 {
			fx = float64(i) / float64(n-1)
		}
		xs[i] = chartMargin + fx*plotW
		ys[i] = chartMargin + (1-(v-lo)/(hi-lo))*plotH
	}
	return xs, ys
}

// WriteSVG draws c as an SVG document.
func WriteSVG(w io.Writer, c Chart) error {
	if len(c.Values) == 0 {
		return fmt.Errorf("chart %s: no values", c.Name)
	}
	p := paletteFor(theme.Plain())
	lo, hi := c.bounds()
	left, right := chartMargin, chartWidth-chartMargin
	top, bottom := chartMargin, chartHeight-chartMargin

	canvas := svg.New(w)
	canvas.Start(chartWidth, chartHeight)
	canvas.Rect(0, 0, chartWidth, chartHeight, "fill:"+p.background)
	axis := fmt.Sprintf("stroke:%s;stroke-width:1", p.axis)
	canvas.Line(left, bottom, right, bottom, axis)
	canvas.Line(left, top, left, bottom, axis)

	xs, ys := c.points()
	ix := make([]int, len(xs))
	iy := make([]int, len(ys))
	for i := range xs {
		ix[i] = int(xs[i] + 0.5)
		iy[i] = int(ys[i] + 0.5)
	}
	canvas.Polyline(ix, iy, fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", p.line))

	text := fmt.Sprintf("font-family:monospace;font-size:12px;fill:%s", p.text)
	canvas.Text(chartWidth/2, top/2+6, c.Title, text+";text-anchor:middle;font-size:14px")
	canvas.Text(chartWidth/2, chartHeight-12, c.XLabel, text+";text-anchor:middle")
	canvas.Text(left-6, top+4, fmt.Sprintf("%.2g", hi), text+";text-anchor:end")
	canvas.Text(left-6, bottom+4, fmt.Sprintf("%.2g", lo), text+";text-anchor:end")
	canvas.Text(left, bottom+16, "0", text+";text-anchor:middle")
	canvas.Text(right, bottom+16, fmt.Sprint(len(c.Values)-1), text+";text-anchor:middle")
	canvas.Text(12, chartHeight/2, c.YLabel, text+";text-anchor:middle;writing-mode:tb")
	canvas.End()
	return nil
}

// WritePNG rasterizes c with gg and the built-in bitmap font.
func WritePNG(w io.Writer, c Chart) error {
	if len(c.Values) == 0 {
		return fmt.Errorf("chart %s: no values", c.Name)
	}
	p := paletteFor(theme.Plain())
	lo, hi := c.bounds()
	left, right := float64(chartMargin), float64(chartWidth-chartMargin)
	top, bottom := float64(chartMargin), float64(chartHeight-chartMargin)

	dc := gg.NewContext(chartWidth, chartHeight)
	dc.SetHexColor(p.background)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetHexColor(p.axis)
	dc.SetLineWidth(1)
	dc.DrawLine(left, bottom, right, bottom)
	dc.DrawLine(left, top, left, bottom)
	dc.Stroke()

	xs, ys := c.points()
	dc.SetHexColor(p.line)
	dc.SetLineWidth(2)
	dc.MoveTo(xs[0], ys[0])
	for i := 1; i < len(xs); i++ {
		dc.LineTo(xs[i], ys[i])
	}
	dc.Stroke()

	dc.SetHexColor(p.text)
	dc.DrawStringAnchored(c.Title, chartWidth/2, top/2, 0.5, 0.5)
	dc.DrawStringAnchored(c.XLabel, chartWidth/2, chartHeight-12, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.2g", hi), left-6, top, 1, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.2g", lo), left-6, bottom, 1, 0.5)
	dc.DrawStringAnchored("0", left, bottom+14, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprint(len(c.Values)-1), right, bottom+14, 0.5, 0.5)
	dc.DrawStringAnchored(c.YLabel, left, top-14, 0, 0.5)

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encoding %s.png: %w", c.Name, err)
	}
	return nil
}

// ExportCharts writes every training chart into dir as <name>.svg and
// <name>.png, creating dir. It returns the written paths.
func ExportCharts(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating chart dir: %w", err)
	}
	var written []string
	for _, c := range TrainingCharts() {
		for _, f := range []struct {
			ext   string
			write func(io.Writer, Chart) error
		}{
			{".svg", WriteSVG},
			{".png", WritePNG},
		} {
			path := filepath.Join(dir, c.Name+f.ext)
			if err := writeFile(path, func(w io.Writer) error { return f.write(w, c) }); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}
	return written, nil
}

func writeFile(path string, fill func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := fill(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
