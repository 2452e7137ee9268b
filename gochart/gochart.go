// Package gochart draws fan charts to PNG or SVG on the server with go-chart.
package gochart

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/uyouii/fanchart/common"
	"github.com/uyouii/fanchart/fanchart"
	"github.com/uyouii/fanchart/model"
	"github.com/uyouii/fanchart/utils"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"

	DefaultWidth  = 800
	DefaultHeight = 400

	// headroom above the tallest bar
	rangePadding = 1.05

	axisAllowance = 120
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case PNG, SVG:
		return f, nil
	default:
		return "", fmt.Errorf("image format %q: %w", s, common.ErrorInvalidValue)
	}
}

func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Surface is an image the chart is written to as soon as it is bound.
type Surface struct {
	Name   string
	Width  int
	Height int
	Format Format
	W      io.Writer
}

func (s *Surface) ID() string {
	return s.Name
}

// Document is a set of surfaces addressed by name.
type Document struct {
	surfaces map[string]*Surface
}

func NewDocument(surfaces ...*Surface) *Document {
	d := &Document{surfaces: make(map[string]*Surface, len(surfaces))}
	for _, s := range surfaces {
		d.surfaces[s.Name] = s
	}
	return d
}

func (d *Document) Canvas(id string) (fanchart.Canvas, bool) {
	s, ok := d.surfaces[id]
	if !ok {
		return nil, false
	}
	return s, true
}

type Charter struct{}

func NewCharter() *Charter {
	return &Charter{}
}

func (c *Charter) NewChart(ctx context.Context, canvas fanchart.Canvas, cfg *model.ChartConfig) (err error) {
	logger := utils.GetLogger(ctx)

	surface, ok := canvas.(*Surface)
	if !ok {
		return fmt.Errorf("gochart cannot draw on %T: %w", canvas, common.ErrorUnsupportedCanvas)
	}
	bc, err := BarChart(cfg, surface.Width, surface.Height)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("BarChart render recover panic error!", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()))
			err = fmt.Errorf("render bar chart: %v", r)
		}
	}()

	provider := chart.PNG
	if surface.Format == SVG {
		provider = chart.SVG
	}
	if err := bc.Render(provider, surface.W); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// BarChart translates cfg into a go-chart bar chart of the given size.
func BarChart(cfg *model.ChartConfig, width, height int) (*chart.BarChart, error) {
	ds, ok := cfg.Dataset()
	if !ok || len(ds.Data) == 0 {
		return nil, fmt.Errorf("chart config has no data: %w", common.ErrorInvalidValue)
	}
	if len(ds.Data) != len(cfg.Data.Labels) {
		return nil, fmt.Errorf("%d labels for %d values: %w", len(cfg.Data.Labels), len(ds.Data), common.ErrorInvalidValue)
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	bars := make([]chart.Value, 0, len(ds.Data))
	for i, v := range ds.Data {
		fill := ds.BorderColor
		if i < len(ds.BackgroundColor) {
			fill = ds.BackgroundColor[i]
		}
		bars = append(bars, chart.Value{
			Label: cfg.Data.Labels[i],
			Value: v,
			Style: chart.Style{
				FillColor:   color(fill),
				StrokeColor: color(ds.BorderColor),
				StrokeWidth: float64(ds.BorderWidth),
			},
		})
	}

	// leave room for the y axis labels, then split the rest into one slot
	// per bar, three fifths bar and two fifths gap
	slot := max((width-axisAllowance)/len(bars), 5)
	barWidth := slot * 3 / 5

	yTicks := cfg.Options.Scales.Y.Ticks
	xTicks := cfg.Options.Scales.X.Ticks
	return &chart.BarChart{
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: slot - barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.Style{FontColor: hexColor(xTicks.Color)},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: hexColor(yTicks.Color)},
			Range: yRange(ds.Data),
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fanchart.FormatValue(yTicks.Format, f)
				}
				return fmt.Sprint(v)
			},
		},
		Bars: bars,
	}, nil
}

func yRange(values []float64) *chart.ContinuousRange {
	top := 1.0
	if len(values) > 0 && !floats.HasNaN(values) {
		if m := floats.Max(values); m > 0 {
			top = m * rangePadding
		}
	}
	return &chart.ContinuousRange{Min: 0, Max: top}
}

func color(c model.RGBA) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: uint8(utils.RoundFloat(c.A*255, 0))}
}

func hexColor(s string) drawing.Color {
	if s == "" {
		return drawing.Color{}
	}
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}
