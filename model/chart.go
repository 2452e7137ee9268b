package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type RGBA struct {
	R, G, B uint8
	A       float64
}

func (c RGBA) String() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

func (c RGBA) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// ChartConfig mirrors the declarative configuration taken by a Chart.js
// constructor. Formatting callbacks are carried as ValueFormat and installed
// by whichever backend draws the chart.
type ChartConfig struct {
	Type    string       `json:"type"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor []RGBA    `json:"backgroundColor"`
	BorderColor     RGBA      `json:"borderColor"`
	BorderWidth     int       `json:"borderWidth"`
	BorderRadius    int       `json:"borderRadius"`
}

type ChartOptions struct {
	Responsive          bool         `json:"responsive"`
	MaintainAspectRatio bool         `json:"maintainAspectRatio"`
	Plugins             ChartPlugins `json:"plugins"`
	Scales              ChartScales  `json:"scales"`
}

type ChartPlugins struct {
	Legend  LegendOptions  `json:"legend"`
	Tooltip TooltipOptions `json:"tooltip"`
}

type LegendOptions struct {
	Display bool `json:"display"`
}

type TooltipOptions struct {
	Format *ValueFormat `json:"format,omitempty"`
}

type ChartScales struct {
	X Axis `json:"x"`
	Y Axis `json:"y"`
}

type Axis struct {
	Stacked bool      `json:"stacked"`
	Ticks   AxisTicks `json:"ticks"`
	Grid    AxisGrid  `json:"grid"`
}

type AxisTicks struct {
	Color  string       `json:"color,omitempty"`
	Format *ValueFormat `json:"format,omitempty"`
}

type AxisGrid struct {
	Display bool   `json:"display"`
	Color   string `json:"color,omitempty"`
}

// ValueFormat describes a currency-like number rendering: Prefix followed by
// the value with thousands separators and at most MaximumFractionDigits.
type ValueFormat struct {
	Prefix                string `json:"prefix"`
	MaximumFractionDigits int    `json:"maximumFractionDigits"`
}

// Dataset returns the first dataset, charts built here only carry one.
func (c *ChartConfig) Dataset() (*Dataset, bool) {
	if c == nil || len(c.Data.Datasets) == 0 {
		return nil, false
	}
	return &c.Data.Datasets[0], true
}
