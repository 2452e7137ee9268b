package fanchart

import "github.com/uyouii/fanchart/model"

const (
	// CanvasID is the element id the results page gives the chart canvas.
	CanvasID = "fanChart"

	ChartType    = "bar"
	DatasetLabel = "Terminal Portfolio Value ($)"

	TickColor    = "#64748b"
	GridColor    = "#2a2d3a"
	BorderWidth  = 1
	BorderRadius = 4

	CurrencyPrefix = "$"
)

var (
	indigo = model.RGBA{R: 99, G: 102, B: 241, A: 1}

	// alpha per percentile label, the tails are faintest so the bars narrow
	// visually toward the median
	PercentileAlpha = map[string]float64{
		"p5":  0.3,
		"p25": 0.5,
		"p50": 0.9,
		"p75": 0.5,
		"p95": 0.3,
	}

	CurrencyFormat = model.ValueFormat{Prefix: CurrencyPrefix, MaximumFractionDigits: 0}
)
