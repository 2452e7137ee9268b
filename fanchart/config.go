package fanchart

import (
	"github.com/uyouii/fanchart/model"
	"github.com/uyouii/fanchart/utils"
)

// BuildConfig maps a snapshot onto a single-dataset bar chart. Labels and
// values come from model.Percentiles so they stay positionally aligned.
func BuildConfig(snap model.StatisticsSnapshot) *model.ChartConfig {
	labels := model.PercentileLabels()
	values := snap.Values()

	colors := make([]model.RGBA, 0, len(labels))
	for _, label := range labels {
		c := indigo
		c.A = PercentileAlpha[label]
		colors = append(colors, c)
	}

	format := CurrencyFormat
	tooltipFormat := CurrencyFormat

	return &model.ChartConfig{
		Type: ChartType,
		Data: model.ChartData{
			Labels: labels,
			Datasets: []model.Dataset{{
				Label:           DatasetLabel,
				Data:            values,
				BackgroundColor: colors,
				BorderColor:     indigo,
				BorderWidth:     BorderWidth,
				BorderRadius:    BorderRadius,
			}},
		},
		Options: model.ChartOptions{
			Responsive:          true,
			MaintainAspectRatio: false,
			Plugins: model.ChartPlugins{
				Legend:  model.LegendOptions{Display: false},
				Tooltip: model.TooltipOptions{Format: &tooltipFormat},
			},
			Scales: model.ChartScales{
				X: model.Axis{
					Ticks: model.AxisTicks{Color: TickColor},
					Grid:  model.AxisGrid{Display: false},
				},
				Y: model.Axis{
					Ticks: model.AxisTicks{Color: TickColor, Format: &format},
					Grid:  model.AxisGrid{Display: true, Color: GridColor},
				},
			},
		},
	}
}

// FormatCurrency renders v the way the chart labels money: "$1,234,568".
func FormatCurrency(v float64) string {
	return utils.FormatMoney(CurrencyPrefix, v)
}

// FormatValue applies a ValueFormat, a nil format falls back to FormatCurrency.
func FormatValue(f *model.ValueFormat, v float64) string {
	if f == nil {
		return FormatCurrency(v)
	}
	return utils.FormatMoneyDigits(f.Prefix, v, f.MaximumFractionDigits)
}
