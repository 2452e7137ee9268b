package chartjs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/uyouii/fanchart/common"
	"github.com/uyouii/fanchart/fanchart"
	"github.com/uyouii/fanchart/model"
	"github.com/uyouii/fanchart/utils"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// The callbacks cannot travel as JSON, so the script rebuilds them from the
// ValueFormat entries of the config.
const scriptTemplate = `<script>
(function () {
  "use strict";
  var cfg = {{.Config}};
  function money(f, v) {
    f = f || {prefix: "$", maximumFractionDigits: 0};
    return f.prefix + Number(v).toLocaleString("en-US", {maximumFractionDigits: f.maximumFractionDigits});
  }
  function render() {
    var y = cfg.options.scales.y;
    var tooltip = cfg.options.plugins.tooltip;
    y.ticks.callback = function (v) { return money(y.ticks.format, v); };
    tooltip.callbacks = {label: function (ctx) { return money(tooltip.format, ctx.parsed.y); }};
    new Chart(document.getElementById({{.CanvasID}}), cfg);
  }
  if (document.readyState === "loading") {
    document.addEventListener("DOMContentLoaded", render, {once: true});
  } else {
    render();
  }
})();
</script>`

var script = template.Must(template.New("chartjs").Parse(scriptTemplate))

// Charter emits a Chart.js constructor call next to the target canvas.
type Charter struct{}

func NewCharter() *Charter {
	return &Charter{}
}

func (c *Charter) NewChart(ctx context.Context, canvas fanchart.Canvas, cfg *model.ChartConfig) error {
	target, ok := canvas.(*Canvas)
	if !ok {
		return fmt.Errorf("chartjs cannot draw on %T: %w", canvas, common.ErrorUnsupportedCanvas)
	}
	if cfg == nil {
		return fmt.Errorf("nil chart config: %w", common.ErrorInvalidValue)
	}

	nodes, err := Script(target.ID(), cfg)
	if err != nil {
		return err
	}
	target.insertAfter(nodes)

	utils.GetLogger(ctx).Debug("chart script attached", zap.String("canvas", target.ID()),
		zap.Int("points", len(cfg.Data.Labels)))
	return nil
}

// Script renders the inline <script> that draws cfg onto canvasID.
// A config that does not marshal (NaN or Inf values) is an error.
func Script(canvasID string, cfg *model.ChartConfig) ([]*html.Node, error) {
	// json.Marshal escapes <, > and & so the text is safe inside <script>.
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal chart config: %w", err)
	}

	var buf bytes.Buffer
	data := struct {
		Config   template.JS
		CanvasID string
	}{template.JS(raw), canvasID}
	if err := script.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute chart script: %w", err)
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(&buf, body)
	if err != nil {
		return nil, fmt.Errorf("parse chart script: %w", err)
	}
	return nodes, nil
}
