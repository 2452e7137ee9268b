package fanchart

import (
	"context"
	"fmt"

	"github.com/uyouii/fanchart/model"
	"github.com/uyouii/fanchart/utils"
	"go.uber.org/zap"
)

// Canvas is a drawing surface a chart can be bound to.
type Canvas interface {
	ID() string
}

// Document is the page the adapter looks for its canvas in.
type Document interface {
	Canvas(id string) (Canvas, bool)
}

// Charter is the charting primitive. NewChart binds one chart instance to
// canvas and owns it from then on.
type Charter interface {
	NewChart(ctx context.Context, canvas Canvas, cfg *model.ChartConfig) error
}

type Outcome int

const (
	SkippedNoCanvas Outcome = iota + 1
	SkippedNoData
	Rendered
	Failed
)

func (o Outcome) String() string {
	switch o {
	case SkippedNoCanvas:
		return "skipped: no canvas"
	case SkippedNoData:
		return "skipped: no data"
	case Rendered:
		return "rendered"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Render draws the percentile chart onto the document's fanChart canvas.
// A missing canvas or a nil snapshot is not an error, the page just has no
// chart. It is meant to run once per page.
func Render(ctx context.Context, doc Document, snap *model.StatisticsSnapshot, charter Charter) (Outcome, error) {
	logger := utils.GetLogger(ctx)

	if doc == nil {
		return SkippedNoCanvas, nil
	}
	canvas, ok := doc.Canvas(CanvasID)
	if !ok {
		return SkippedNoCanvas, nil
	}
	if snap == nil {
		return SkippedNoData, nil
	}

	if err := snap.Validate(); err != nil {
		logger.Warn("rendering snapshot with invalid values", zap.Error(err), zap.Any("snapshot", snap))
	} else if !snap.Monotonic() {
		logger.Warn("snapshot percentiles are not ordered", zap.Float64s("values", snap.Values()))
	}

	cfg := BuildConfig(*snap)
	if err := charter.NewChart(ctx, canvas, cfg); err != nil {
		logger.Error("NewChart failed", zap.Error(err), zap.String("canvas", canvas.ID()))
		return Failed, fmt.Errorf("new chart on %s: %w", canvas.ID(), err)
	}
	return Rendered, nil
}
