// Package forecast combines the two public operations: fit a trendline to
// each of two series, then intersect the fitted lines to find where the
// trends will cross.
package forecast

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	trendline "github.com/vigneshwaranr/highcharts-trendline"
	"github.com/vigneshwaranr/highcharts-trendline/internal/telemetry"
	"github.com/vigneshwaranr/highcharts-trendline/internal/wasmfit"
)

// Result is a forecast crossing of two fitted trends.
type Result struct {
	Name1, Name2       string
	X, Y               float64
	Slope1, Intercept1 float64
	Slope2, Intercept2 float64
	Line1, Line2       trendline.PolyLine // fitted lines with the crossing inserted
}

// Crossing fits both series and intersects the fitted lines. Any trendline
// error (parallel trends, degenerate fits, short series) comes back as-is;
// callers fall back to the unfitted data in that case.
func Crossing(ctx context.Context, name1, name2 string, s1, s2 trendline.PolyLine) (*Result, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "forecast.Crossing")
	defer span.End()
	span.SetAttributes(
		attribute.Int("series1.points", len(s1)),
		attribute.Int("series2.points", len(s2)),
	)

	fit1 := fitSeries(ctx, s1)
	fit2 := fitSeries(ctx, s2)
	if !finiteFit(fit1) || !finiteFit(fit2) {
		log.Warn().Str("series1", name1).Str("series2", name2).Msg("degenerate trendline fit")
		return nil, fmt.Errorf("degenerate fit: %w", trendline.ErrInvalidInput)
	}

	res, err := trendline.ComputeIntersection(fit1.Points, fit2.Points, nil)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Float64("crossing.x", res.X), attribute.Float64("crossing.y", res.Y))

	return &Result{
		Name1: name1, Name2: name2,
		X: res.X, Y: res.Y,
		Slope1: fit1.Slope, Intercept1: fit1.Intercept,
		Slope2: fit2.Slope, Intercept2: fit2.Intercept,
		Line1: res.Line1, Line2: res.Line2,
	}, nil
}

// fitSeries uses the WASM fit engine when one is installed and falls back to
// the Go fitter on absence or any engine failure.
func fitSeries(ctx context.Context, s trendline.PolyLine) trendline.TrendlineResult {
	if wasmfit.Available() {
		if slope, intercept, err := wasmfit.Fit(ctx, s); err == nil {
			pts := make(trendline.PolyLine, 0, len(s))
			for _, p := range s {
				if p.Missing() {
					continue
				}
				pts = append(pts, trendline.Point{X: p.X, Y: slope*p.X + intercept})
			}
			return trendline.TrendlineResult{Points: pts, Slope: slope, Intercept: intercept}
		} else {
			log.Debug().Err(err).Msg("wasm fit failed, using Go fitter")
		}
	}
	return trendline.FitTrendline(s)
}

func finiteFit(r trendline.TrendlineResult) bool {
	return len(r.Points) >= 2 &&
		!math.IsNaN(r.Slope) && !math.IsInf(r.Slope, 0) &&
		!math.IsNaN(r.Intercept) && !math.IsInf(r.Intercept, 0)
}
