package trendline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitTrendlineExactLine(t *testing.T) {
	// Noise-free y = 3x - 2 must come back exactly (up to rounding).
	points := make(PolyLine, 0, 6)
	for _, x := range []float64{-2, 0, 1, 3.5, 7, 11} {
		points = append(points, Point{X: x, Y: 3*x - 2})
	}

	res := FitTrendline(points)
	assert.InDelta(t, 3.0, res.Slope, 1e-9)
	assert.InDelta(t, -2.0, res.Intercept, 1e-9)
	require.Len(t, res.Points, len(points))
	for i, p := range points {
		assert.Equal(t, p.X, res.Points[i].X)
		assert.InDelta(t, p.Y, res.Points[i].Y, 1e-9)
	}
}

func TestFitTrendlineScatter(t *testing.T) {
	// Symmetric scatter around y = x: the fit is the middle line.
	points := PolyLine{{0, 1}, {0, -1}, {2, 3}, {2, 1}, {4, 5}, {4, 3}}
	res := FitTrendline(points)
	assert.InDelta(t, 1.0, res.Slope, 1e-9)
	assert.InDelta(t, 0.0, res.Intercept, 1e-9)
}

func TestFitSeriesCategorical(t *testing.T) {
	res := FitSeries([]float64{5, 7, 9})
	assert.InDelta(t, 2.0, res.Slope, 1e-9)
	assert.InDelta(t, 5.0, res.Intercept, 1e-9)
	require.Len(t, res.Points, 3)
	assert.Equal(t, PolyLine{{0, 5}, {1, 7}, {2, 9}}, res.Points)
}

func TestFitSkipsMissingSamples(t *testing.T) {
	nan := math.NaN()
	points := PolyLine{
		{0, 0},
		{nan, nan}, // gap
		{1, 2},
		{2, nan}, // half-missing pair is also skipped
		{2, 4},
	}
	res := FitTrendline(points)
	assert.InDelta(t, 2.0, res.Slope, 1e-9)
	assert.InDelta(t, 0.0, res.Intercept, 1e-9)
	assert.Len(t, res.Points, 3)

	// Categorical gaps keep their index.
	res = FitSeries([]float64{5, nan, 9})
	assert.InDelta(t, 2.0, res.Slope, 1e-9)
	assert.InDelta(t, 5.0, res.Intercept, 1e-9)
	assert.Equal(t, PolyLine{{0, 5}, {2, 9}}, res.Points)
}

func TestFitDegenerateInputsPropagate(t *testing.T) {
	// Zero x-variance and empty input are documented gaps: the arithmetic
	// runs and non-finite values come out for the caller to guard against.
	res := FitTrendline(PolyLine{{1, 0}, {1, 5}, {1, 9}})
	assert.True(t, math.IsNaN(res.Slope) || math.IsInf(res.Slope, 0))

	res = FitTrendline(nil)
	assert.True(t, math.IsNaN(res.Slope))
	assert.Empty(t, res.Points)
}
