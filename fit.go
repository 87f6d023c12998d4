package trendline

// TrendlineResult is an ordinary least-squares fit. Points holds (x,
// predicted y) for every retained input sample, in input order.
type TrendlineResult struct {
	Points    PolyLine `json:"points"`
	Slope     float64  `json:"slope"`
	Intercept float64  `json:"intercept"`
}

// FitTrendline fits y = slope*x + intercept over the given samples by
// ordinary least squares. Points with a NaN coordinate are missing samples:
// they do not contribute to the fit and do not appear in the output.
//
// A degenerate input (no retained samples, or all x identical) is not
// detected here; the slope and intercept come out NaN or infinite and the
// caller has to guard against that before using them.
func FitTrendline(points PolyLine) TrendlineResult {
	kept := make(PolyLine, 0, len(points))
	for _, p := range points {
		if p.Missing() {
			continue
		}
		kept = append(kept, p)
	}

	var sumX, sumY, sumXY, sumXX float64
	for _, p := range kept {
		sumX += p.X
		sumY += p.Y
		sumXY += p.X * p.Y
		sumXX += p.X * p.X
	}

	n := float64(len(kept))
	slope := (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / n

	fitted := make(PolyLine, len(kept))
	for i, p := range kept {
		fitted[i] = Point{X: p.X, Y: slope*p.X + intercept}
	}
	return TrendlineResult{Points: fitted, Slope: slope, Intercept: intercept}
}

// FitSeries fits a trendline to bare y-values on a categorical axis: each
// value's x is its 0-based position in the series. NaN values are skipped
// but still consume their index.
func FitSeries(values []float64) TrendlineResult {
	points := make(PolyLine, len(values))
	for i, v := range values {
		points[i] = Point{X: float64(i), Y: v}
	}
	return FitTrendline(points)
}
