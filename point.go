// Package trendline computes line-segment intersections and least-squares
// trendlines for 2-D chart series.
package trendline

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point is a 2-D chart point. A NaN coordinate marks a missing sample
// (the decoded form of a null element in a chart series).
type Point struct {
	X float64
	Y float64
}

// Missing reports whether either coordinate is NaN.
func (p Point) Missing() bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y)
}

func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// MarshalJSON emits the point as a bare [x,y] pair, the shape chart
// series use on the wire.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON accepts a 2-element [x,y] array. Any other arity is an
// error rather than a zero-filled or truncated point.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("point needs exactly 2 coordinates, got %d", len(pair))
	}
	p.X, p.Y = pair[0], pair[1]
	return nil
}

// PolyLine is an ordered sequence of points. For intersection purposes only
// the first and last points define the segment; the whole sequence
// participates in insertion and re-sorting.
type PolyLine []Point

func (l PolyLine) clone() PolyLine {
	out := make(PolyLine, len(l))
	copy(out, l)
	return out
}

// Shape selects the representation of the materialized intercept point.
type Shape int

const (
	// ShapePair emits the intercept as a bare [x,y] pair.
	ShapePair Shape = iota
	// ShapeLabeled emits the intercept as an object carrying the template
	// fields from Options.Template with x and y overwritten.
	ShapeLabeled
)

// InterceptPoint is the intercept in its configured shape. Fields is nil for
// the pair shape; for the labeled shape it holds the caller's template fields.
type InterceptPoint struct {
	X      float64
	Y      float64
	Fields map[string]interface{}
}

// MarshalJSON renders [x,y] for the pair shape, or an object with the
// template fields plus overwritten "x"/"y" for the labeled shape.
func (p InterceptPoint) MarshalJSON() ([]byte, error) {
	if p.Fields == nil {
		return json.Marshal([2]float64{p.X, p.Y})
	}
	obj := make(map[string]interface{}, len(p.Fields)+2)
	for k, v := range p.Fields {
		obj[k] = v
	}
	obj["x"] = p.X
	obj["y"] = p.Y
	return json.Marshal(obj)
}

func (p InterceptPoint) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}
