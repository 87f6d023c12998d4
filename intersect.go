package trendline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
)

// Sentinel reasons for an absent intersection result. Callers treat any of
// these as "keep the original line data" rather than as a fault to propagate.
var (
	ErrInvalidInput   = errors.New("trendline: invalid line input")
	ErrInvalidOptions = errors.New("trendline: invalid options")
	ErrParallel       = errors.New("trendline: lines are parallel")
	ErrRejected       = errors.New("trendline: intersection rejected")
)

// Options configures ComputeIntersection. The zero value (or a nil *Options)
// selects the pair intercept shape with no hooks installed.
type Options struct {
	// InterceptShape selects how the inserted intercept point is emitted:
	// ShapePair (default) or ShapeLabeled.
	InterceptShape Shape

	// Template supplies extra fields for a ShapeLabeled intercept. X and Y
	// entries are always overwritten with the computed coordinates.
	Template map[string]interface{}

	// OnParallel is invoked when the two lines are exactly parallel or
	// coincident. The call still ends with ErrParallel afterwards.
	OnParallel func()

	// OnAlreadyIntersecting is invoked when the computed point already lies
	// within both segments' x-extents, i.e. the segments themselves already
	// cross or touch. Returning false rejects the intersection; returning
	// true continues to validation.
	OnAlreadyIntersecting func(x, y float64) bool

	// ValidateIntersection is invoked with the computed point. Returning
	// false rejects the intersection.
	ValidateIntersection func(x, y float64) bool
}

// InterceptResult is the intersection of two polylines together with copies
// of both lines that have the intercept point inserted in sort order. It
// never aliases the caller's input slices.
type InterceptResult struct {
	X     float64        `json:"x"`
	Y     float64        `json:"y"`
	Point InterceptPoint `json:"point"`
	Line1 PolyLine       `json:"line1"`
	Line2 PolyLine       `json:"line2"`
}

// ComputeIntersection computes the intersection of the straight segments
// running from each line's first point to its last, applies the configured
// validation hooks, and returns both lines rebuilt with the intercept point
// inserted in each line's own sort order. The inputs are never mutated.
//
// A nil result always carries one of ErrInvalidInput, ErrInvalidOptions,
// ErrParallel or ErrRejected.
func ComputeIntersection(line1, line2 PolyLine, opts *Options) (*InterceptResult, error) {
	if opts == nil {
		opts = &Options{}
	}
	if opts.InterceptShape != ShapePair && opts.InterceptShape != ShapeLabeled {
		log.Debug().Int("shape", int(opts.InterceptShape)).Msg("unknown intercept point shape")
		return nil, fmt.Errorf("unknown intercept shape %d: %w", opts.InterceptShape, ErrInvalidOptions)
	}
	if err := checkLine("line1", line1); err != nil {
		return nil, err
	}
	if err := checkLine("line2", line2); err != nil {
		return nil, err
	}

	p1, p2 := line1[0], line1[len(line1)-1]
	p3, p4 := line2[0], line2[len(line2)-1]

	denom := (p1.X-p2.X)*(p3.Y-p4.Y) - (p1.Y-p2.Y)*(p3.X-p4.X)
	if denom == 0 {
		if opts.OnParallel != nil {
			opts.OnParallel()
		} else {
			log.Debug().Msg("segments are parallel, no intersection")
		}
		return nil, ErrParallel
	}

	d1 := p1.X*p2.Y - p1.Y*p2.X
	d2 := p3.X*p4.Y - p3.Y*p4.X
	icptX := (d1*(p3.X-p4.X) - (p1.X-p2.X)*d2) / denom
	icptY := (d1*(p3.Y-p4.Y) - (p1.Y-p2.Y)*d2) / denom

	if withinExtent(icptX, p1.X, p2.X) && withinExtent(icptX, p3.X, p4.X) {
		if opts.OnAlreadyIntersecting != nil && !opts.OnAlreadyIntersecting(icptX, icptY) {
			return nil, fmt.Errorf("segments already intersect at (%g, %g): %w", icptX, icptY, ErrRejected)
		}
	}
	if opts.ValidateIntersection != nil && !opts.ValidateIntersection(icptX, icptY) {
		return nil, fmt.Errorf("validation declined (%g, %g): %w", icptX, icptY, ErrRejected)
	}

	icpt := InterceptPoint{X: icptX, Y: icptY}
	if opts.InterceptShape == ShapeLabeled {
		icpt.Fields = make(map[string]interface{}, len(opts.Template))
		for k, v := range opts.Template {
			icpt.Fields[k] = v
		}
	}

	return &InterceptResult{
		X:     icptX,
		Y:     icptY,
		Point: icpt,
		Line1: insertIntercept(line1, Point{X: icptX, Y: icptY}),
		Line2: insertIntercept(line2, Point{X: icptX, Y: icptY}),
	}, nil
}

func checkLine(name string, line PolyLine) error {
	if len(line) < 2 {
		log.Debug().Str("line", name).Int("points", len(line)).Msg("line needs at least two points")
		return fmt.Errorf("%s has %d points, need at least 2: %w", name, len(line), ErrInvalidInput)
	}
	for i, p := range line {
		if !p.finite() {
			log.Debug().Str("line", name).Int("index", i).Msg("line point is not finite")
			return fmt.Errorf("%s point %d is not finite: %w", name, i, ErrInvalidInput)
		}
	}
	return nil
}

func withinExtent(v, a, b float64) bool {
	if a > b {
		a, b = b, a
	}
	return v >= a && v <= b
}

// insertIntercept returns a copy of line containing p. A point already equal
// to p by coordinates is replaced in place, so re-running the computation on
// a returned line never duplicates the intercept. Otherwise p is inserted and
// the copy re-sorted by x primary / y secondary, keeping each axis's original
// ascending or descending direction.
func insertIntercept(line PolyLine, p Point) PolyLine {
	out := line.clone()
	for i, q := range out {
		if q.X == p.X && q.Y == p.Y {
			out[i] = p
			return out
		}
	}

	ascX := out[0].X <= out[len(out)-1].X
	ascY := out[0].Y <= out[len(out)-1].Y
	out = append(out, p)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.X != b.X {
			if ascX {
				return a.X < b.X
			}
			return a.X > b.X
		}
		if a.Y != b.Y {
			if ascY {
				return a.Y < b.Y
			}
			return a.Y > b.Y
		}
		return false
	})
	return out
}
