package trendline

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeIntersectionInsertsPoint(t *testing.T) {
	line1 := PolyLine{{0, 1}, {2, 1}}
	line2 := PolyLine{{1, 0}, {1, 2}}

	res, err := ComputeIntersection(line1, line2, nil)
	require.NoError(t, err)

	assert.Equal(t, 1.0, res.X)
	assert.Equal(t, 1.0, res.Y)
	assert.Equal(t, PolyLine{{0, 1}, {1, 1}, {2, 1}}, res.Line1)
	assert.Equal(t, PolyLine{{1, 0}, {1, 1}, {1, 2}}, res.Line2)
}

func TestComputeIntersectionSatisfiesBothLines(t *testing.T) {
	line1 := PolyLine{{0, 0}, {10, 5}}
	line2 := PolyLine{{0, 8}, {10, 2}}

	res, err := ComputeIntersection(line1, line2, nil)
	require.NoError(t, err)

	// y = 0.5x and y = 8 - 0.6x
	assert.InDelta(t, 0.5*res.X, res.Y, 1e-9)
	assert.InDelta(t, 8-0.6*res.X, res.Y, 1e-9)
}

func TestComputeIntersectionParallel(t *testing.T) {
	line1 := PolyLine{{0, 1}, {2, 1}}
	line2 := PolyLine{{0, 5}, {2, 5}}

	_, err := ComputeIntersection(line1, line2, nil)
	assert.ErrorIs(t, err, ErrParallel)

	called := false
	_, err = ComputeIntersection(line1, line2, &Options{OnParallel: func() { called = true }})
	assert.ErrorIs(t, err, ErrParallel)
	assert.True(t, called)
}

func TestComputeIntersectionIdempotent(t *testing.T) {
	line1 := PolyLine{{0, 1}, {2, 1}}
	line2 := PolyLine{{1, 0}, {1, 2}}

	first, err := ComputeIntersection(line1, line2, nil)
	require.NoError(t, err)

	// Re-running on the returned lines must replace, not duplicate.
	second, err := ComputeIntersection(first.Line1, first.Line2, nil)
	require.NoError(t, err)
	assert.Equal(t, first.X, second.X)
	assert.Equal(t, first.Y, second.Y)
	assert.Len(t, second.Line1, len(first.Line1))
	assert.Len(t, second.Line2, len(first.Line2))
}

func TestComputeIntersectionDoesNotMutateInputs(t *testing.T) {
	line1 := PolyLine{{0, 0}, {4, 4}}
	line2 := PolyLine{{0, 4}, {4, 0}}
	snap1 := line1.clone()
	snap2 := line2.clone()

	_, err := ComputeIntersection(line1, line2, nil)
	require.NoError(t, err)
	assert.Equal(t, snap1, line1)
	assert.Equal(t, snap2, line2)
}

func TestComputeIntersectionDescendingOrderPreserved(t *testing.T) {
	line1 := PolyLine{{4, 0}, {0, 4}} // x descending
	line2 := PolyLine{{0, 0}, {4, 4}}

	res, err := ComputeIntersection(line1, line2, nil)
	require.NoError(t, err)

	require.Len(t, res.Line1, 3)
	assert.Equal(t, PolyLine{{4, 0}, {2, 2}, {0, 4}}, res.Line1)
	assert.Equal(t, PolyLine{{0, 0}, {2, 2}, {4, 4}}, res.Line2)
}

func TestComputeIntersectionValidateRejects(t *testing.T) {
	line1 := PolyLine{{0, 0}, {4, 4}}
	line2 := PolyLine{{0, 4}, {4, 0}}

	var gotX, gotY float64
	_, err := ComputeIntersection(line1, line2, &Options{
		ValidateIntersection: func(x, y float64) bool {
			gotX, gotY = x, y
			return false
		},
	})
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, 2.0, gotX)
	assert.Equal(t, 2.0, gotY)
}

func TestComputeIntersectionAlreadyIntersectingHook(t *testing.T) {
	// Segments cross inside both extents.
	line1 := PolyLine{{0, 0}, {4, 4}}
	line2 := PolyLine{{0, 4}, {4, 0}}

	_, err := ComputeIntersection(line1, line2, &Options{
		OnAlreadyIntersecting: func(x, y float64) bool { return false },
	})
	assert.ErrorIs(t, err, ErrRejected)

	res, err := ComputeIntersection(line1, line2, &Options{
		OnAlreadyIntersecting: func(x, y float64) bool { return true },
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.X)

	// Hook is not consulted when the crossing lies outside the segments.
	called := false
	res, err = ComputeIntersection(
		PolyLine{{0, 0}, {1, 1}},
		PolyLine{{3, 4}, {4, 3}},
		&Options{OnAlreadyIntersecting: func(x, y float64) bool { called = true; return false }},
	)
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, 3.5, res.X)
	assert.Equal(t, 3.5, res.Y)
}

func TestComputeIntersectionInvalidInput(t *testing.T) {
	good := PolyLine{{0, 0}, {1, 1}}

	_, err := ComputeIntersection(nil, good, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ComputeIntersection(good, PolyLine{{1, 1}}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ComputeIntersection(good, PolyLine{{0, 2}, {math.NaN(), 0}}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestComputeIntersectionInvalidOptions(t *testing.T) {
	line1 := PolyLine{{0, 0}, {1, 1}}
	line2 := PolyLine{{0, 1}, {1, 0}}

	_, err := ComputeIntersection(line1, line2, &Options{InterceptShape: Shape(42)})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestInterceptPointShapes(t *testing.T) {
	line1 := PolyLine{{0, 1}, {2, 1}}
	line2 := PolyLine{{1, 0}, {1, 2}}

	res, err := ComputeIntersection(line1, line2, nil)
	require.NoError(t, err)
	pair, err := json.Marshal(res.Point)
	require.NoError(t, err)
	assert.JSONEq(t, `[1,1]`, string(pair))

	res, err = ComputeIntersection(line1, line2, &Options{
		InterceptShape: ShapeLabeled,
		Template: map[string]interface{}{
			"marker": "cross",
			"x":      99.0, // always overwritten
		},
	})
	require.NoError(t, err)
	labeled, err := json.Marshal(res.Point)
	require.NoError(t, err)
	assert.JSONEq(t, `{"marker":"cross","x":1,"y":1}`, string(labeled))
}

func TestComputeIntersectionDeterministic(t *testing.T) {
	line1 := PolyLine{{-3, 7}, {5, -1}}
	line2 := PolyLine{{0, 0}, {6, 3}}

	a, err := ComputeIntersection(line1, line2, nil)
	require.NoError(t, err)
	b, err := ComputeIntersection(line1, line2, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
