package wasmfit

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	trendline "github.com/vigneshwaranr/highcharts-trendline"
)

func TestEngineInputSkipsMissingSamples(t *testing.T) {
	nan := math.NaN()
	in := engineInput(trendline.PolyLine{{X: 0, Y: 1}, {X: nan, Y: nan}, {X: 2, Y: nan}, {X: 4, Y: 5}})

	assert.Equal(t, [][2]float64{{0, 1}, {4, 5}}, in.Points)

	// A gappy series must still be encodable for the engine.
	body, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"points":[[0,1],[4,5]]}`, string(body))
}
