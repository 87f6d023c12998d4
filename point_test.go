package trendline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointJSONRoundTrip(t *testing.T) {
	var p Point
	require.NoError(t, json.Unmarshal([]byte(`[1.5,2]`), &p))
	assert.Equal(t, Point{1.5, 2}, p)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5,2]`, string(out))
}

func TestPointRejectsWrongArity(t *testing.T) {
	var p Point
	assert.Error(t, json.Unmarshal([]byte(`[5]`), &p))
	assert.Error(t, json.Unmarshal([]byte(`[1,2,3]`), &p))
	assert.Error(t, json.Unmarshal([]byte(`[]`), &p))
	assert.Error(t, json.Unmarshal([]byte(`5`), &p))
}
