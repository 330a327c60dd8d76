package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorScanValue(t *testing.T) {
	v := Vector{0.5, -1, 2.25}
	raw, err := v.Value()
	require.NoError(t, err)

	var back Vector
	require.NoError(t, back.Scan(raw))
	assert.Equal(t, v, back)

	// MySQL json 列可能以 string 返回
	var fromString Vector
	require.NoError(t, fromString.Scan(`[1, 2]`))
	assert.Equal(t, Vector{1, 2}, fromString)

	var fromNil Vector
	require.NoError(t, fromNil.Scan(nil))
	assert.Nil(t, fromNil)

	assert.Error(t, back.Scan(42))
}
