package id

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TimeOrdered(t *testing.T) {
	prev := New()
	assert.EqualValues(t, 7, prev.Version())
	for range 100 {
		next := New()
		require.Negative(t, bytes.Compare(prev[:], next[:]))
		prev = next
	}
}

func TestParse(t *testing.T) {
	v := New()
	got, err := Parse(v.String())
	require.NoError(t, err)
	assert.Equal(t, v, got)

	_, err = Parse("lot-1")
	assert.Error(t, err)

	assert.True(t, IsNil(Nil()))
	assert.False(t, IsNil(v))
}
