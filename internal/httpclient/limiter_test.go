package httpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestNewLimiter(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NewLimiter(0, 5), "zero rate disables limiting")
	assert.Nil(t, NewLimiter(-1, 5))

	l := NewLimiter(2, 3)
	require.NotNil(t, l)
	assert.Equal(t, rate.Limit(2), l.Limit())
	assert.Equal(t, 3, l.Burst())

	l = NewLimiter(0.5, 0)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.Burst())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow(), "second request must wait for a token")
}
