package carwash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWashType(t *testing.T) {
	wt, err := NewWashType("premium", "foam wash with interior vacuum", 15000)
	require.NoError(t, err)
	assert.Equal(t, "premium", wt.Name())
	assert.Equal(t, int64(15000), wt.PriceCents())

	_, err = NewWashType("", "", 15000)
	assert.Error(t, err, "empty name")

	_, err = NewWashType("basic", "", 0)
	assert.Error(t, err, "non-positive price")
}

func TestWashType_Update(t *testing.T) {
	wt, err := NewWashType("basic", "exterior rinse", 8000)
	require.NoError(t, err)

	require.NoError(t, wt.Update("", "exterior rinse and dry", 0))
	assert.Equal(t, "basic", wt.Name(), "empty name is left untouched")
	assert.Equal(t, "exterior rinse and dry", wt.Description())
	assert.Equal(t, int64(8000), wt.PriceCents(), "zero price means no change")

	require.NoError(t, wt.Update("", "", 9000))
	assert.Equal(t, int64(9000), wt.PriceCents())

	assert.Error(t, wt.Update("", "", -1))
}
