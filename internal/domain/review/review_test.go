package review

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReview_RatingBounds(t *testing.T) {
	for rating := 1; rating <= 5; rating++ {
		_, err := NewReview(uuid.New(), uuid.New(), rating, "decent lot")
		assert.NoError(t, err, "rating %d", rating)
	}

	_, err := NewReview(uuid.New(), uuid.New(), 0, "")
	assert.Error(t, err)

	_, err = NewReview(uuid.New(), uuid.New(), 6, "")
	assert.Error(t, err)

	_, err = NewReview(uuid.Nil, uuid.New(), 3, "")
	assert.Error(t, err, "nil lot ID")

	_, err = NewReview(uuid.New(), uuid.Nil, 3, "")
	assert.Error(t, err, "nil user ID")
}

func TestReview_Update(t *testing.T) {
	r, err := NewReview(uuid.New(), uuid.New(), 4, "good")
	require.NoError(t, err)

	require.NoError(t, r.Update(2, "went downhill"))
	assert.Equal(t, 2, r.Rating())
	assert.Equal(t, "went downhill", r.Text())

	assert.Error(t, r.Update(0, "x"))
	assert.Equal(t, 2, r.Rating(), "failed update leaves the review unchanged")
}

func TestIsAuthoredBy(t *testing.T) {
	userID := uuid.New()
	r, err := NewReview(uuid.New(), userID, 5, "")
	require.NoError(t, err)

	assert.True(t, r.IsAuthoredBy(userID))
	assert.False(t, r.IsAuthoredBy(uuid.New()))
}
