package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeenCache(t *testing.T) {
	t.Run("unmarked race is not seen", func(t *testing.T) {
		seen := NewSeenCache(time.Minute)
		assert.False(t, seen.Seen("race-1"))
		assert.Equal(t, 0, seen.Len())
	})

	t.Run("marked race is seen", func(t *testing.T) {
		seen := NewSeenCache(time.Minute)
		seen.Mark("race-1")
		assert.True(t, seen.Seen("race-1"))
		assert.False(t, seen.Seen("race-2"))
		assert.Equal(t, 1, seen.Len())
	})

	t.Run("checking does not mark", func(t *testing.T) {
		seen := NewSeenCache(time.Minute)
		seen.Seen("race-1")
		assert.False(t, seen.Seen("race-1"))
	})

	t.Run("entries expire after the ttl", func(t *testing.T) {
		seen := NewSeenCache(20 * time.Millisecond)
		seen.Mark("race-1")
		assert.True(t, seen.Seen("race-1"))

		time.Sleep(50 * time.Millisecond)
		assert.False(t, seen.Seen("race-1"))
	})
}
