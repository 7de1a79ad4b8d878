package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	krl := New(1, 2)

	// Burst of 2 available immediately, third is throttled
	assert.True(t, krl.Allow("puz-1"))
	assert.True(t, krl.Allow("puz-1"))
	assert.False(t, krl.Allow("puz-1"))

	// Keys are independent
	assert.True(t, krl.Allow("puz-2"))
}

func TestKeyedRateLimiter_Forget(t *testing.T) {
	krl := New(1, 1)

	assert.True(t, krl.Allow("puz-1"))
	assert.False(t, krl.Allow("puz-1"))

	// Forgetting the key resets its bucket
	krl.Forget("puz-1")
	assert.True(t, krl.Allow("puz-1"))
}
