package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginLimiter_BurstThenDeny(t *testing.T) {
	t.Parallel()

	l := newLoginLimiter(1, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "attempt %d should pass", i)
	}
	assert.False(t, l.Allow("10.0.0.1"))
}

func TestLoginLimiter_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	l := newLoginLimiter(1, 1)

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))
}
