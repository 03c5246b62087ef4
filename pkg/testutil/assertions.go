package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RequireNoError fails the test immediately if err is not nil.
func RequireNoError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	require.NoError(t, err, msgAndArgs...)
}

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), expected)
}

// AssertBetween checks lo <= v <= hi.
func AssertBetween(t *testing.T, v, lo, hi float64, msgAndArgs ...interface{}) {
	t.Helper()
	assert.GreaterOrEqual(t, v, lo, msgAndArgs...)
	assert.LessOrEqual(t, v, hi, msgAndArgs...)
}
