package camera

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNew verifies detectors are selected by name.
func TestNew(t *testing.T) {
	t.Parallel()

	d, err := New("always")
	require.NoError(t, err)
	require.Equal(t, StaticDetector(true), d)

	d, err = New("never")
	require.NoError(t, err)
	require.Equal(t, StaticDetector(false), d)

	d, err = New("random")
	require.NoError(t, err)
	require.IsType(t, new(RandomDetector), d)

	_, err = New("neural")
	require.ErrorIs(t, err, ErrUnknownDetector)
}

// TestRandomDetector checks a seeded detector yields both verdicts.
func TestRandomDetector(t *testing.T) {
	t.Parallel()

	d := NewRandomDetector(rand.NewPCG(1, 2))
	seen := make(map[bool]int)

	for range 100 {
		cat, err := d.ImageContainsCat(context.Background(), nil, 50)
		require.NoError(t, err)

		seen[cat]++
	}

	require.Positive(t, seen[true])
	require.Positive(t, seen[false])
}
