package srs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLadder(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		steps   []int
		wantErr error
	}{
		{name: "default steps", steps: []int{1, 3, 7, 14, 30, 60, 120}},
		{name: "single step", steps: []int{2}},
		{name: "empty", steps: nil, wantErr: ErrEmptyLadder},
		{name: "zero step", steps: []int{0, 1}, wantErr: ErrNonPositiveStep},
		{name: "descending", steps: []int{1, 7, 3}, wantErr: ErrLadderNotAscending},
		{name: "duplicate", steps: []int{1, 3, 3}, wantErr: ErrLadderNotAscending},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			l, err := NewLadder(tc.steps...)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.steps, l.Steps())
		})
	}
}

func TestLadderIsImmutable(t *testing.T) {
	t.Parallel()

	steps := []int{1, 2, 4}
	l, err := NewLadder(steps...)
	require.NoError(t, err)

	steps[0] = 99
	out := l.Steps()
	out[1] = 99

	assert.Equal(t, []int{1, 2, 4}, l.Steps())
}

func TestLadderNext(t *testing.T) {
	t.Parallel()
	l := DefaultLadder

	next, found := l.Next(1)
	assert.True(t, found)
	assert.Equal(t, 3, next)

	next, found = l.Next(60)
	assert.True(t, found)
	assert.Equal(t, 120, next)

	next, found = l.Next(120)
	assert.True(t, found, "last step is on the ladder")
	assert.Equal(t, 120, next)

	next, found = l.Next(45)
	assert.False(t, found)
	assert.Equal(t, 45, next)

	assert.Equal(t, 1, l.First())
	assert.Equal(t, 120, l.Max())
	assert.Equal(t, 7, l.Len())
	assert.Equal(t, -1, l.IndexOf(2))
}

func TestMustLadderPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { MustLadder(3, 1) })
}
