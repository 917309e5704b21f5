package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansiterm/videoplayer/internal/matrix"
)

func TestResize_ZeroedAndSized(t *testing.T) {
	t.Parallel()

	sizes := [][2]uint16{{0, 0}, {4, 3}, {100, 1}, {1, 100}, {7, 7}}

	for _, sz := range sizes {
		m := matrix.New[int]()
		m.Resize(sz[0], sz[1])

		assert.Len(t, m.Cells(), int(sz[0])*int(sz[1]))

		for _, c := range m.Cells() {
			assert.Zero(t, c)
		}

		w, h := m.Size()
		assert.Equal(t, sz[0], w)
		assert.Equal(t, sz[1], h)
	}
}

func TestResize_GrowThenShrinkStaysZeroed(t *testing.T) {
	t.Parallel()

	m := matrix.New[int]()
	m.Resize(3, 3)

	*m.GetMutUnchecked(1, 1) = 42

	m.Resize(2, 2)

	for _, c := range m.Cells() {
		assert.Zero(t, c)
	}
}

func TestResize_GrowStaysZeroed(t *testing.T) {
	t.Parallel()

	m := matrix.New[int]()
	m.Resize(2, 2)
	*m.GetMutUnchecked(0, 0) = 99

	m.Resize(3, 3)

	for _, c := range m.Cells() {
		assert.Zero(t, c)
	}
}

func TestResize_SameCountDifferentShapeClears(t *testing.T) {
	t.Parallel()

	m := matrix.New[int]()
	m.Resize(2, 3)
	*m.GetMutUnchecked(1, 2) = 9

	m.Resize(3, 2)

	for _, c := range m.Cells() {
		assert.Zero(t, c)
	}
}

func TestGetMut_OutOfBounds(t *testing.T) {
	t.Parallel()

	m := matrix.New[int]()
	m.Resize(2, 2)

	require.Nil(t, m.GetMut(2, 0))
	require.Nil(t, m.GetMut(0, 2))
	require.NotNil(t, m.GetMut(1, 1))
}

func TestGetMutUnchecked_Addressing(t *testing.T) {
	t.Parallel()

	m := matrix.New[int]()
	m.Resize(3, 2)

	*m.GetMutUnchecked(2, 1) = 7

	assert.Equal(t, 7, m.Cells()[1*3+2])
}
