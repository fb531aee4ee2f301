package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, Size))
	assert.Equal(t, 1, TotalPages(1, Size))
	assert.Equal(t, 1, TotalPages(10, Size))
	assert.Equal(t, 2, TotalPages(11, Size))
	assert.Equal(t, 3, TotalPages(25, Size))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(0, 3), "below range clamps to first page")
	assert.Equal(t, 1, Clamp(-5, 3))
	assert.Equal(t, 2, Clamp(2, 3))
	assert.Equal(t, 3, Clamp(99, 3), "beyond last clamps to last page")
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, Size))
	assert.Equal(t, 10, Offset(2, Size))
	assert.Equal(t, 40, Offset(5, Size))
}

func TestNew(t *testing.T) {
	t.Run("middle page", func(t *testing.T) {
		items := []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
		page := New(items, 2, Size, 25)

		assert.Len(t, page.Items, Size)
		assert.Equal(t, 2, page.Number)
		assert.Equal(t, int64(25), page.TotalItems)
		assert.Equal(t, 3, page.TotalPages)
		assert.True(t, page.HasPrev)
		assert.True(t, page.HasNext)
	})

	t.Run("last page", func(t *testing.T) {
		page := New([]int{30, 31, 32, 33, 34}, 3, Size, 25)
		assert.True(t, page.HasPrev)
		assert.False(t, page.HasNext)
	})

	t.Run("empty set yields a single empty page", func(t *testing.T) {
		page := New[int](nil, 1, Size, 0)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
		assert.Equal(t, 1, page.Number)
		assert.Equal(t, 1, page.TotalPages)
		assert.False(t, page.HasPrev)
		assert.False(t, page.HasNext)
	})

	t.Run("page size never exceeded", func(t *testing.T) {
		items := make([]int, Size)
		page := New(items, 1, Size, 100)
		assert.LessOrEqual(t, len(page.Items), Size)
	})
}
