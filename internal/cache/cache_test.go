package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/filesieve/filesieve/internal/model"
)

func TestBloomNoFalseNegatives(t *testing.T) {
	b := NewBloom(1000, 0.01)
	paths := []string{"/a/b.txt", "/a/c.txt", "/d/e.rs", "/f/g/h.go"}
	for _, p := range paths {
		b.Add(p)
	}
	for _, p := range paths {
		assert.True(t, b.MightContain(p))
	}
}

func TestBloomAbsentKeyUsuallyNotPresent(t *testing.T) {
	b := NewBloom(1000, 0.001)
	b.Add("/only/this/one.txt")
	assert.False(t, b.MightContain("/completely/different/path.md"))
}

func TestBloomReset(t *testing.T) {
	b := NewBloom(100, 0.01)
	b.Add("/x")
	assert.True(t, b.MightContain("/x"))
	assert.Equal(t, uint64(1), b.ApproxCount())

	b.Reset()
	assert.False(t, b.MightContain("/x"))
	assert.Equal(t, uint64(0), b.ApproxCount())
}

func TestEntryLRUGetSet(t *testing.T) {
	c := NewEntryLRU(2)
	e := model.NewFileEntry("/a.txt")
	c.Set("/a.txt", e)

	got, ok := c.Get("/a.txt")
	assert.True(t, ok)
	assert.Equal(t, "/a.txt", got.Path)
}

func TestEntryLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewEntryLRU(2)
	c.Set("/a.txt", model.NewFileEntry("/a.txt"))
	c.Set("/b.txt", model.NewFileEntry("/b.txt"))

	// Touch /a.txt so /b.txt becomes the least-recently-used entry.
	_, _ = c.Get("/a.txt")

	c.Set("/c.txt", model.NewFileEntry("/c.txt"))

	_, aOK := c.Get("/a.txt")
	_, bOK := c.Get("/b.txt")
	_, cOK := c.Get("/c.txt")

	assert.True(t, aOK)
	assert.False(t, bOK)
	assert.True(t, cOK)
	assert.Equal(t, 2, c.Size())
}

func TestEntryLRUInvalidateAndClear(t *testing.T) {
	c := NewEntryLRU(10)
	c.Set("/a.txt", model.NewFileEntry("/a.txt"))
	c.Set("/b.txt", model.NewFileEntry("/b.txt"))

	c.Invalidate("/a.txt")
	_, ok := c.Get("/a.txt")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}
