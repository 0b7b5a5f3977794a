package utils

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestChunk(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Chunk(items, 2))
	assert.Equal(t, [][]int{{1, 2, 3, 4, 5}}, Chunk(items, 50))
	assert.Equal(t, [][]int{{1, 2, 3, 4, 5}}, Chunk(items, 0))
	assert.Nil(t, Chunk([]int{}, 3))

	chunks := Chunk(items, 2)
	chunks[0] = append(chunks[0], 99)
	assert.Equal(t, 3, items[2], "appending to a chunk must not clobber the next one")
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Red Roses":              "red-roses",
		"Gül Buketi (12)":        "gul-buketi-12",
		"  Işıl & Çiçek  ":       "isil-cicek",
		"Pink Peonies -- Deluxe": "pink-peonies-deluxe",
		"Crème Brûlée":           "creme-brulee",
		"!!!":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short text", Truncate("short   text", 160))

	got := Truncate("A hand-tied bouquet of twelve red roses wrapped in kraft paper", 30)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 30)
	assert.Equal(t, "A hand-tied bouquet of twelve…", got)
}
