package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLotoCard(t *testing.T) {
	card := GenerateLotoCard()

	seen := make(map[int]bool)
	total := 0
	for r := 0; r < 3; r++ {
		rowCount := 0
		for col := 0; col < 9; col++ {
			if card[r][col] == nil {
				continue
			}
			n := *card[r][col]
			assert.GreaterOrEqual(t, n, 1)
			assert.LessOrEqual(t, n, 90)
			assert.False(t, seen[n], "重复号码 %d", n)
			seen[n] = true
			rowCount++
			total++
		}
		assert.Equal(t, 5, rowCount, "第%d行应有5个号码", r)
	}
	assert.Equal(t, 15, total)
}

func TestIsRowMarked(t *testing.T) {
	card := GenerateLotoCard()
	drawn := make(map[int]bool)

	assert.False(t, card.IsRowMarked(0, drawn))
	assert.False(t, card.IsRowMarked(-1, drawn))
	assert.False(t, card.IsRowMarked(3, drawn))

	// 开出第0行的全部号码
	for col := 0; col < 9; col++ {
		if card[0][col] != nil {
			drawn[*card[0][col]] = true
		}
	}
	assert.True(t, card.IsRowMarked(0, drawn))
	assert.False(t, card.IsRowMarked(1, drawn))
	assert.False(t, card.IsFullCardMarked(drawn))
}

func TestIsFullCardMarked(t *testing.T) {
	card := GenerateLotoCard()
	drawn := make(map[int]bool)
	for r := 0; r < 3; r++ {
		for col := 0; col < 9; col++ {
			if card[r][col] != nil {
				drawn[*card[r][col]] = true
			}
		}
	}
	require.Len(t, drawn, 15)
	assert.True(t, card.IsFullCardMarked(drawn))
	for r := 0; r < 3; r++ {
		assert.True(t, card.IsRowMarked(r, drawn))
	}
}

func TestShuffledLotoNumbers(t *testing.T) {
	nums := ShuffledLotoNumbers()
	require.Len(t, nums, 90)

	seen := make(map[int]bool)
	for _, n := range nums {
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, 90)
		assert.False(t, seen[n])
		seen[n] = true
	}
}
