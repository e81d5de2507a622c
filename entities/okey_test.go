package entities

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOkeySet(t *testing.T) {
	tiles := GenerateOkeySet()
	require.Len(t, tiles, 106)

	fakeJokers := 0
	counts := make(map[string]int) // color+number
	for _, tile := range tiles {
		if tile.IsFakeJoker {
			fakeJokers++
			continue
		}
		assert.GreaterOrEqual(t, tile.Number, 1)
		assert.LessOrEqual(t, tile.Number, 13)
		counts[fmt.Sprintf("%s-%d", tile.Color, tile.Number)]++
	}
	assert.Equal(t, 2, fakeJokers)
	for key, c := range counts {
		assert.Equal(t, 2, c, "每种牌两张: %s", key)
	}
}

func TestDealOkeyTiles(t *testing.T) {
	stock, hands, startIndex := DealOkeyTiles()

	require.Len(t, hands, OkeySeats)
	for _, hand := range hands {
		assert.Len(t, hand, 14)
	}
	assert.Len(t, stock, 50)
	assert.GreaterOrEqual(t, startIndex, 0)
	assert.Less(t, startIndex, OkeySeats)

	ids := make(map[string]bool)
	for _, hand := range hands {
		for _, tile := range hand {
			assert.False(t, ids[tile.ID])
			ids[tile.ID] = true
		}
	}
	for _, tile := range stock {
		assert.False(t, ids[tile.ID])
		ids[tile.ID] = true
	}
	assert.Len(t, ids, 106)
}

func TestSelectIndicator(t *testing.T) {
	stock, _, _ := DealOkeyTiles()
	indicator := SelectIndicator(stock)

	// 指示牌取自牌库前10张，且不离开牌库
	found := false
	for _, tile := range stock[:10] {
		if tile.ID == indicator.ID {
			found = true
			break
		}
	}
	assert.True(t, found)
	assert.Len(t, stock, 50)
}

func okeyTiles(pairs ...[2]interface{}) []OkeyTile {
	out := make([]OkeyTile, 0, len(pairs))
	for i, p := range pairs {
		out = append(out, OkeyTile{
			ID:     string(rune('a' + i)),
			Color:  p[0].(string),
			Number: p[1].(int),
		})
	}
	return out
}

func TestCheckOkeyWinSevenPairs(t *testing.T) {
	hand := okeyTiles(
		[2]interface{}{"Red", 1}, [2]interface{}{"Black", 1},
		[2]interface{}{"Red", 2}, [2]interface{}{"Black", 2},
		[2]interface{}{"Red", 3}, [2]interface{}{"Black", 3},
		[2]interface{}{"Red", 4}, [2]interface{}{"Black", 4},
		[2]interface{}{"Red", 5}, [2]interface{}{"Black", 5},
		[2]interface{}{"Red", 6}, [2]interface{}{"Black", 6},
		[2]interface{}{"Red", 7}, [2]interface{}{"Black", 7},
	)
	assert.True(t, CheckOkeyWin(hand))
}

func TestCheckOkeyWinTripletsAndPair(t *testing.T) {
	hand := okeyTiles(
		[2]interface{}{"Red", 1}, [2]interface{}{"Black", 1}, [2]interface{}{"Blue", 1},
		[2]interface{}{"Red", 2}, [2]interface{}{"Black", 2}, [2]interface{}{"Blue", 2},
		[2]interface{}{"Red", 3}, [2]interface{}{"Black", 3}, [2]interface{}{"Blue", 3},
		[2]interface{}{"Red", 4}, [2]interface{}{"Black", 4}, [2]interface{}{"Blue", 4},
		[2]interface{}{"Red", 5}, [2]interface{}{"Black", 5},
	)
	assert.True(t, CheckOkeyWin(hand))
}

func TestCheckOkeyWinRejects(t *testing.T) {
	// 张数不对
	assert.False(t, CheckOkeyWin(okeyTiles([2]interface{}{"Red", 1})))

	// 14张散牌
	hand := okeyTiles(
		[2]interface{}{"Red", 1}, [2]interface{}{"Black", 2},
		[2]interface{}{"Red", 3}, [2]interface{}{"Black", 4},
		[2]interface{}{"Red", 5}, [2]interface{}{"Black", 6},
		[2]interface{}{"Red", 7}, [2]interface{}{"Black", 8},
		[2]interface{}{"Red", 9}, [2]interface{}{"Black", 10},
		[2]interface{}{"Red", 11}, [2]interface{}{"Black", 12},
		[2]interface{}{"Red", 13}, [2]interface{}{"Blue", 1},
	)
	assert.False(t, CheckOkeyWin(hand))
}

func TestOkeySetAndRunValidators(t *testing.T) {
	set := okeyTiles(
		[2]interface{}{"Red", 7}, [2]interface{}{"Black", 7}, [2]interface{}{"Blue", 7},
	)
	assert.True(t, IsValidOkeySet(set))

	dupColor := okeyTiles(
		[2]interface{}{"Red", 7}, [2]interface{}{"Red", 7}, [2]interface{}{"Blue", 7},
	)
	assert.False(t, IsValidOkeySet(dupColor))

	run := okeyTiles(
		[2]interface{}{"Red", 4}, [2]interface{}{"Red", 6}, [2]interface{}{"Red", 5},
	)
	assert.True(t, IsValidOkeyRun(run))

	gap := okeyTiles(
		[2]interface{}{"Red", 4}, [2]interface{}{"Red", 6}, [2]interface{}{"Red", 7},
	)
	assert.False(t, IsValidOkeyRun(gap))
}

func TestSortHand(t *testing.T) {
	p := &OkeyPlayer{Hand: okeyTiles(
		[2]interface{}{"Red", 5}, [2]interface{}{"Black", 9}, [2]interface{}{"Black", 2},
	)}
	p.SortHand()

	assert.Equal(t, "Black", p.Hand[0].Color)
	assert.Equal(t, 2, p.Hand[0].Number)
	assert.Equal(t, 9, p.Hand[1].Number)
	assert.Equal(t, "Red", p.Hand[2].Color)
}
