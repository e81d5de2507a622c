package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDominoSet(t *testing.T) {
	tiles := GenerateDominoSet()
	require.Len(t, tiles, 28)

	seen := make(map[[2]int]bool)
	for _, tile := range tiles {
		assert.GreaterOrEqual(t, tile.Left, 0)
		assert.LessOrEqual(t, tile.Right, 6)
		key := [2]int{tile.Left, tile.Right}
		assert.False(t, seen[key], "重复的牌 %v", tile)
		seen[key] = true
		assert.NotEmpty(t, tile.ID)
	}
}

func TestDealDominoTiles(t *testing.T) {
	stock, hands := DealDominoTiles(3, 7)

	require.Len(t, hands, 3)
	total := len(stock)
	ids := make(map[string]bool)
	for _, hand := range hands {
		assert.Len(t, hand, 7)
		total += len(hand)
		for _, tile := range hand {
			assert.False(t, ids[tile.ID])
			ids[tile.ID] = true
		}
	}
	for _, tile := range stock {
		assert.False(t, ids[tile.ID])
		ids[tile.ID] = true
	}
	assert.Equal(t, 28, total)
}

func TestTileFlipKeepsID(t *testing.T) {
	tile := NewDominoTile(2, 5)
	flipped := tile.Flip()

	assert.Equal(t, tile.ID, flipped.ID)
	assert.Equal(t, 5, flipped.Left)
	assert.Equal(t, 2, flipped.Right)
	assert.True(t, tile.EqualsUnordered(flipped))
}

func TestChainPlacement(t *testing.T) {
	chain := DominoChain{}
	chain.AddRight(NewDominoTile(3, 5), false)

	// 左端是3，右端是5
	left, ok := chain.LeftEnd()
	require.True(t, ok)
	assert.Equal(t, 3, left)

	// [5|2] 接右端，自动翻转成贴合方向
	canLeft, canRight := chain.CanPlace(NewDominoTile(2, 5))
	assert.False(t, canLeft)
	assert.True(t, canRight)

	chain.AddRight(NewDominoTile(2, 5), false)
	right, _ := chain.RightEnd()
	assert.Equal(t, 2, right)

	// [6|3] 接左端
	chain.AddLeft(NewDominoTile(6, 3), false)
	left, _ = chain.LeftEnd()
	assert.Equal(t, 6, left)

	// 链内相邻端点必须吻合
	for i := 1; i < len(chain.Tiles); i++ {
		assert.Equal(t, chain.Tiles[i-1].Right, chain.Tiles[i].Left)
	}
}

func TestNextTurnClearsPassFlags(t *testing.T) {
	room := &DominoRoom{
		Players: []*DominoPlayer{
			{Name: "a", HasPassed: true},
			{Name: "b", HasPassed: true},
			{Name: "c", HasPassed: true},
		},
	}

	room.NextTurn()
	assert.Equal(t, 1, room.CurrentPlayerIndex)
	for _, p := range room.Players {
		assert.False(t, p.HasPassed)
	}

	// 回合在座位间循环
	room.NextTurn()
	room.NextTurn()
	assert.Equal(t, 0, room.CurrentPlayerIndex)
}

func TestFindSmallestDoubleIndex(t *testing.T) {
	players := []*DominoPlayer{
		{Hand: []DominoTile{NewDominoTile(3, 3), NewDominoTile(1, 2)}},
		{Hand: []DominoTile{NewDominoTile(1, 1), NewDominoTile(5, 6)}},
		{Hand: []DominoTile{NewDominoTile(4, 5), NewDominoTile(2, 6)}},
	}
	assert.Equal(t, 1, FindSmallestDoubleIndex(players))

	// 没有对牌时让 0 号位开局
	noDoubles := []*DominoPlayer{
		{Hand: []DominoTile{NewDominoTile(1, 2)}},
		{Hand: []DominoTile{NewDominoTile(3, 4)}},
	}
	assert.Equal(t, 0, FindSmallestDoubleIndex(noDoubles))
}

func TestHandValue(t *testing.T) {
	p := &DominoPlayer{Hand: []DominoTile{
		NewDominoTile(1, 2),
		NewDominoTile(6, 6),
	}}
	assert.Equal(t, 15, p.HandValue())

	tile, ok := p.RemoveTile(p.Hand[0].ID)
	require.True(t, ok)
	assert.Equal(t, 3, tile.PipSum())
	assert.Equal(t, 12, p.HandValue())
}

func TestParseDominoGameType(t *testing.T) {
	assert.Equal(t, DominoQuick5, ParseDominoGameType("Quick5"))
	assert.Equal(t, DominoClassic101, ParseDominoGameType("不存在的玩法"))
	assert.Equal(t, 5, DominoQuick5.TilesPerPlayer())
	assert.Equal(t, 7, DominoClassic101.TilesPerPlayer())
}
