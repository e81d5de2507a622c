package entities

import (
	"fmt"
	"strings"
	"sync"

	"blog-game/utils"

	"github.com/google/uuid"
)

// 多米诺玩法：经典101计分、快速局（5张手牌）、电话多米诺
type DominoGameType string

const (
	DominoClassic101 DominoGameType = "Classic101"
	DominoQuick5     DominoGameType = "Quick5"
	DominoPhone      DominoGameType = "PhoneDomino"
)

// TilesPerPlayer 每人发牌数量
func (t DominoGameType) TilesPerPlayer() int {
	if t == DominoQuick5 {
		return 5
	}
	return 7
}

func ParseDominoGameType(s string) DominoGameType {
	switch DominoGameType(s) {
	case DominoClassic101, DominoQuick5, DominoPhone:
		return DominoGameType(s)
	default:
		return DominoClassic101
	}
}

type PlayerStatus string

const (
	StatusWaiting  PlayerStatus = "waiting"
	StatusPlaying  PlayerStatus = "playing"
	StatusPassed   PlayerStatus = "passed"
	StatusFinished PlayerStatus = "finished"
)

// DominoTile 骨牌：两端点数 + 稳定ID（翻转不变）
type DominoTile struct {
	Left  int    `json:"left"`
	Right int    `json:"right"`
	ID    string `json:"id"`
}

func NewDominoTile(left, right int) DominoTile {
	return DominoTile{
		Left:  left,
		Right: right,
		ID:    strings.ReplaceAll(uuid.New().String(), "-", "")[:8],
	}
}

// Flip 返回两端互换的新牌，ID 不变
func (t DominoTile) Flip() DominoTile {
	return DominoTile{Left: t.Right, Right: t.Left, ID: t.ID}
}

// EqualsUnordered 无序相等：(L,R) 与 (R,L) 视为同一张牌
func (t DominoTile) EqualsUnordered(other DominoTile) bool {
	return (t.Left == other.Left && t.Right == other.Right) ||
		(t.Left == other.Right && t.Right == other.Left)
}

func (t DominoTile) IsDouble() bool {
	return t.Left == t.Right
}

func (t DominoTile) PipSum() int {
	return t.Left + t.Right
}

func (t DominoTile) String() string {
	return fmt.Sprintf("[%d|%d]", t.Left, t.Right)
}

// DominoPlayer 座位上的玩家，UserID 跨重连不变，ConnectionID 重连时更新
type DominoPlayer struct {
	ConnectionID string
	UserID       int
	Name         string
	Hand         []DominoTile
	Status       PlayerStatus
	Score        int
	HasPassed    bool
}

// HandValue 手牌点数合计（结算用）
func (p *DominoPlayer) HandValue() int {
	sum := 0
	for _, t := range p.Hand {
		sum += t.PipSum()
	}
	return sum
}

func (p *DominoPlayer) HasTile(tileID string) bool {
	for _, t := range p.Hand {
		if t.ID == tileID {
			return true
		}
	}
	return false
}

// RemoveTile 按ID移除手牌，返回被移除的牌
func (p *DominoPlayer) RemoveTile(tileID string) (DominoTile, bool) {
	for i, t := range p.Hand {
		if t.ID == tileID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return t, true
		}
	}
	return DominoTile{}, false
}

// DominoChain 桌面牌链，左右各有一个开放端
type DominoChain struct {
	Tiles []DominoTile
}

// LeftEnd 链左端点数；链为空时 ok 为 false
func (c *DominoChain) LeftEnd() (int, bool) {
	if len(c.Tiles) == 0 {
		return 0, false
	}
	return c.Tiles[0].Left, true
}

func (c *DominoChain) RightEnd() (int, bool) {
	if len(c.Tiles) == 0 {
		return 0, false
	}
	return c.Tiles[len(c.Tiles)-1].Right, true
}

// AddLeft 在左端接牌；方向不匹配时自动翻转，保证匹配值贴住链端
func (c *DominoChain) AddLeft(tile DominoTile, flip bool) {
	toAdd := tile
	if flip {
		toAdd = tile.Flip()
	}
	if end, ok := c.LeftEnd(); ok && toAdd.Right != end {
		toAdd = toAdd.Flip()
	}
	c.Tiles = append([]DominoTile{toAdd}, c.Tiles...)
}

func (c *DominoChain) AddRight(tile DominoTile, flip bool) {
	toAdd := tile
	if flip {
		toAdd = tile.Flip()
	}
	if end, ok := c.RightEnd(); ok && toAdd.Left != end {
		toAdd = toAdd.Flip()
	}
	c.Tiles = append(c.Tiles, toAdd)
}

// CanPlace 判断一张牌能否接在左端/右端（空链两端都可）
func (c *DominoChain) CanPlace(tile DominoTile) (canLeft, canRight bool) {
	if len(c.Tiles) == 0 {
		return true, true
	}
	left, _ := c.LeftEnd()
	right, _ := c.RightEnd()
	canLeft = tile.Left == left || tile.Right == left
	canRight = tile.Left == right || tile.Right == right
	return canLeft, canRight
}

// DominoRoom 一个对局房间；可变字段读写都必须持有 StateLock
type DominoRoom struct {
	RoomID        string
	RoomName      string
	CreatorName   string
	CreatorUserID int
	GameType      DominoGameType
	EntryFee      int64
	MaxPlayers    int
	IsPrivate     bool
	Password      string

	Players            []*DominoPlayer
	CurrentPlayerIndex int
	IsGameStarted      bool
	PotCount           int // 开局时的入座人数，派彩按这个数算

	CurrentRound    int
	IsRoundFinished bool
	RoundWinner     *DominoPlayer

	Chain DominoChain
	Stock []DominoTile

	StateLock sync.Mutex
}

func (r *DominoRoom) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

// CurrentPlayerID 当前回合玩家的连接ID
func (r *DominoRoom) CurrentPlayerID() string {
	if len(r.Players) == 0 || r.CurrentPlayerIndex >= len(r.Players) {
		return ""
	}
	return r.Players[r.CurrentPlayerIndex].ConnectionID
}

func (r *DominoRoom) GetCurrentPlayer() *DominoPlayer {
	if r.CurrentPlayerIndex >= 0 && r.CurrentPlayerIndex < len(r.Players) {
		return r.Players[r.CurrentPlayerIndex]
	}
	return nil
}

func (r *DominoRoom) GetPlayer(connectionID string) *DominoPlayer {
	for _, p := range r.Players {
		if p.ConnectionID == connectionID {
			return p
		}
	}
	return nil
}

func (r *DominoRoom) GetPlayerByUserID(userID int) *DominoPlayer {
	for _, p := range r.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// NextTurn 轮转到下一个座位；全员都已过牌时清掉过牌标记
func (r *DominoRoom) NextTurn() {
	r.CurrentPlayerIndex = (r.CurrentPlayerIndex + 1) % len(r.Players)

	allPassed := true
	for _, p := range r.Players {
		if !p.HasPassed {
			allPassed = false
			break
		}
	}
	if allPassed {
		for _, p := range r.Players {
			p.HasPassed = false
		}
	}
}

// GenerateDominoSet 生成双六全套 28 张骨牌
func GenerateDominoSet() []DominoTile {
	tiles := make([]DominoTile, 0, 28)
	for i := 0; i <= 6; i++ {
		for j := i; j <= 6; j++ {
			tiles = append(tiles, NewDominoTile(i, j))
		}
	}
	return tiles
}

// DealDominoTiles 洗牌并发牌，剩余进牌库
func DealDominoTiles(playerCount, tilesPerPlayer int) (stock []DominoTile, hands [][]DominoTile) {
	all := GenerateDominoSet()
	utils.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})

	hands = make([][]DominoTile, playerCount)
	for i := 0; i < playerCount; i++ {
		hands[i] = append([]DominoTile{}, all[:tilesPerPlayer]...)
		all = all[tilesPerPlayer:]
	}
	return all, hands
}

// FindSmallestDoubleIndex 找最小对牌（0-0 优先）的持有者，没有对牌时由 0 号位开局
func FindSmallestDoubleIndex(players []*DominoPlayer) int {
	minValue := int(^uint(0) >> 1)
	playerIndex := 0

	for i, p := range players {
		for _, t := range p.Hand {
			if t.IsDouble() && t.Left < minValue {
				minValue = t.Left
				playerIndex = i
			}
		}
	}
	return playerIndex
}
