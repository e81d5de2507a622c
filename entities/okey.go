package entities

import (
	"sort"
	"sync"

	"blog-game/utils"

	"github.com/google/uuid"
)

// Okey 四种花色
var OkeyColors = []string{"Red", "Black", "Blue", "Yellow"}

// OkeyTile 一张 Okey 牌；Number 为 1-13，假司令（fake joker）Number 为 0
type OkeyTile struct {
	ID          string `json:"id"`
	Color       string `json:"color"`
	Number      int    `json:"number"`
	IsFakeJoker bool   `json:"isFakeJoker"`
}

type OkeyPlayer struct {
	ConnectionID string
	UserID       int
	Name         string
	Hand         []OkeyTile
	Score        int
	IsReady      bool
}

// SortHand 按花色、数字排序手牌
func (p *OkeyPlayer) SortHand() {
	sort.Slice(p.Hand, func(i, j int) bool {
		if p.Hand[i].Color != p.Hand[j].Color {
			return p.Hand[i].Color < p.Hand[j].Color
		}
		return p.Hand[i].Number < p.Hand[j].Number
	})
}

func (p *OkeyPlayer) HasTile(tileID string) bool {
	for _, t := range p.Hand {
		if t.ID == tileID {
			return true
		}
	}
	return false
}

func (p *OkeyPlayer) RemoveTile(tileID string) (OkeyTile, bool) {
	for i, t := range p.Hand {
		if t.ID == tileID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return t, true
		}
	}
	return OkeyTile{}, false
}

// OkeyRoom 固定 4 人桌；可变字段读写都必须持有 StateLock
type OkeyRoom struct {
	RoomID        string
	RoomName      string
	CreatorName   string
	CreatorUserID int
	EntryFee      int64
	IsPrivate     bool
	Password      string

	Players            []*OkeyPlayer
	Stock              []OkeyTile
	DiscardPile        []OkeyTile
	Indicator          *OkeyTile
	CurrentPlayerIndex int
	IsGameStarted      bool
	IsGameFinished     bool
	Winner             *OkeyPlayer

	StateLock sync.Mutex
}

const OkeySeats = 4

func (r *OkeyRoom) IsFull() bool {
	return len(r.Players) >= OkeySeats
}

func (r *OkeyRoom) CanStartGame() bool {
	return len(r.Players) == OkeySeats && !r.IsGameStarted
}

func (r *OkeyRoom) CurrentPlayerID() string {
	if len(r.Players) == 0 {
		return ""
	}
	return r.Players[r.CurrentPlayerIndex].ConnectionID
}

func (r *OkeyRoom) GetPlayer(connectionID string) *OkeyPlayer {
	for _, p := range r.Players {
		if p.ConnectionID == connectionID {
			return p
		}
	}
	return nil
}

func (r *OkeyRoom) GetPlayerByUserID(userID int) *OkeyPlayer {
	for _, p := range r.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func (r *OkeyRoom) GetCurrentPlayer() *OkeyPlayer {
	if len(r.Players) == 0 {
		return nil
	}
	return r.Players[r.CurrentPlayerIndex]
}

func (r *OkeyRoom) NextTurn() {
	r.CurrentPlayerIndex = (r.CurrentPlayerIndex + 1) % len(r.Players)
}

// GenerateOkeySet 生成整副 106 张：4色×1-13×2套 + 2张假司令
func GenerateOkeySet() []OkeyTile {
	tiles := make([]OkeyTile, 0, 106)
	for set := 0; set < 2; set++ {
		for _, color := range OkeyColors {
			for num := 1; num <= 13; num++ {
				tiles = append(tiles, OkeyTile{
					ID:     uuid.New().String(),
					Color:  color,
					Number: num,
				})
			}
		}
	}
	tiles = append(tiles,
		OkeyTile{ID: uuid.New().String(), Color: "Red", Number: 0, IsFakeJoker: true},
		OkeyTile{ID: uuid.New().String(), Color: "Black", Number: 0, IsFakeJoker: true},
	)
	return tiles
}

// DealOkeyTiles 洗牌后 4 人各 14 张，其余进牌库，随机定先手
func DealOkeyTiles() (stock []OkeyTile, hands [][]OkeyTile, startIndex int) {
	all := GenerateOkeySet()
	utils.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})

	hands = make([][]OkeyTile, OkeySeats)
	for i := 0; i < OkeySeats; i++ {
		hands[i] = append([]OkeyTile{}, all[i*14:(i+1)*14]...)
	}
	stock = all[OkeySeats*14:]
	startIndex = utils.Intn(OkeySeats)
	return stock, hands, startIndex
}

// SelectIndicator 从牌库顶部附近取一张做指示牌（不离开牌库）
func SelectIndicator(stock []OkeyTile) OkeyTile {
	if len(stock) == 0 {
		return OkeyTile{Color: "Red", Number: 1}
	}
	n := len(stock)
	if n > 10 {
		n = 10
	}
	return stock[utils.Intn(n)]
}

// CheckOkeyWin 简化版胡牌判定：14 张手牌构成 7 对，
// 或至少 4 组同数字三张以上 + 至少 1 对。
// 不做顺子与司令替换判定。
func CheckOkeyWin(hand []OkeyTile) bool {
	if len(hand) != 14 {
		return false
	}

	counts := make(map[int]int)
	for _, t := range hand {
		counts[t.Number]++
	}

	// 7 对
	if len(counts) == 7 {
		allPairs := true
		for _, c := range counts {
			if c != 2 {
				allPairs = false
				break
			}
		}
		if allPairs {
			return true
		}
	}

	// 4 组三张以上 + 1 对
	triplets, pairs := 0, 0
	for _, c := range counts {
		if c >= 3 {
			triplets++
		}
		if c >= 2 {
			pairs++
		}
	}
	return triplets >= 4 && pairs >= 1
}

// IsValidOkeySet 同数字不同颜色的 3+ 张
func IsValidOkeySet(tiles []OkeyTile) bool {
	if len(tiles) < 3 {
		return false
	}
	number := tiles[0].Number
	colors := make(map[string]bool)
	for _, t := range tiles {
		if t.Number != number {
			return false
		}
		colors[t.Color] = true
	}
	return len(colors) == len(tiles)
}

// IsValidOkeyRun 同颜色连续数字的 3+ 张
func IsValidOkeyRun(tiles []OkeyTile) bool {
	if len(tiles) < 3 {
		return false
	}
	color := tiles[0].Color
	numbers := make([]int, 0, len(tiles))
	for _, t := range tiles {
		if t.Color != color {
			return false
		}
		numbers = append(numbers, t.Number)
	}
	sort.Ints(numbers)
	for i := 1; i < len(numbers); i++ {
		if numbers[i] != numbers[i-1]+1 {
			return false
		}
	}
	return true
}
