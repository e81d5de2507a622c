package entities

import (
	"context"
	"sync"
	"time"

	"blog-game/utils"
)

// LotoCard 3行×9列，每行 5 个数字 4 个空格，nil 表示空格
type LotoCard [3][9]*int

// GenerateLotoCard 从 1-90 取 15 个不重复数字填卡
func GenerateLotoCard() LotoCard {
	numbers := make([]int, 90)
	for i := range numbers {
		numbers[i] = i + 1
	}
	utils.Shuffle(len(numbers), func(i, j int) {
		numbers[i], numbers[j] = numbers[j], numbers[i]
	})
	numbers = numbers[:15]

	var card LotoCard
	idx := 0
	for r := 0; r < 3; r++ {
		cols := []int{0, 1, 2, 3, 4, 5, 6, 7, 8}
		utils.Shuffle(len(cols), func(i, j int) {
			cols[i], cols[j] = cols[j], cols[i]
		})
		for _, pos := range cols[:5] {
			n := numbers[idx]
			idx++
			card[r][pos] = &n
		}
	}
	return card
}

// IsRowMarked 某一行的 5 个数字是否全部已开出
func (c LotoCard) IsRowMarked(row int, drawn map[int]bool) bool {
	if row < 0 || row > 2 {
		return false
	}
	for col := 0; col < 9; col++ {
		if c[row][col] != nil && !drawn[*c[row][col]] {
			return false
		}
	}
	return true
}

// IsFullCardMarked 整卡 15 个数字是否全部已开出（空格跳过）
func (c LotoCard) IsFullCardMarked(drawn map[int]bool) bool {
	for r := 0; r < 3; r++ {
		for col := 0; col < 9; col++ {
			if c[r][col] != nil && !drawn[*c[r][col]] {
				return false
			}
		}
	}
	return true
}

// ShuffledLotoNumbers 1-90 乱序队列，供自动开号逐个取出
func ShuffledLotoNumbers() []int {
	numbers := make([]int, 90)
	for i := range numbers {
		numbers[i] = i + 1
	}
	utils.Shuffle(len(numbers), func(i, j int) {
		numbers[i], numbers[j] = numbers[j], numbers[i]
	})
	return numbers
}

type LotoPlayer struct {
	ConnectionID  string
	UserID        int
	Name          string
	Card          LotoCard
	CompletedRows map[int]bool
	JoinedAt      time.Time
}

// LotoRoom 宾果房间；可变字段读写都必须持有 StateLock。
// 自动开号循环归房间所有，DrawCancel 在清理/重置前先行取消。
type LotoRoom struct {
	RoomID        string
	RoomName      string
	CreatorName   string
	CreatorUserID int
	CreatedAt     time.Time

	EntryFee         int64
	LineReward       int64
	WinReward        int64
	MaxPlayers       int
	AutoDrawInterval time.Duration

	IsGameStarted  bool
	IsGameFinished bool
	IsPrivate      bool
	Password       string

	Players      []*LotoPlayer
	NumbersQueue []int
	DrawnNumbers map[int]bool

	DrawCancel context.CancelFunc

	StateLock sync.Mutex
}

func (r *LotoRoom) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

func (r *LotoRoom) GetPlayerByUserID(userID int) *LotoPlayer {
	for _, p := range r.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func (r *LotoRoom) GetPlayer(connectionID string) *LotoPlayer {
	for _, p := range r.Players {
		if p.ConnectionID == connectionID {
			return p
		}
	}
	return nil
}

// CancelDraw 取消自动开号任务（没有启动过则为空操作）
func (r *LotoRoom) CancelDraw() {
	if r.DrawCancel != nil {
		r.DrawCancel()
		r.DrawCancel = nil
	}
}
