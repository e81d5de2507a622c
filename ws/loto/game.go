package loto

import (
	"time"

	"blog-game/dto"
	"blog-game/entities"
)

// 对局引擎：锁内改状态、不做 I/O

// CheckSeat 入场资格检查；进行中的房间也能买卡进场，打完的不行
func CheckSeat(room *entities.LotoRoom, userID int, password string) (string, bool) {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	switch {
	case room.IsGameFinished:
		return "本局已经结束", false
	case room.IsFull():
		return "房间已满", false
	case room.IsPrivate && room.Password != password:
		return "房间密码错误", false
	case room.GetPlayerByUserID(userID) != nil:
		return "你已经在这个房间里", false
	}
	return "", true
}

// CommitSeat 扣费后占座
func CommitSeat(room *entities.LotoRoom, player *entities.LotoPlayer) bool {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	if room.IsGameFinished || room.IsFull() || room.GetPlayerByUserID(player.UserID) != nil {
		return false
	}
	room.Players = append(room.Players, player)
	return true
}

// NewPlayer 入场即发一张卡
func NewPlayer(connectionID string, userID int, name string) *entities.LotoPlayer {
	return &entities.LotoPlayer{
		ConnectionID:  connectionID,
		UserID:        userID,
		Name:          name,
		Card:          entities.GenerateLotoCard(),
		CompletedRows: make(map[int]bool),
		JoinedAt:      time.Now(),
	}
}

// StartGame 房主开局：洗好 90 个号的队列；至少要有 1 名玩家
func StartGame(room *entities.LotoRoom, byUserID int) (string, bool) {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	switch {
	case room.IsGameStarted:
		return "游戏已经开始", false
	case room.CreatorUserID != byUserID:
		return "只有房主能开始游戏", false
	case len(room.Players) < 1:
		return "房间里没有玩家", false
	}

	room.NumbersQueue = entities.ShuffledLotoNumbers()
	room.DrawnNumbers = make(map[int]bool)
	room.IsGameStarted = true
	room.IsGameFinished = false
	for _, p := range room.Players {
		p.CompletedRows = make(map[int]bool)
	}
	return "", true
}

// DrawOutcome 一次开号的结果
type DrawOutcome struct {
	Ok        bool
	Number    int
	Remaining int
	Exhausted bool // 号抽完了，无人满卡，整局结束
}

// DrawNumber 从队列抽下一个号；队列抽空时顺带收局
func DrawNumber(room *entities.LotoRoom) DrawOutcome {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	if !room.IsGameStarted || room.IsGameFinished || len(room.NumbersQueue) == 0 {
		return DrawOutcome{}
	}

	num := room.NumbersQueue[0]
	room.NumbersQueue = room.NumbersQueue[1:]
	room.DrawnNumbers[num] = true

	out := DrawOutcome{Ok: true, Number: num, Remaining: len(room.NumbersQueue)}
	if len(room.NumbersQueue) == 0 {
		room.IsGameStarted = false
		room.IsGameFinished = true
		room.CancelDraw()
		out.Exhausted = true
	}
	return out
}

// ClaimResult 报线/满卡结果
type ClaimResult struct {
	Ok     bool
	Reason string

	Duplicate  bool // 该行已经领过奖，幂等处理不重复派彩
	Row        int
	PlayerName string
	UserID     int
	ConnID     string
	Reward     int64
}

// ClaimRow 报一条线：整行号码都已开出才算，重复报不重复给钱
func ClaimRow(room *entities.LotoRoom, connectionID string, row int) ClaimResult {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	if !room.IsGameStarted || room.IsGameFinished {
		return ClaimResult{Reason: "游戏未在进行中"}
	}
	if row < 0 || row > 2 {
		return ClaimResult{Reason: "无效的行号"}
	}
	player := room.GetPlayer(connectionID)
	if player == nil {
		return ClaimResult{Reason: "你不在这个房间里"}
	}
	if !player.Card.IsRowMarked(row, room.DrawnNumbers) {
		return ClaimResult{Reason: "这条线还没满"}
	}

	res := ClaimResult{
		Ok:         true,
		Row:        row,
		PlayerName: player.Name,
		UserID:     player.UserID,
		ConnID:     player.ConnectionID,
	}
	if player.CompletedRows[row] {
		res.Duplicate = true
		return res
	}
	player.CompletedRows[row] = true
	res.Reward = room.LineReward
	return res
}

// ClaimBingo 报满卡：15 个号全开出即赢整局，开号随之停止
func ClaimBingo(room *entities.LotoRoom, connectionID string) ClaimResult {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	if !room.IsGameStarted || room.IsGameFinished {
		return ClaimResult{Reason: "游戏未在进行中"}
	}
	player := room.GetPlayer(connectionID)
	if player == nil {
		return ClaimResult{Reason: "你不在这个房间里"}
	}
	if !player.Card.IsFullCardMarked(room.DrawnNumbers) {
		return ClaimResult{Reason: "卡上还有号没开出"}
	}

	room.IsGameStarted = false
	room.IsGameFinished = true
	room.CancelDraw()

	return ClaimResult{
		Ok:         true,
		PlayerName: player.Name,
		UserID:     player.UserID,
		ConnID:     player.ConnectionID,
		Reward:     room.WinReward,
	}
}

// ResetRoom 收局后清场：玩家全部离场，房间回到待开状态。
// 返回被清走的玩家连接，hub 用来清索引。
func ResetRoom(room *entities.LotoRoom) []string {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	room.CancelDraw()
	connIDs := make([]string, 0, len(room.Players))
	for _, p := range room.Players {
		connIDs = append(connIDs, p.ConnectionID)
	}
	room.Players = nil
	room.NumbersQueue = nil
	room.DrawnNumbers = make(map[int]bool)
	room.IsGameStarted = false
	room.IsGameFinished = false
	return connIDs
}

func playerInfosLocked(room *entities.LotoRoom) []dto.LotoPlayerInfo {
	infos := make([]dto.LotoPlayerInfo, 0, len(room.Players))
	for _, p := range room.Players {
		rows := make([]int, 0, len(p.CompletedRows))
		for row := range p.CompletedRows {
			rows = append(rows, row)
		}
		infos = append(infos, dto.LotoPlayerInfo{
			UserID:        p.UserID,
			Name:          p.Name,
			CompletedRows: rows,
		})
	}
	return infos
}
