package okey

import (
	"blog-game/dto"
	"blog-game/entities"
)

// 对局引擎：锁内改状态、不做 I/O，快照给 hub 锁外广播。
// 回合规则：摸一张（牌库头或弃牌堆顶）再打一张；
// 手牌 14 张时只能摸，15 张时只能打。

// CheckSeat 入场资格检查
func CheckSeat(room *entities.OkeyRoom, userID int, password string) (string, bool) {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	switch {
	case room.IsGameStarted:
		return "游戏已经开始", false
	case room.IsFull():
		return "房间已满", false
	case room.IsPrivate && room.Password != password:
		return "房间密码错误", false
	case room.GetPlayerByUserID(userID) != nil:
		return "你已经在这个房间里", false
	}
	return "", true
}

// CommitSeat 扣费后占座；返回是否入座成功、房间是否因此坐满
func CommitSeat(room *entities.OkeyRoom, player *entities.OkeyPlayer) (seated, becameFull bool) {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	if room.IsGameStarted || room.IsFull() || room.GetPlayerByUserID(player.UserID) != nil {
		return false, false
	}
	room.Players = append(room.Players, player)
	return true, room.IsFull()
}

// GameSnapshot 开局快照
type GameSnapshot struct {
	Hands         map[string][]entities.OkeyTile
	Indicator     entities.OkeyTile
	StockCount    int
	CurrentConnID string
	CurrentName   string
	Players       []dto.OkeyPlayerInfo
}

// StartGame 发牌开局；4 人坐满才能开，先手随机
func StartGame(room *entities.OkeyRoom) (GameSnapshot, bool) {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	if !room.CanStartGame() {
		return GameSnapshot{}, false
	}

	stock, hands, startIndex := entities.DealOkeyTiles()
	room.Stock = stock
	room.DiscardPile = nil
	for i, p := range room.Players {
		p.Hand = hands[i]
		p.SortHand()
	}
	indicator := entities.SelectIndicator(room.Stock)
	room.Indicator = &indicator
	room.CurrentPlayerIndex = startIndex
	room.IsGameStarted = true
	room.IsGameFinished = false
	room.Winner = nil

	snap := GameSnapshot{
		Hands:      make(map[string][]entities.OkeyTile, len(room.Players)),
		Indicator:  indicator,
		StockCount: len(room.Stock),
		Players:    playerInfosLocked(room),
	}
	for _, p := range room.Players {
		snap.Hands[p.ConnectionID] = append([]entities.OkeyTile{}, p.Hand...)
	}
	if cur := room.GetCurrentPlayer(); cur != nil {
		snap.CurrentConnID = cur.ConnectionID
		snap.CurrentName = cur.Name
	}
	return snap, true
}

// MoveResult 摸牌/打牌结果
type MoveResult struct {
	Ok     bool
	Reason string

	Tile         entities.OkeyTile
	PlayerName   string
	HandCount    int
	StockCount   int
	DiscardCount int

	NextConnID string
	NextName   string

	// 牌库摸空，整局流局
	GameDrawn bool

	// 打出这张后剩余14张恰好成牌，直接胡
	Won bool
	Win WinResult
}

// DrawFromStock 从牌库头摸牌；牌库已空则整局流局
func DrawFromStock(room *entities.OkeyRoom, connectionID string) MoveResult {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	player, res := checkTurnLocked(room, connectionID)
	if player == nil {
		return res
	}
	if len(player.Hand) != 14 {
		return MoveResult{Reason: "你已经摸过牌了，请先打出一张"}
	}

	if len(room.Stock) == 0 {
		room.IsGameStarted = false
		room.IsGameFinished = true
		return MoveResult{Ok: true, GameDrawn: true, PlayerName: player.Name}
	}

	tile := room.Stock[0]
	room.Stock = room.Stock[1:]
	player.Hand = append(player.Hand, tile)
	player.SortHand()

	return MoveResult{
		Ok:         true,
		Tile:       tile,
		PlayerName: player.Name,
		HandCount:  len(player.Hand),
		StockCount: len(room.Stock),
	}
}

// DrawFromDiscard 捡上家打出的牌（弃牌堆顶）
func DrawFromDiscard(room *entities.OkeyRoom, connectionID string) MoveResult {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	player, res := checkTurnLocked(room, connectionID)
	if player == nil {
		return res
	}
	if len(player.Hand) != 14 {
		return MoveResult{Reason: "你已经摸过牌了，请先打出一张"}
	}
	if len(room.DiscardPile) == 0 {
		return MoveResult{Reason: "弃牌堆是空的"}
	}

	tile := room.DiscardPile[len(room.DiscardPile)-1]
	room.DiscardPile = room.DiscardPile[:len(room.DiscardPile)-1]
	player.Hand = append(player.Hand, tile)
	player.SortHand()

	return MoveResult{
		Ok:           true,
		Tile:         tile,
		PlayerName:   player.Name,
		HandCount:    len(player.Hand),
		DiscardCount: len(room.DiscardPile),
	}
}

// Discard 打出一张牌进弃牌堆，回合转给下家
func Discard(room *entities.OkeyRoom, connectionID, tileID string) MoveResult {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	player, res := checkTurnLocked(room, connectionID)
	if player == nil {
		return res
	}
	if len(player.Hand) != 15 {
		return MoveResult{Reason: "请先摸一张牌"}
	}

	tile, ok := player.RemoveTile(tileID)
	if !ok {
		return MoveResult{Reason: "手牌里没有这张牌"}
	}
	room.DiscardPile = append(room.DiscardPile, tile)

	// 打完剩14张正好成牌就是胡牌打出，整局结束
	if entities.CheckOkeyWin(player.Hand) {
		room.IsGameStarted = false
		room.IsGameFinished = true
		room.Winner = player
		return MoveResult{
			Ok:           true,
			Tile:         tile,
			PlayerName:   player.Name,
			HandCount:    len(player.Hand),
			DiscardCount: len(room.DiscardPile),
			Won:          true,
			Win: WinResult{
				Ok:           true,
				WinnerConnID: player.ConnectionID,
				WinnerUserID: player.UserID,
				WinnerName:   player.Name,
				Hand:         append([]entities.OkeyTile{}, player.Hand...),
				Reward:       room.EntryFee * int64(entities.OkeySeats),
				Players:      playerInfosLocked(room),
			},
		}
	}

	room.NextTurn()

	out := MoveResult{
		Ok:           true,
		Tile:         tile,
		PlayerName:   player.Name,
		HandCount:    len(player.Hand),
		StockCount:   len(room.Stock),
		DiscardCount: len(room.DiscardPile),
	}
	if next := room.GetCurrentPlayer(); next != nil {
		out.NextConnID = next.ConnectionID
		out.NextName = next.Name
	}
	return out
}

// WinResult 胡牌判定结果
type WinResult struct {
	Ok     bool
	Reason string

	WinnerConnID string
	WinnerUserID int
	WinnerName   string
	Hand         []entities.OkeyTile
	Reward       int64
	Players      []dto.OkeyPlayerInfo
}

// DeclareWin 宣告胡牌：必须在自己回合、手牌恰好 14 张且满足牌型。
// 判定失败不改动任何状态。
func DeclareWin(room *entities.OkeyRoom, connectionID string) WinResult {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	if !room.IsGameStarted || room.IsGameFinished {
		return WinResult{Reason: "游戏未在进行中"}
	}
	player := room.GetPlayer(connectionID)
	if player == nil {
		return WinResult{Reason: "你不在这个房间里"}
	}
	if room.CurrentPlayerID() != connectionID {
		return WinResult{Reason: "还没轮到你"}
	}
	if len(player.Hand) != 14 {
		return WinResult{Reason: "手牌必须是14张才能宣告胡牌"}
	}
	if !entities.CheckOkeyWin(player.Hand) {
		return WinResult{Reason: "牌型不满足胡牌条件"}
	}

	room.IsGameStarted = false
	room.IsGameFinished = true
	room.Winner = player

	return WinResult{
		Ok:           true,
		WinnerConnID: player.ConnectionID,
		WinnerUserID: player.UserID,
		WinnerName:   player.Name,
		Hand:         append([]entities.OkeyTile{}, player.Hand...),
		Reward:       room.EntryFee * int64(entities.OkeySeats),
		Players:      playerInfosLocked(room),
	}
}

// Seated 当前在座玩家的 (userID, connectionID) 快照，退款/广播用
type Seated struct {
	UserID       int
	ConnectionID string
	Name         string
}

// CancelGame 对局作废（有人中途掉线）：清空牌局，座位全部释放，
// 返回需要退款的玩家名单
func CancelGame(room *entities.OkeyRoom) []Seated {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	seated := make([]Seated, 0, len(room.Players))
	for _, p := range room.Players {
		seated = append(seated, Seated{UserID: p.UserID, ConnectionID: p.ConnectionID, Name: p.Name})
	}

	room.Players = nil
	room.Stock = nil
	room.DiscardPile = nil
	room.Indicator = nil
	room.CurrentPlayerIndex = 0
	room.IsGameStarted = false
	room.IsGameFinished = false
	room.Winner = nil
	return seated
}

// ResetGame 胡牌结算后清场，玩家留在座位上等下一局
func ResetGame(room *entities.OkeyRoom) {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	room.Stock = nil
	room.DiscardPile = nil
	room.Indicator = nil
	room.CurrentPlayerIndex = 0
	room.IsGameStarted = false
	room.IsGameFinished = false
	room.Winner = nil
	for _, p := range room.Players {
		p.Hand = nil
	}
}

func checkTurnLocked(room *entities.OkeyRoom, connectionID string) (*entities.OkeyPlayer, MoveResult) {
	if !room.IsGameStarted || room.IsGameFinished {
		return nil, MoveResult{Reason: "游戏未在进行中"}
	}
	player := room.GetPlayer(connectionID)
	if player == nil {
		return nil, MoveResult{Reason: "你不在这个房间里"}
	}
	if room.CurrentPlayerID() != connectionID {
		return nil, MoveResult{Reason: "还没轮到你"}
	}
	return player, MoveResult{}
}

func playerInfosLocked(room *entities.OkeyRoom) []dto.OkeyPlayerInfo {
	infos := make([]dto.OkeyPlayerInfo, 0, len(room.Players))
	for seat, p := range room.Players {
		infos = append(infos, dto.OkeyPlayerInfo{
			UserID:    p.UserID,
			Name:      p.Name,
			Seat:      seat,
			TileCount: len(p.Hand),
		})
	}
	return infos
}
