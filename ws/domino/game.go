package domino

import (
	"blog-game/dto"
	"blog-game/entities"
)

// 对局引擎：所有函数自己拿房间锁，只改内存状态、不做任何 I/O，
// 返回的快照给 hub 在锁外广播用。

// CheckSeat 入场资格检查（开局状态、容量、密码、重复入座）
func CheckSeat(room *entities.DominoRoom, userID int, password string) (string, bool) {
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

// CommitSeat 扣费成功后正式入座。扣费发生在锁外，
// 期间座位可能被抢走，所以这里重新检查，失败由调用方退款。
func CommitSeat(room *entities.DominoRoom, player *entities.DominoPlayer) bool {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	if room.IsGameStarted || room.IsFull() || room.GetPlayerByUserID(player.UserID) != nil {
		return false
	}
	player.Status = entities.StatusWaiting
	room.Players = append(room.Players, player)
	return true
}

// RoundSnapshot 新一轮开局后的状态快照
type RoundSnapshot struct {
	Round         int
	Hands         map[string][]entities.DominoTile // 连接ID -> 手牌，逐个私发
	Players       []dto.DominoPlayerInfo
	CurrentConnID string
	CurrentName   string
	StockCount    int
}

// StartRound 发牌开新一轮；最小对牌持有者先手
func StartRound(room *entities.DominoRoom) RoundSnapshot {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	stock, hands := entities.DealDominoTiles(len(room.Players), room.GameType.TilesPerPlayer())
	room.Stock = stock
	for i, p := range room.Players {
		p.Hand = hands[i]
		p.Status = entities.StatusPlaying
		p.HasPassed = false
	}
	room.Chain = entities.DominoChain{}
	room.CurrentRound++
	room.IsRoundFinished = false
	room.RoundWinner = nil
	if !room.IsGameStarted {
		// 彩池按开局时交过入场费的人头算，中途有人走也不缩水
		room.PotCount = len(room.Players)
	}
	room.IsGameStarted = true
	room.CurrentPlayerIndex = entities.FindSmallestDoubleIndex(room.Players)
	markTurnLocked(room)

	snap := RoundSnapshot{
		Round:      room.CurrentRound,
		Hands:      make(map[string][]entities.DominoTile, len(room.Players)),
		StockCount: len(room.Stock),
	}
	for _, p := range room.Players {
		snap.Hands[p.ConnectionID] = append([]entities.DominoTile{}, p.Hand...)
	}
	snap.Players = playerInfosLocked(room)
	if cur := room.GetCurrentPlayer(); cur != nil {
		snap.CurrentConnID = cur.ConnectionID
		snap.CurrentName = cur.Name
	}
	return snap
}

// PlaceResult 出牌结果
type PlaceResult struct {
	Ok     bool
	Reason string

	Tile       entities.DominoTile
	Side       string
	PlayerName string
	TileCount  int
	StockCount int

	NextConnID string
	NextName   string

	RoundOver    bool
	GameOver     bool
	WinnerConnID string
	WinnerUserID int
	WinnerName   string
	RoundPoints  int
	Reward       int64
	Players      []dto.DominoPlayerInfo
}

// PlaceTile 当前玩家把手牌接到链的一端
func PlaceTile(room *entities.DominoRoom, connectionID, tileID, side string) PlaceResult {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	if !room.IsGameStarted || room.IsRoundFinished {
		return PlaceResult{Reason: "本轮还没开始"}
	}
	player := room.GetPlayer(connectionID)
	if player == nil {
		return PlaceResult{Reason: "你不在这个房间里"}
	}
	if room.CurrentPlayerID() != connectionID {
		return PlaceResult{Reason: "还没轮到你出牌"}
	}

	var tile entities.DominoTile
	found := false
	for _, t := range player.Hand {
		if t.ID == tileID {
			tile = t
			found = true
			break
		}
	}
	if !found {
		return PlaceResult{Reason: "手牌里没有这张牌"}
	}

	canLeft, canRight := room.Chain.CanPlace(tile)
	switch side {
	case "left":
		if !canLeft {
			return PlaceResult{Reason: "这张牌接不上左端"}
		}
	case "right":
		if !canRight {
			return PlaceResult{Reason: "这张牌接不上右端"}
		}
	default:
		return PlaceResult{Reason: "无效的出牌方向"}
	}

	player.RemoveTile(tileID)
	if side == "left" {
		room.Chain.AddLeft(tile, false)
	} else {
		room.Chain.AddRight(tile, false)
	}
	player.HasPassed = false

	res := PlaceResult{
		Ok:         true,
		Tile:       tile,
		Side:       side,
		PlayerName: player.Name,
		TileCount:  len(player.Hand),
		StockCount: len(room.Stock),
	}

	if len(player.Hand) == 0 {
		finishRoundLocked(room, player, &res)
		return res
	}

	room.NextTurn()
	markTurnLocked(room)
	if next := room.GetCurrentPlayer(); next != nil {
		res.NextConnID = next.ConnectionID
		res.NextName = next.Name
	}
	return res
}

// markTurnLocked 当前回合玩家标为playing，其余waiting/passed
func markTurnLocked(room *entities.DominoRoom) {
	for i, p := range room.Players {
		switch {
		case p.HasPassed:
			p.Status = entities.StatusPassed
		case i == room.CurrentPlayerIndex:
			p.Status = entities.StatusPlaying
		default:
			p.Status = entities.StatusWaiting
		}
	}
}

// DrawResult 摸牌/过牌结果
type DrawResult struct {
	Ok     bool
	Reason string

	Drew       bool
	Tile       entities.DominoTile // 只私发给摸牌的人
	Passed     bool
	PlayerName string
	TileCount  int
	StockCount int

	NextConnID string
	NextName   string

	RoundOver    bool
	GameOver     bool
	WinnerConnID string
	WinnerUserID int
	WinnerName   string
	RoundPoints  int
	Reward       int64
	Players      []dto.DominoPlayerInfo
}

// DrawFromStock 没牌可出时才能摸牌；牌库空了就过牌，
// 全员都过牌则流局，手牌点数最小者赢下本轮。
func DrawFromStock(room *entities.DominoRoom, connectionID string) DrawResult {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	if !room.IsGameStarted || room.IsRoundFinished {
		return DrawResult{Reason: "本轮还没开始"}
	}
	player := room.GetPlayer(connectionID)
	if player == nil {
		return DrawResult{Reason: "你不在这个房间里"}
	}
	if room.CurrentPlayerID() != connectionID {
		return DrawResult{Reason: "还没轮到你"}
	}

	for _, t := range player.Hand {
		if l, r := room.Chain.CanPlace(t); l || r {
			return DrawResult{Reason: "你有牌可出，不能摸牌"}
		}
	}

	res := DrawResult{
		Ok:         true,
		PlayerName: player.Name,
	}

	if len(room.Stock) > 0 {
		tile := room.Stock[0]
		room.Stock = room.Stock[1:]
		player.Hand = append(player.Hand, tile)
		res.Drew = true
		res.Tile = tile
		res.TileCount = len(player.Hand)
		res.StockCount = len(room.Stock)
		// 摸完还是本人的回合，继续出牌或继续摸
		return res
	}

	// 牌库空，过牌
	player.HasPassed = true
	player.Status = entities.StatusPassed
	res.Passed = true
	res.TileCount = len(player.Hand)

	allPassed := true
	for _, p := range room.Players {
		if !p.HasPassed {
			allPassed = false
			break
		}
	}
	if allPassed {
		winner := room.Players[0]
		for _, p := range room.Players[1:] {
			if p.HandValue() < winner.HandValue() {
				winner = p
			}
		}
		var pr PlaceResult
		finishRoundLocked(room, winner, &pr)
		res.RoundOver = pr.RoundOver
		res.GameOver = pr.GameOver
		res.WinnerConnID = pr.WinnerConnID
		res.WinnerUserID = pr.WinnerUserID
		res.WinnerName = pr.WinnerName
		res.RoundPoints = pr.RoundPoints
		res.Reward = pr.Reward
		res.Players = pr.Players
		return res
	}

	room.NextTurn()
	markTurnLocked(room)
	if next := room.GetCurrentPlayer(); next != nil {
		res.NextConnID = next.ConnectionID
		res.NextName = next.Name
	}
	return res
}

// finishRoundLocked 结算一轮：赢家拿走其他人手牌点数之和，
// 累计分到 101 即整局结束。调用方必须已持锁。
func finishRoundLocked(room *entities.DominoRoom, winner *entities.DominoPlayer, res *PlaceResult) {
	points := 0
	for _, p := range room.Players {
		if p != winner {
			points += p.HandValue()
		}
	}
	winner.Score += points
	winner.Status = entities.StatusFinished
	room.IsRoundFinished = true
	room.RoundWinner = winner

	res.RoundOver = true
	res.WinnerConnID = winner.ConnectionID
	res.WinnerUserID = winner.UserID
	res.WinnerName = winner.Name
	res.RoundPoints = points
	res.Players = playerInfosLocked(room)

	if winner.Score >= 101 {
		res.GameOver = true
		res.Reward = room.EntryFee * int64(room.PotCount)
		room.IsGameStarted = false
	}
}

// RebindSnapshot 换绑连接后的全量状态，补发给重进的玩家
type RebindSnapshot struct {
	Ok        bool
	OldConnID string
	Name      string

	Started     bool
	Round       int
	Hand        []entities.DominoTile
	Chain       []entities.DominoTile
	StockCount  int
	Players     []dto.DominoPlayerInfo
	CurrentName string
	YourTurn    bool
}

// Rebind 已入座用户换了连接再进来：座位绑到新连接，
// 手牌、回合、分数原样保留，不再收入场费。
func Rebind(room *entities.DominoRoom, userID int, connectionID string) RebindSnapshot {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	player := room.GetPlayerByUserID(userID)
	if player == nil {
		return RebindSnapshot{}
	}
	old := player.ConnectionID
	player.ConnectionID = connectionID

	snap := RebindSnapshot{
		Ok:         true,
		OldConnID:  old,
		Name:       player.Name,
		Started:    room.IsGameStarted,
		Round:      room.CurrentRound,
		Hand:       append([]entities.DominoTile{}, player.Hand...),
		Chain:      append([]entities.DominoTile{}, room.Chain.Tiles...),
		StockCount: len(room.Stock),
		Players:    playerInfosLocked(room),
	}
	if cur := room.GetCurrentPlayer(); cur != nil {
		snap.CurrentName = cur.Name
		snap.YourTurn = cur.ConnectionID == connectionID
	}
	return snap
}

// LeaveResult 离场处理结果
type LeaveResult struct {
	Left       bool
	PlayerName string
	UserID     int
	Refund     bool // 没开局，入场费要退
	Empty      bool
	NextName   string

	Walkover     bool
	WinnerConnID string
	WinnerUserID int
	WinnerName   string
	Reward       int64
	Players      []dto.DominoPlayerInfo
}

// RemovePlayer 把玩家移出座位。离场者后面的座位整体前移，
// 当前回合指针跟着对齐；轮到离场者自己时顺延给下一家。
// 开局后只剩一人时剩下的人不战而胜，拿走整个彩池。
func RemovePlayer(room *entities.DominoRoom, connectionID string) LeaveResult {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	player := room.GetPlayer(connectionID)
	if player == nil {
		return LeaveResult{}
	}
	started := room.IsGameStarted

	var curConnID string
	if cur := room.GetCurrentPlayer(); cur != nil {
		curConnID = cur.ConnectionID
	}

	removedIdx := -1
	for i, p := range room.Players {
		if p.ConnectionID == connectionID {
			removedIdx = i
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			break
		}
	}

	res := LeaveResult{
		Left:       true,
		PlayerName: player.Name,
		UserID:     player.UserID,
		Refund:     !started,
		Empty:      len(room.Players) == 0,
	}
	if res.Empty {
		return res
	}

	if curConnID == connectionID {
		if removedIdx >= len(room.Players) {
			room.CurrentPlayerIndex = 0
		} else {
			room.CurrentPlayerIndex = removedIdx
		}
	} else {
		for i, p := range room.Players {
			if p.ConnectionID == curConnID {
				room.CurrentPlayerIndex = i
				break
			}
		}
	}

	if started {
		if len(room.Players) == 1 {
			w := room.Players[0]
			res.Walkover = true
			res.WinnerConnID = w.ConnectionID
			res.WinnerUserID = w.UserID
			res.WinnerName = w.Name
			res.Reward = room.EntryFee * int64(room.PotCount)
			room.IsGameStarted = false
			room.IsRoundFinished = true
		} else {
			markTurnLocked(room)
			if cur := room.GetCurrentPlayer(); cur != nil {
				res.NextName = cur.Name
			}
		}
	}
	res.Players = playerInfosLocked(room)
	return res
}

// ResetGame 整局结束后清场，玩家留在座位上等下一局
func ResetGame(room *entities.DominoRoom) {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	room.IsGameStarted = false
	room.IsRoundFinished = false
	room.RoundWinner = nil
	room.CurrentRound = 0
	room.CurrentPlayerIndex = 0
	room.PotCount = 0
	room.Chain = entities.DominoChain{}
	room.Stock = nil
	for _, p := range room.Players {
		p.Hand = nil
		p.Score = 0
		p.HasPassed = false
		p.Status = entities.StatusWaiting
	}
}

func playerInfosLocked(room *entities.DominoRoom) []dto.DominoPlayerInfo {
	infos := make([]dto.DominoPlayerInfo, 0, len(room.Players))
	for _, p := range room.Players {
		infos = append(infos, dto.DominoPlayerInfo{
			UserID:    p.UserID,
			Name:      p.Name,
			TileCount: len(p.Hand),
			Score:     p.Score,
			HasPassed: p.HasPassed,
		})
	}
	return infos
}
