package domino

import (
	"context"
	"net/http"
	"time"

	"blog-game/dto"
	"blog-game/entities"
	"blog-game/service"
	"blog-game/utils"
	"blog-game/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	roundRestDelay = 5 * time.Second
	gameResetDelay = 8 * time.Second
)

// Hub 多米诺游戏的 WebSocket 入口：连接管理、消息分发、广播。
// 房间状态变更都在引擎函数里锁内完成，这里只做锁外的收发。
type Hub struct {
	manager  *RoomManager
	registry *ws.Registry
	index    *ws.ConnIndex
	accounts service.Accounts
}

func NewHub(manager *RoomManager, accounts service.Accounts) *Hub {
	return &Hub{
		manager:  manager,
		registry: ws.NewRegistry(),
		index:    ws.NewConnIndex(),
		accounts: accounts,
	}
}

// HandleConnection 处理 /ws/domino?token=xxx
func (h *Hub) HandleConnection(c *gin.Context) {
	userID, err := utils.ParseAccessToken(c.Query("token"))
	if err != nil || userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未授权"})
		return
	}
	user, err := h.accounts.Lookup(c.Request.Context(), userID)
	if err != nil {
		zap.S().Warnf("用户[%d]查询失败: %v", userID, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "用户不存在"})
		return
	}

	conn, err := ws.Upgrade(c)
	if err != nil {
		return
	}
	client := ws.NewClient(conn, userID, user.FullName())
	h.registry.Add(client)
	go client.WritePump()
	zap.S().Infof("🎮 多米诺连接建立: %s (用户%d)", client.Name, userID)

	client.Send(ws.BuildMessage("UserData", map[string]interface{}{
		"userId":       user.ID,
		"name":         user.FullName(),
		"balance":      user.Balance,
		"connectionId": client.ID,
	}))

	h.tryReconnect(client)

	for {
		raw, err := client.ReadMessage()
		if err != nil {
			break
		}
		env, err := ws.ParseEnvelope(raw)
		if err != nil {
			client.Send(ws.ErrorMessage("Error", "消息格式错误"))
			continue
		}
		h.dispatch(client, env)
	}

	h.handleDisconnect(client)
}

func (h *Hub) dispatch(client *ws.Client, env ws.Envelope) {
	switch env.Type {
	case "CreateRoom":
		var req dto.DominoCreateRoomRequest
		if err := ws.DecodePayload(env.Data, &req); err != nil {
			client.Send(ws.ErrorMessage("JoinError", "请求格式错误"))
			return
		}
		h.handleCreateRoom(client, req)
	case "GetRoomList":
		client.Send(ws.BuildMessage("RoomList", map[string]interface{}{
			"rooms": h.manager.AvailableRooms(),
		}))
	case "JoinRoom":
		var req dto.DominoJoinRoomRequest
		if err := ws.DecodePayload(env.Data, &req); err != nil {
			client.Send(ws.ErrorMessage("JoinError", "请求格式错误"))
			return
		}
		h.handleJoinRoom(client, req)
	case "LeaveRoom":
		h.leaveRoom(client)
	case "StartGame":
		h.handleStartGame(client)
	case "PlaceTile":
		var req dto.DominoPlaceTileRequest
		if err := ws.DecodePayload(env.Data, &req); err != nil {
			client.Send(ws.ErrorMessage("MoveError", "请求格式错误"))
			return
		}
		h.handlePlaceTile(client, req)
	case "TakeFromStock":
		h.handleTakeFromStock(client)
	default:
		client.Send(ws.ErrorMessage("Error", "未知的消息类型: "+env.Type))
	}
}

func (h *Hub) handleCreateRoom(client *ws.Client, req dto.DominoCreateRoomRequest) {
	if _, inRoom := h.index.Get(client.ID); inRoom {
		client.Send(ws.ErrorMessage("JoinError", "请先离开当前房间"))
		return
	}

	room := h.manager.CreateRoom(req, client.UserID, client.Name)
	if !h.admit(client, room, req.Password, "JoinError") {
		h.manager.DeleteRoom(room.RoomID)
		return
	}

	zap.S().Infof("🏠 多米诺房间创建: %s (%s)", room.RoomName, room.RoomID)
	client.Send(ws.BuildMessage("DominoRoomCreated", h.roomStateMessage(room)))
	// 通知大厅里还没入座的人刷新房间列表
	h.broadcastLobby(ws.BuildMessage("DominoRoomCreated", map[string]interface{}{
		"roomId":   room.RoomID,
		"roomName": room.RoomName,
	}))
}

func (h *Hub) handleJoinRoom(client *ws.Client, req dto.DominoJoinRoomRequest) {
	room, ok := h.manager.GetRoom(req.RoomID)
	if !ok {
		client.Send(ws.ErrorMessage("JoinError", "房间不存在"))
		return
	}
	// 已入座的老用户重进：座位换绑到新连接，不再收费
	if h.rebindSeat(client, room) {
		return
	}
	if !h.admit(client, room, req.Password, "JoinError") {
		return
	}

	client.Send(ws.BuildMessage("JoinedRoom", h.roomStateMessage(room)))
	h.broadcastRoom(room, ws.BuildMessage("PlayerJoined", map[string]interface{}{
		"userId": client.UserID,
		"name":   client.Name,
	}))
	h.broadcastRoom(room, h.playersListMessage(room))
}

// admit 入场三步：锁内资格检查 → 锁外扣入场费 → 锁内占座。
// 扣费期间座位可能被别人抢走，占座失败就退款。
func (h *Hub) admit(client *ws.Client, room *entities.DominoRoom, password, errType string) bool {
	if _, inRoom := h.index.Get(client.ID); inRoom && errType == "JoinError" {
		client.Send(ws.ErrorMessage(errType, "请先离开当前房间"))
		return false
	}
	if reason, ok := CheckSeat(room, client.UserID, password); !ok {
		client.Send(ws.ErrorMessage(errType, reason))
		return false
	}

	balance, ok, err := h.accounts.TryDebit(context.Background(), client.UserID, room.EntryFee)
	if err != nil {
		zap.S().Errorf("入场扣费失败: %v", err)
		client.Send(ws.ErrorMessage(errType, "入场扣费失败"))
		return false
	}
	if !ok {
		client.Send(ws.ErrorMessage(errType, "余额不足"))
		return false
	}

	player := &entities.DominoPlayer{
		ConnectionID: client.ID,
		UserID:       client.UserID,
		Name:         client.Name,
	}
	if !CommitSeat(room, player) {
		if _, err := h.accounts.Credit(context.Background(), client.UserID, room.EntryFee); err != nil {
			zap.S().Errorf("占座失败后退款失败, 用户%d: %v", client.UserID, err)
		}
		client.Send(ws.ErrorMessage(errType, "手慢了，座位已被抢走"))
		return false
	}

	h.index.Set(client.ID, room.RoomID)
	client.Send(ws.BuildMessage("BalanceUpdated", map[string]interface{}{"balance": balance}))
	return true
}

func (h *Hub) handleStartGame(client *ws.Client) {
	room, ok := h.roomOf(client)
	if !ok {
		client.Send(ws.ErrorMessage("MoveError", "你不在任何房间里"))
		return
	}

	room.StateLock.Lock()
	switch {
	case room.IsGameStarted:
		room.StateLock.Unlock()
		client.Send(ws.ErrorMessage("MoveError", "游戏已经开始"))
		return
	case room.CreatorUserID != client.UserID:
		room.StateLock.Unlock()
		client.Send(ws.ErrorMessage("MoveError", "只有房主能开始游戏"))
		return
	case len(room.Players) < 2:
		room.StateLock.Unlock()
		client.Send(ws.ErrorMessage("MoveError", "至少需要2名玩家"))
		return
	}
	room.StateLock.Unlock()

	snap := StartRound(room)
	zap.S().Infof("🎮 多米诺开局: %s 第%d轮", room.RoomID, snap.Round)
	h.broadcastRoundStart(room, "GameStarted", snap)
}

func (h *Hub) handlePlaceTile(client *ws.Client, req dto.DominoPlaceTileRequest) {
	room, ok := h.roomOf(client)
	if !ok {
		client.Send(ws.ErrorMessage("MoveError", "你不在任何房间里"))
		return
	}

	res := PlaceTile(room, client.ID, req.TileID, req.Side)
	if !res.Ok {
		client.Send(ws.ErrorMessage("MoveError", res.Reason))
		return
	}

	h.broadcastRoom(room, ws.BuildMessage("TilePlaced", map[string]interface{}{
		"tile":       res.Tile,
		"side":       res.Side,
		"playerName": res.PlayerName,
		"tileCount":  res.TileCount,
		"nextPlayer": res.NextName,
	}))

	if res.RoundOver {
		h.handleRoundEnd(room, res)
	}
}

func (h *Hub) handleTakeFromStock(client *ws.Client) {
	room, ok := h.roomOf(client)
	if !ok {
		client.Send(ws.ErrorMessage("MoveError", "你不在任何房间里"))
		return
	}

	res := DrawFromStock(room, client.ID)
	if !res.Ok {
		client.Send(ws.ErrorMessage("MoveError", res.Reason))
		return
	}

	if res.Drew {
		// 摸到的牌只发给本人，其他人只看到数量变化
		client.Send(ws.BuildMessage("TileDrawn", map[string]interface{}{
			"tile":       res.Tile,
			"tileCount":  res.TileCount,
			"stockCount": res.StockCount,
		}))
		h.broadcastRoom(room, ws.BuildMessage("TileDrawn", map[string]interface{}{
			"playerName": res.PlayerName,
			"tileCount":  res.TileCount,
			"stockCount": res.StockCount,
		}))
		return
	}

	h.broadcastRoom(room, ws.BuildMessage("PlayerPassed", map[string]interface{}{
		"playerName": res.PlayerName,
		"nextPlayer": res.NextName,
	}))

	if res.RoundOver {
		h.handleRoundEnd(room, PlaceResult{
			RoundOver:    true,
			GameOver:     res.GameOver,
			WinnerConnID: res.WinnerConnID,
			WinnerUserID: res.WinnerUserID,
			WinnerName:   res.WinnerName,
			RoundPoints:  res.RoundPoints,
			Reward:       res.Reward,
			Players:      res.Players,
		})
	}
}

// handleRoundEnd 广播轮次结算；整局结束派彩并定时清场，否则定时开下一轮
func (h *Hub) handleRoundEnd(room *entities.DominoRoom, res PlaceResult) {
	h.broadcastRoom(room, ws.BuildMessage("RoundFinished", map[string]interface{}{
		"winnerName": res.WinnerName,
		"winnerId":   res.WinnerUserID,
		"points":     res.RoundPoints,
		"players":    res.Players,
	}))

	if !res.GameOver {
		time.AfterFunc(roundRestDelay, func() { h.startNextRound(room) })
		return
	}

	balance, err := h.accounts.Credit(context.Background(), res.WinnerUserID, res.Reward)
	if err != nil {
		zap.S().Errorf("派彩失败, 用户%d: %v", res.WinnerUserID, err)
	} else {
		h.registry.SendTo(res.WinnerConnID, ws.BuildMessage("BalanceUpdated", map[string]interface{}{
			"balance": balance,
		}))
	}
	zap.S().Infof("🏆 多米诺整局结束: %s 胜者 %s 派彩 %d", room.RoomID, res.WinnerName, res.Reward)

	h.broadcastRoom(room, ws.BuildMessage("GameFinished", map[string]interface{}{
		"winnerName": res.WinnerName,
		"winnerId":   res.WinnerUserID,
		"reward":     res.Reward,
		"players":    res.Players,
	}))

	time.AfterFunc(gameResetDelay, func() { h.resetRoom(room) })
}

func (h *Hub) startNextRound(room *entities.DominoRoom) {
	if _, ok := h.manager.GetRoom(room.RoomID); !ok {
		return
	}
	room.StateLock.Lock()
	ready := room.IsGameStarted && room.IsRoundFinished && len(room.Players) >= 2
	room.StateLock.Unlock()
	if !ready {
		return
	}

	snap := StartRound(room)
	h.broadcastRoundStart(room, "NewRoundStarted", snap)
}

func (h *Hub) resetRoom(room *entities.DominoRoom) {
	if _, ok := h.manager.GetRoom(room.RoomID); !ok {
		return
	}
	ResetGame(room)
	h.broadcastRoom(room, ws.BuildMessage("GameReset", h.roomStateMessage(room)))
}

// broadcastRoundStart 手牌逐个私发，公共信息带在同一帧里
func (h *Hub) broadcastRoundStart(room *entities.DominoRoom, msgType string, snap RoundSnapshot) {
	for connID, hand := range snap.Hands {
		h.registry.SendTo(connID, ws.BuildMessage(msgType, map[string]interface{}{
			"round":         snap.Round,
			"hand":          hand,
			"players":       snap.Players,
			"currentPlayer": snap.CurrentName,
			"yourTurn":      connID == snap.CurrentConnID,
			"stockCount":    snap.StockCount,
		}))
	}
}

// tryReconnect 同一用户重新连上来时，把座位绑到新连接并补发牌局状态
func (h *Hub) tryReconnect(client *ws.Client) {
	room, ok := h.manager.RoomOfUser(client.UserID)
	if !ok {
		return
	}
	h.rebindSeat(client, room)
}

// rebindSeat 座位换绑 + 补发全量状态；没入座返回false交给正常入场流程
func (h *Hub) rebindSeat(client *ws.Client, room *entities.DominoRoom) bool {
	snap := Rebind(room, client.UserID, client.ID)
	if !snap.Ok {
		return false
	}
	if snap.OldConnID != "" && snap.OldConnID != client.ID {
		h.index.Delete(snap.OldConnID)
	}
	h.index.Set(client.ID, room.RoomID)

	client.Send(ws.BuildMessage("GameState", map[string]interface{}{
		"roomId":        room.RoomID,
		"roomName":      room.RoomName,
		"isStarted":     snap.Started,
		"round":         snap.Round,
		"hand":          snap.Hand,
		"chain":         snap.Chain,
		"stockCount":    snap.StockCount,
		"players":       snap.Players,
		"currentPlayer": snap.CurrentName,
		"yourTurn":      snap.YourTurn,
	}))
	h.broadcastRoom(room, ws.BuildMessage("PlayerReconnected", map[string]interface{}{
		"userId": client.UserID,
		"name":   snap.Name,
	}))
	zap.S().Infof("🔌 多米诺重连: %s -> %s", snap.Name, room.RoomID)
	return true
}

// leaveRoom 主动退房。没开局退还入场费；
// 开局后离场不退费，只剩一人时剩下的人直接赢下整局。
func (h *Hub) leaveRoom(client *ws.Client) {
	roomID, ok := h.index.Delete(client.ID)
	if !ok {
		return
	}
	room, ok := h.manager.GetRoom(roomID)
	if !ok {
		return
	}

	res := RemovePlayer(room, client.ID)
	if !res.Left {
		return
	}

	if res.Refund {
		if _, err := h.accounts.Credit(context.Background(), res.UserID, room.EntryFee); err != nil {
			zap.S().Errorf("退房退款失败, 用户%d: %v", res.UserID, err)
		}
	}

	if res.Empty {
		h.manager.DeleteRoom(roomID)
		h.broadcastLobby(ws.BuildMessage("RoomDeleted", map[string]interface{}{
			"roomId": roomID,
		}))
		return
	}

	h.broadcastRoom(room, ws.BuildMessage("PlayerLeft", map[string]interface{}{
		"userId":     res.UserID,
		"name":       res.PlayerName,
		"nextPlayer": res.NextName,
	}))
	h.broadcastRoom(room, h.playersListMessage(room))

	if res.Walkover {
		balance, err := h.accounts.Credit(context.Background(), res.WinnerUserID, res.Reward)
		if err != nil {
			zap.S().Errorf("派彩失败, 用户%d: %v", res.WinnerUserID, err)
		} else {
			h.registry.SendTo(res.WinnerConnID, ws.BuildMessage("BalanceUpdated", map[string]interface{}{
				"balance": balance,
			}))
		}
		h.broadcastRoom(room, ws.BuildMessage("GameFinished", map[string]interface{}{
			"winnerName": res.WinnerName,
			"winnerId":   res.WinnerUserID,
			"reward":     res.Reward,
			"reason":     "对手全部离场",
		}))
		time.AfterFunc(gameResetDelay, func() { h.resetRoom(room) })
	}
}

// handleDisconnect 连接断开：开局中保留座位等重连，没开局按退房处理
func (h *Hub) handleDisconnect(client *ws.Client) {
	h.registry.Remove(client.ID)
	defer client.Close()

	roomID, ok := h.index.Get(client.ID)
	if !ok {
		return
	}
	room, ok := h.manager.GetRoom(roomID)
	if !ok {
		h.index.Delete(client.ID)
		return
	}

	room.StateLock.Lock()
	started := room.IsGameStarted
	room.StateLock.Unlock()

	if !started {
		h.leaveRoom(client)
		return
	}

	h.index.Delete(client.ID)
	h.broadcastRoom(room, ws.BuildMessage("PlayerDisconnected", map[string]interface{}{
		"userId": client.UserID,
		"name":   client.Name,
	}))
	zap.S().Infof("🔌 多米诺掉线(保留座位): %s", client.Name)
}

func (h *Hub) roomOf(client *ws.Client) (*entities.DominoRoom, bool) {
	roomID, ok := h.index.Get(client.ID)
	if !ok {
		return nil, false
	}
	return h.manager.GetRoom(roomID)
}

func (h *Hub) broadcastRoom(room *entities.DominoRoom, msg []byte) {
	room.StateLock.Lock()
	connIDs := make([]string, 0, len(room.Players))
	for _, p := range room.Players {
		connIDs = append(connIDs, p.ConnectionID)
	}
	room.StateLock.Unlock()

	for _, id := range connIDs {
		h.registry.SendTo(id, msg)
	}
}

// broadcastLobby 发给所有在线但还没入座的连接
func (h *Hub) broadcastLobby(msg []byte) {
	for _, c := range h.registry.All() {
		if _, seated := h.index.Get(c.ID); !seated {
			c.Send(msg)
		}
	}
}

func (h *Hub) playersListMessage(room *entities.DominoRoom) []byte {
	room.StateLock.Lock()
	infos := playerInfosLocked(room)
	room.StateLock.Unlock()
	return ws.BuildMessage("PlayersList", map[string]interface{}{"players": infos})
}

func (h *Hub) roomStateMessage(room *entities.DominoRoom) map[string]interface{} {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()
	return map[string]interface{}{
		"roomId":     room.RoomID,
		"roomName":   room.RoomName,
		"gameType":   string(room.GameType),
		"entryFee":   room.EntryFee,
		"maxPlayers": room.MaxPlayers,
		"isPrivate":  room.IsPrivate,
		"players":    playerInfosLocked(room),
	}
}
