package okey

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
	autoStartDelay = 2 * time.Second
	gameResetDelay = 8 * time.Second
)

// Hub Okey 游戏的 WebSocket 入口
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

// HandleConnection 处理 /ws/okey?token=xxx
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
	zap.S().Infof("🎮 Okey连接建立: %s (用户%d)", client.Name, userID)

	client.Send(ws.BuildMessage("UserData", map[string]interface{}{
		"userId":       user.ID,
		"name":         user.FullName(),
		"balance":      user.Balance,
		"connectionId": client.ID,
	}))

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
		var req dto.OkeyCreateRoomRequest
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
		var req dto.OkeyJoinRoomRequest
		if err := ws.DecodePayload(env.Data, &req); err != nil {
			client.Send(ws.ErrorMessage("JoinError", "请求格式错误"))
			return
		}
		h.handleJoinRoom(client, req)
	case "LeaveRoom":
		h.leaveRoom(client)
	case "DrawFromStock":
		h.handleDraw(client, true)
	case "DrawFromDiscard":
		h.handleDraw(client, false)
	case "DiscardTile":
		var req dto.OkeyDiscardRequest
		if err := ws.DecodePayload(env.Data, &req); err != nil {
			client.Send(ws.ErrorMessage("MoveError", "请求格式错误"))
			return
		}
		h.handleDiscard(client, req)
	case "DeclareWin":
		h.handleDeclareWin(client)
	case "GetGameState":
		h.handleGetGameState(client)
	default:
		client.Send(ws.ErrorMessage("Error", "未知的消息类型: "+env.Type))
	}
}

func (h *Hub) handleCreateRoom(client *ws.Client, req dto.OkeyCreateRoomRequest) {
	if _, inRoom := h.index.Get(client.ID); inRoom {
		client.Send(ws.ErrorMessage("JoinError", "请先离开当前房间"))
		return
	}

	room := h.manager.CreateRoom(req, client.UserID, client.Name)
	if !h.admit(client, room, req.Password, "JoinError") {
		h.manager.DeleteRoom(room.RoomID)
		return
	}

	zap.S().Infof("🏠 Okey房间创建: %s (%s)", room.RoomName, room.RoomID)
	client.Send(ws.BuildMessage("OkeyRoomCreated", h.roomStateMessage(room)))
	h.broadcastLobby(ws.BuildMessage("OkeyRoomCreated", map[string]interface{}{
		"roomId":   room.RoomID,
		"roomName": room.RoomName,
	}))
}

func (h *Hub) handleJoinRoom(client *ws.Client, req dto.OkeyJoinRoomRequest) {
	room, ok := h.manager.GetRoom(req.RoomID)
	if !ok {
		client.Send(ws.ErrorMessage("JoinError", "房间不存在"))
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

// admit 扣费入座；坐满第4人后延时自动开局
func (h *Hub) admit(client *ws.Client, room *entities.OkeyRoom, password, errType string) bool {
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

	player := &entities.OkeyPlayer{
		ConnectionID: client.ID,
		UserID:       client.UserID,
		Name:         client.Name,
	}
	seated, becameFull := CommitSeat(room, player)
	if !seated {
		if _, err := h.accounts.Credit(context.Background(), client.UserID, room.EntryFee); err != nil {
			zap.S().Errorf("占座失败后退款失败, 用户%d: %v", client.UserID, err)
		}
		client.Send(ws.ErrorMessage(errType, "手慢了，座位已被抢走"))
		return false
	}

	h.index.Set(client.ID, room.RoomID)
	client.Send(ws.BuildMessage("BalanceUpdated", map[string]interface{}{"balance": balance}))

	if becameFull {
		time.AfterFunc(autoStartDelay, func() { h.autoStart(room) })
	}
	return true
}

// autoStart 4人坐满后自动开局；期间有人退了就作罢
func (h *Hub) autoStart(room *entities.OkeyRoom) {
	if _, ok := h.manager.GetRoom(room.RoomID); !ok {
		return
	}
	snap, ok := StartGame(room)
	if !ok {
		return
	}
	zap.S().Infof("🎮 Okey开局: %s", room.RoomID)

	for connID, hand := range snap.Hands {
		h.registry.SendTo(connID, ws.BuildMessage("GameStarted", map[string]interface{}{
			"hand":          hand,
			"indicator":     snap.Indicator,
			"stockCount":    snap.StockCount,
			"players":       snap.Players,
			"currentPlayer": snap.CurrentName,
			"yourTurn":      connID == snap.CurrentConnID,
		}))
	}
}

func (h *Hub) handleDraw(client *ws.Client, fromStock bool) {
	room, ok := h.roomOf(client)
	if !ok {
		client.Send(ws.ErrorMessage("MoveError", "你不在任何房间里"))
		return
	}

	var res MoveResult
	if fromStock {
		res = DrawFromStock(room, client.ID)
	} else {
		res = DrawFromDiscard(room, client.ID)
	}
	if !res.Ok {
		client.Send(ws.ErrorMessage("MoveError", res.Reason))
		return
	}

	if res.GameDrawn {
		zap.S().Infof("🤝 Okey流局(牌库摸空): %s", room.RoomID)
		h.refundAndClose(room, "牌库已空，本局流局")
		return
	}

	if fromStock {
		// 牌库摸的牌只给本人看
		client.Send(ws.BuildMessage("TileDrawn", map[string]interface{}{
			"tile":       res.Tile,
			"handCount":  res.HandCount,
			"stockCount": res.StockCount,
		}))
		h.broadcastRoom(room, ws.BuildMessage("TileDrawn", map[string]interface{}{
			"playerName": res.PlayerName,
			"stockCount": res.StockCount,
		}))
		return
	}

	// 捡弃牌是公开动作
	h.broadcastRoom(room, ws.BuildMessage("TileDrawnFromDiscard", map[string]interface{}{
		"tile":         res.Tile,
		"playerName":   res.PlayerName,
		"discardCount": res.DiscardCount,
	}))
}

// handleGetGameState 全量状态重发，客户端漏帧后用来对齐
func (h *Hub) handleGetGameState(client *ws.Client) {
	room, ok := h.roomOf(client)
	if !ok {
		client.Send(ws.ErrorMessage("MoveError", "你不在任何房间里"))
		return
	}

	room.StateLock.Lock()
	state := map[string]interface{}{
		"roomId":       room.RoomID,
		"isStarted":    room.IsGameStarted,
		"stockCount":   len(room.Stock),
		"discardCount": len(room.DiscardPile),
		"players":      playerInfosLocked(room),
	}
	if room.Indicator != nil {
		state["indicator"] = *room.Indicator
	}
	if cur := room.GetCurrentPlayer(); cur != nil {
		state["currentPlayer"] = cur.Name
		state["yourTurn"] = cur.ConnectionID == client.ID
	}
	if len(room.DiscardPile) > 0 {
		state["topDiscard"] = room.DiscardPile[len(room.DiscardPile)-1]
	}
	if p := room.GetPlayer(client.ID); p != nil {
		state["hand"] = append([]entities.OkeyTile{}, p.Hand...)
	}
	room.StateLock.Unlock()

	client.Send(ws.BuildMessage("GameState", state))
}

func (h *Hub) handleDiscard(client *ws.Client, req dto.OkeyDiscardRequest) {
	room, ok := h.roomOf(client)
	if !ok {
		client.Send(ws.ErrorMessage("MoveError", "你不在任何房间里"))
		return
	}

	res := Discard(room, client.ID, req.TileID)
	if !res.Ok {
		client.Send(ws.ErrorMessage("MoveError", res.Reason))
		return
	}

	h.broadcastRoom(room, ws.BuildMessage("TileDiscarded", map[string]interface{}{
		"tile":         res.Tile,
		"playerName":   res.PlayerName,
		"discardCount": res.DiscardCount,
		"nextPlayer":   res.NextName,
	}))

	// 打出去剩14张恰好成牌，直接胡
	if res.Won {
		h.settleWin(room, res.Win)
	}
}

func (h *Hub) handleDeclareWin(client *ws.Client) {
	room, ok := h.roomOf(client)
	if !ok {
		client.Send(ws.ErrorMessage("WinError", "你不在任何房间里"))
		return
	}

	res := DeclareWin(room, client.ID)
	if !res.Ok {
		client.Send(ws.ErrorMessage("WinError", res.Reason))
		return
	}
	h.settleWin(room, res)
}

// settleWin 派彩、公告、延时重开
func (h *Hub) settleWin(room *entities.OkeyRoom, res WinResult) {
	balance, err := h.accounts.Credit(context.Background(), res.WinnerUserID, res.Reward)
	if err != nil {
		zap.S().Errorf("派彩失败, 用户%d: %v", res.WinnerUserID, err)
	} else {
		h.registry.SendTo(res.WinnerConnID, ws.BuildMessage("BalanceUpdated", map[string]interface{}{
			"balance": balance,
		}))
	}
	zap.S().Infof("🏆 Okey胡牌: %s 胜者 %s 派彩 %d", room.RoomID, res.WinnerName, res.Reward)

	h.broadcastRoom(room, ws.BuildMessage("GameFinished", map[string]interface{}{
		"winnerName": res.WinnerName,
		"winnerId":   res.WinnerUserID,
		"hand":       res.Hand,
		"reward":     res.Reward,
	}))

	time.AfterFunc(gameResetDelay, func() {
		if _, ok := h.manager.GetRoom(room.RoomID); !ok {
			return
		}
		ResetGame(room)
		h.broadcastRoom(room, ws.BuildMessage("GameReset", h.roomStateMessage(room)))
	})
}

// refundAndClose 对局作废：每人退回入场费，座位全部释放
func (h *Hub) refundAndClose(room *entities.OkeyRoom, reason string) {
	seated := CancelGame(room)
	for _, s := range seated {
		balance, err := h.accounts.Credit(context.Background(), s.UserID, room.EntryFee)
		if err != nil {
			zap.S().Errorf("退款失败, 用户%d: %v", s.UserID, err)
			continue
		}
		h.registry.SendTo(s.ConnectionID, ws.BuildMessage("BalanceUpdated", map[string]interface{}{
			"balance": balance,
		}))
	}
	for _, s := range seated {
		h.index.Delete(s.ConnectionID)
		h.registry.SendTo(s.ConnectionID, ws.BuildMessage("GameCancelled", map[string]interface{}{
			"reason": reason,
		}))
	}

	h.manager.DeleteRoom(room.RoomID)
	h.broadcastLobby(ws.BuildMessage("RoomDeleted", map[string]interface{}{
		"roomId": room.RoomID,
	}))
}

// leaveRoom 开局前退房退费；开局后退房视同掉线，整局作废
func (h *Hub) leaveRoom(client *ws.Client) {
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
	player := room.GetPlayer(client.ID)
	if player == nil {
		room.StateLock.Unlock()
		h.index.Delete(client.ID)
		return
	}
	if !started {
		for i, p := range room.Players {
			if p.ConnectionID == client.ID {
				room.Players = append(room.Players[:i], room.Players[i+1:]...)
				break
			}
		}
	}
	empty := len(room.Players) == 0
	room.StateLock.Unlock()

	if started {
		zap.S().Infof("❌ Okey玩家中途离场, 整局作废: %s", client.Name)
		h.refundAndClose(room, client.Name+" 离开了游戏")
		return
	}

	h.index.Delete(client.ID)
	if _, err := h.accounts.Credit(context.Background(), client.UserID, room.EntryFee); err != nil {
		zap.S().Errorf("退房退款失败, 用户%d: %v", client.UserID, err)
	}

	if empty {
		h.manager.DeleteRoom(roomID)
		h.broadcastLobby(ws.BuildMessage("RoomDeleted", map[string]interface{}{
			"roomId": roomID,
		}))
		return
	}
	h.broadcastRoom(room, ws.BuildMessage("PlayerLeft", map[string]interface{}{
		"userId": client.UserID,
		"name":   client.Name,
	}))
	h.broadcastRoom(room, h.playersListMessage(room))
}

func (h *Hub) handleDisconnect(client *ws.Client) {
	h.registry.Remove(client.ID)
	defer client.Close()

	if _, ok := h.index.Get(client.ID); !ok {
		return
	}
	h.leaveRoom(client)
}

func (h *Hub) roomOf(client *ws.Client) (*entities.OkeyRoom, bool) {
	roomID, ok := h.index.Get(client.ID)
	if !ok {
		return nil, false
	}
	return h.manager.GetRoom(roomID)
}

func (h *Hub) broadcastRoom(room *entities.OkeyRoom, msg []byte) {
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

func (h *Hub) playersListMessage(room *entities.OkeyRoom) []byte {
	room.StateLock.Lock()
	infos := playerInfosLocked(room)
	room.StateLock.Unlock()
	return ws.BuildMessage("PlayersList", map[string]interface{}{"players": infos})
}

func (h *Hub) roomStateMessage(room *entities.OkeyRoom) map[string]interface{} {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()
	return map[string]interface{}{
		"roomId":     room.RoomID,
		"roomName":   room.RoomName,
		"entryFee":   room.EntryFee,
		"maxPlayers": entities.OkeySeats,
		"isPrivate":  room.IsPrivate,
		"players":    playerInfosLocked(room),
	}
}
