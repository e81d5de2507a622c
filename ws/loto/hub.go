package loto

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

const roomResetDelay = 5 * time.Second

// Hub Loto 游戏的 WebSocket 入口
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

// HandleConnection 处理 /ws/loto?token=xxx
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
	zap.S().Infof("🎮 Loto连接建立: %s (用户%d)", client.Name, userID)

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
		var req dto.LotoCreateRoomRequest
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
		var req dto.LotoJoinRoomRequest
		if err := ws.DecodePayload(env.Data, &req); err != nil {
			client.Send(ws.ErrorMessage("JoinError", "请求格式错误"))
			return
		}
		h.handleJoinRoom(client, req)
	case "LeaveRoom":
		h.leaveRoom(client)
	case "StartGame":
		h.handleStartGame(client)
	case "LineCompleted":
		var req dto.LotoClaimRowRequest
		if err := ws.DecodePayload(env.Data, &req); err != nil {
			client.Send(ws.ErrorMessage("BingoError", "请求格式错误"))
			return
		}
		h.handleClaimRow(client, req)
	case "Bingo":
		h.handleBingo(client)
	default:
		client.Send(ws.ErrorMessage("Error", "未知的消息类型: "+env.Type))
	}
}

func (h *Hub) handleCreateRoom(client *ws.Client, req dto.LotoCreateRoomRequest) {
	if _, inRoom := h.index.Get(client.ID); inRoom {
		client.Send(ws.ErrorMessage("JoinError", "请先离开当前房间"))
		return
	}

	room := h.manager.CreateRoom(req, client.UserID, client.Name)
	if !h.admit(client, room, req.Password, "JoinError") {
		h.manager.DeleteRoom(room.RoomID)
		return
	}

	zap.S().Infof("🏠 Loto房间创建: %s (%s)", room.RoomName, room.RoomID)
	client.Send(ws.BuildMessage("RoomCreated", h.roomStateMessage(room, client.ID)))
	h.broadcastLobby(ws.BuildMessage("RoomCreated", map[string]interface{}{
		"roomId":   room.RoomID,
		"roomName": room.RoomName,
	}))
}

func (h *Hub) handleJoinRoom(client *ws.Client, req dto.LotoJoinRoomRequest) {
	room, ok := h.manager.GetRoom(req.RoomID)
	if !ok {
		client.Send(ws.ErrorMessage("JoinError", "房间不存在"))
		return
	}
	if !h.admit(client, room, req.Password, "JoinError") {
		return
	}

	client.Send(ws.BuildMessage("JoinedRoom", h.roomStateMessage(room, client.ID)))
	h.broadcastRoom(room, ws.BuildMessage("PlayerJoined", map[string]interface{}{
		"userId": client.UserID,
		"name":   client.Name,
	}))
	h.broadcastRoom(room, h.playersListMessage(room))
}

// admit 扣入场费买卡入场
func (h *Hub) admit(client *ws.Client, room *entities.LotoRoom, password, errType string) bool {
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

	player := NewPlayer(client.ID, client.UserID, client.Name)
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

	if reason, ok := StartGame(room, client.UserID); !ok {
		client.Send(ws.ErrorMessage("MoveError", reason))
		return
	}

	zap.S().Infof("🎱 Loto开局: %s", room.RoomID)
	h.broadcastRoom(room, ws.BuildMessage("GameStarted", map[string]interface{}{
		"drawInterval": drawInterval.Seconds(),
	}))
	h.startAutoDraw(room)
}

func (h *Hub) handleClaimRow(client *ws.Client, req dto.LotoClaimRowRequest) {
	room, ok := h.roomOf(client)
	if !ok {
		client.Send(ws.ErrorMessage("BingoError", "你不在任何房间里"))
		return
	}

	res := ClaimRow(room, client.ID, req.Row)
	if !res.Ok {
		client.Send(ws.ErrorMessage("BingoError", res.Reason))
		return
	}
	if res.Duplicate {
		// 已领过这条线，静默确认即可
		client.Send(ws.BuildMessage("LineCompleted", map[string]interface{}{
			"rowIndex":   res.Row,
			"playerName": res.PlayerName,
			"duplicate":  true,
		}))
		return
	}

	balance, err := h.accounts.Credit(context.Background(), res.UserID, res.Reward)
	if err != nil {
		zap.S().Errorf("单线派彩失败, 用户%d: %v", res.UserID, err)
	} else {
		h.registry.SendTo(res.ConnID, ws.BuildMessage("BalanceUpdated", map[string]interface{}{
			"balance": balance,
		}))
	}

	h.broadcastRoom(room, ws.BuildMessage("LineCompleted", map[string]interface{}{
		"rowIndex":   res.Row,
		"playerName": res.PlayerName,
		"userId":     res.UserID,
		"reward":     res.Reward,
	}))
}

func (h *Hub) handleBingo(client *ws.Client) {
	room, ok := h.roomOf(client)
	if !ok {
		client.Send(ws.ErrorMessage("BingoError", "你不在任何房间里"))
		return
	}

	res := ClaimBingo(room, client.ID)
	if !res.Ok {
		client.Send(ws.ErrorMessage("BingoError", res.Reason))
		return
	}

	balance, err := h.accounts.Credit(context.Background(), res.UserID, res.Reward)
	if err != nil {
		zap.S().Errorf("满卡派彩失败, 用户%d: %v", res.UserID, err)
	} else {
		h.registry.SendTo(res.ConnID, ws.BuildMessage("BalanceUpdated", map[string]interface{}{
			"balance": balance,
		}))
	}
	zap.S().Infof("🏆 Loto满卡: %s 胜者 %s 派彩 %d", room.RoomID, res.PlayerName, res.Reward)

	h.broadcastRoom(room, ws.BuildMessage("GameOver", map[string]interface{}{
		"winnerName": res.PlayerName,
		"winnerId":   res.UserID,
		"reward":     res.Reward,
	}))

	time.AfterFunc(roomResetDelay, func() { h.resetRoom(room) })
}

// resetRoom 收局清场：玩家全部离场，房间回到待开状态
func (h *Hub) resetRoom(room *entities.LotoRoom) {
	if _, ok := h.manager.GetRoom(room.RoomID); !ok {
		return
	}

	connIDs := ResetRoom(room)
	for _, id := range connIDs {
		h.index.Delete(id)
		h.registry.SendTo(id, ws.BuildMessage("GameReset", map[string]interface{}{
			"roomId": room.RoomID,
		}))
	}
}

// leaveRoom 开局前退房退费；开局后离场卡作废不退费
func (h *Hub) leaveRoom(client *ws.Client) {
	roomID, ok := h.index.Delete(client.ID)
	if !ok {
		return
	}
	room, ok := h.manager.GetRoom(roomID)
	if !ok {
		return
	}

	room.StateLock.Lock()
	player := room.GetPlayer(client.ID)
	if player == nil {
		room.StateLock.Unlock()
		return
	}
	started := room.IsGameStarted
	for i, p := range room.Players {
		if p.ConnectionID == client.ID {
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			break
		}
	}
	empty := len(room.Players) == 0
	room.StateLock.Unlock()

	if !started {
		if _, err := h.accounts.Credit(context.Background(), player.UserID, room.EntryFee); err != nil {
			zap.S().Errorf("退房退款失败, 用户%d: %v", player.UserID, err)
		}
		if empty {
			h.deleteRoom(roomID)
			return
		}
	} else if empty {
		// 开局后人走光了，停号删房
		h.deleteRoom(roomID)
		return
	}

	h.broadcastRoom(room, ws.BuildMessage("PlayerLeft", map[string]interface{}{
		"userId": player.UserID,
		"name":   player.Name,
	}))
	h.broadcastRoom(room, h.playersListMessage(room))
}

func (h *Hub) handleDisconnect(client *ws.Client) {
	h.registry.Remove(client.ID)
	defer client.Close()
	h.leaveRoom(client)
}

func (h *Hub) deleteRoom(roomID string) {
	h.manager.DeleteRoom(roomID)
	h.broadcastLobby(ws.BuildMessage("RoomDeleted", map[string]interface{}{
		"roomId": roomID,
	}))
}

// broadcastLobby 发给所有在线但还没入座的连接
func (h *Hub) broadcastLobby(msg []byte) {
	for _, c := range h.registry.All() {
		if _, seated := h.index.Get(c.ID); !seated {
			c.Send(msg)
		}
	}
}

func (h *Hub) playersListMessage(room *entities.LotoRoom) []byte {
	room.StateLock.Lock()
	infos := playerInfosLocked(room)
	room.StateLock.Unlock()
	return ws.BuildMessage("PlayersList", map[string]interface{}{"players": infos})
}

func (h *Hub) roomOf(client *ws.Client) (*entities.LotoRoom, bool) {
	roomID, ok := h.index.Get(client.ID)
	if !ok {
		return nil, false
	}
	return h.manager.GetRoom(roomID)
}

func (h *Hub) broadcastRoom(room *entities.LotoRoom, msg []byte) {
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

// roomStateMessage 房间状态；带上收件人自己的卡
func (h *Hub) roomStateMessage(room *entities.LotoRoom, connectionID string) map[string]interface{} {
	room.StateLock.Lock()
	defer room.StateLock.Unlock()

	state := map[string]interface{}{
		"roomId":       room.RoomID,
		"roomName":     room.RoomName,
		"entryFee":     room.EntryFee,
		"lineReward":   room.LineReward,
		"winReward":    room.WinReward,
		"maxPlayers":   room.MaxPlayers,
		"isStarted":    room.IsGameStarted,
		"players":      playerInfosLocked(room),
		"drawnNumbers": drawnListLocked(room),
	}
	if p := room.GetPlayer(connectionID); p != nil {
		state["card"] = p.Card
	}
	return state
}

func drawnListLocked(room *entities.LotoRoom) []int {
	nums := make([]int, 0, len(room.DrawnNumbers))
	for n := range room.DrawnNumbers {
		nums = append(nums, n)
	}
	return nums
}
