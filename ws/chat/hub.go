package chat

import (
	"context"
	"net/http"
	"sync"
	"time"

	"blog-game/dto"
	"blog-game/entities"
	"blog-game/service"
	"blog-game/utils"
	"blog-game/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// presence 一个在线用户（同一用户只保留最新一条连接）
type presence struct {
	client *ws.Client
	user   entities.User
}

// Hub 管理员客服聊天：普通用户和管理员之间的会话，
// 消息落Redis，管理员侧带未读计数。
type Hub struct {
	registry *ws.Registry
	accounts service.Accounts
	history  service.ChatHistory

	mu     sync.RWMutex
	online map[string]*presence // userName -> presence
}

func NewHub(accounts service.Accounts, history service.ChatHistory) *Hub {
	return &Hub{
		registry: ws.NewRegistry(),
		accounts: accounts,
		history:  history,
		online:   make(map[string]*presence),
	}
}

// HandleConnection 处理 /ws/chat?token=xxx
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

	h.mu.Lock()
	h.online[user.UserName] = &presence{client: client, user: user}
	h.mu.Unlock()
	zap.S().Infof("💬 聊天上线: %s (管理员=%v)", user.UserName, user.IsAdmin())

	client.Send(ws.BuildMessage("Connected", map[string]interface{}{
		"userName": user.UserName,
		"fullName": user.FullName(),
		"isAdmin":  user.IsAdmin(),
	}))
	if !user.IsAdmin() {
		h.sendToAdmins(ws.BuildMessage("UserOnline", map[string]interface{}{
			"userName": user.UserName,
			"fullName": user.FullName(),
		}))
	}

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
		h.dispatch(client, user, env)
	}

	h.handleDisconnect(client, user)
}

func (h *Hub) dispatch(client *ws.Client, user entities.User, env ws.Envelope) {
	switch env.Type {
	case "SendMessage":
		var req dto.ChatSendRequest
		if err := ws.DecodePayload(env.Data, &req); err != nil {
			client.Send(ws.ErrorMessage("SendError", "请求格式错误"))
			return
		}
		h.handleSendMessage(client, user, req)
	case "LoadChatHistory":
		var req dto.ChatHistoryRequest
		if err := ws.DecodePayload(env.Data, &req); err != nil {
			client.Send(ws.ErrorMessage("HistoryError", "请求格式错误"))
			return
		}
		h.handleLoadHistory(client, user, req)
	case "GetOnlineUsers":
		h.handleGetOnlineUsers(client, user)
	case "NotifyTyping":
		var req dto.ChatTypingRequest
		if err := ws.DecodePayload(env.Data, &req); err != nil {
			return
		}
		h.handleTyping(user, req)
	default:
		client.Send(ws.ErrorMessage("Error", "未知的消息类型: "+env.Type))
	}
}

// handleSendMessage 落库后投给对端；用户的消息送达所有在线管理员
func (h *Hub) handleSendMessage(client *ws.Client, user entities.User, req dto.ChatSendRequest) {
	if req.Message == "" && req.ImageUrl == "" {
		client.Send(ws.ErrorMessage("SendError", "消息不能为空"))
		return
	}

	msgType := "text"
	if req.ImageUrl != "" {
		msgType = "image"
	}
	msg := entities.ChatMessage{
		Sender:    user.UserName,
		Receiver:  req.Receiver,
		Content:   req.Message,
		ImageUrl:  req.ImageUrl,
		Type:      msgType,
		IsAdmin:   user.IsAdmin(),
		Timestamp: time.Now(),
	}

	// 会话归属于非管理员一方
	convUser := user.UserName
	if user.IsAdmin() {
		if req.Receiver == "" {
			client.Send(ws.ErrorMessage("SendError", "请指定收件用户"))
			return
		}
		convUser = req.Receiver
		msg.IsRead = true
	}

	if err := h.history.Save(context.Background(), convUser, msg); err != nil {
		zap.S().Errorf("聊天消息保存失败: %v", err)
		client.Send(ws.ErrorMessage("SendError", "消息发送失败"))
		return
	}

	frame := ws.BuildMessage("ReceiveMessage", map[string]interface{}{
		"sender":    msg.Sender,
		"receiver":  msg.Receiver,
		"content":   msg.Content,
		"imageUrl":  msg.ImageUrl,
		"msgType":   msg.Type,
		"isAdmin":   msg.IsAdmin,
		"timestamp": msg.Timestamp,
	})

	client.Send(frame)
	if user.IsAdmin() {
		h.sendToUser(convUser, frame)
		return
	}
	h.sendToAdmins(frame)

	// 管理员面板的角标提醒
	unread, err := h.history.UnreadCount(context.Background(), convUser)
	if err != nil {
		zap.S().Warnf("未读计数读取失败, 用户%s: %v", convUser, err)
	}
	h.sendToAdmins(ws.BuildMessage("NewMessageNotification", map[string]interface{}{
		"from":        user.UserName,
		"fullName":    user.FullName(),
		"unreadCount": unread,
	}))
}

// handleLoadHistory 管理员指定会话用户并顺带清未读；普通用户只能看自己的
func (h *Hub) handleLoadHistory(client *ws.Client, user entities.User, req dto.ChatHistoryRequest) {
	convUser := user.UserName
	if user.IsAdmin() {
		if req.Target == "" {
			client.Send(ws.ErrorMessage("HistoryError", "请指定会话用户"))
			return
		}
		convUser = req.Target
		if err := h.history.MarkRead(context.Background(), convUser); err != nil {
			zap.S().Warnf("清未读失败, 用户%s: %v", convUser, err)
		}
	}

	msgs, err := h.history.History(context.Background(), convUser)
	if err != nil {
		zap.S().Errorf("聊天记录读取失败: %v", err)
		client.Send(ws.ErrorMessage("HistoryError", "聊天记录读取失败"))
		return
	}

	client.Send(ws.BuildMessage("LoadChatHistory", map[string]interface{}{
		"target":   convUser,
		"messages": msgs,
	}))
}

// handleGetOnlineUsers 管理员的在线用户面板，带各自未读数
func (h *Hub) handleGetOnlineUsers(client *ws.Client, user entities.User) {
	if !user.IsAdmin() {
		client.Send(ws.ErrorMessage("Error", "没有权限"))
		return
	}

	h.mu.RLock()
	users := make([]entities.User, 0, len(h.online))
	for _, p := range h.online {
		if !p.user.IsAdmin() {
			users = append(users, p.user)
		}
	}
	h.mu.RUnlock()

	infos := make([]dto.OnlineUserInfo, 0, len(users))
	for _, u := range users {
		unread, err := h.history.UnreadCount(context.Background(), u.UserName)
		if err != nil {
			zap.S().Warnf("未读计数读取失败, 用户%s: %v", u.UserName, err)
		}
		infos = append(infos, dto.OnlineUserInfo{
			UserName:    u.UserName,
			FullName:    u.FullName(),
			IsAdmin:     false,
			UnreadCount: unread,
		})
	}

	client.Send(ws.BuildMessage("OnlineUsers", map[string]interface{}{
		"users": infos,
	}))
}

// handleTyping 正在输入提示：管理员发给指定用户，用户发给所有管理员
func (h *Hub) handleTyping(user entities.User, req dto.ChatTypingRequest) {
	event := "UserTyping"
	if !req.IsTyping {
		event = "UserStoppedTyping"
	}
	frame := ws.BuildMessage(event, map[string]interface{}{
		"from": user.UserName,
	})
	if user.IsAdmin() {
		h.sendToUser(req.Target, frame)
	} else {
		h.sendToAdmins(frame)
	}
}

func (h *Hub) handleDisconnect(client *ws.Client, user entities.User) {
	h.registry.Remove(client.ID)
	defer client.Close()

	h.mu.Lock()
	// 同名用户可能已经开了新连接，只清理自己的
	if p, ok := h.online[user.UserName]; ok && p.client.ID == client.ID {
		delete(h.online, user.UserName)
	}
	h.mu.Unlock()

	if !user.IsAdmin() {
		h.sendToAdmins(ws.BuildMessage("UserOffline", map[string]interface{}{
			"userName": user.UserName,
		}))
	}
	zap.S().Infof("💬 聊天下线: %s", user.UserName)
}

func (h *Hub) sendToAdmins(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, p := range h.online {
		if p.user.IsAdmin() {
			p.client.Send(msg)
		}
	}
}

func (h *Hub) sendToUser(userName string, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if p, ok := h.online[userName]; ok {
		p.client.Send(msg)
	}
}

// OnlineCount 在线人数（统计接口用）
func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.online)
}
