package dto

// 客服聊天请求载荷

type ChatSendRequest struct {
	Receiver string `json:"receiver"`
	Message  string `json:"message"`
	ImageUrl string `json:"imageUrl"`
}

type ChatHistoryRequest struct {
	Target string `json:"target"` // 管理员指定会话用户，普通用户留空
}

type ChatTypingRequest struct {
	Target   string `json:"target"`
	IsTyping bool   `json:"isTyping"`
}

type OnlineUserInfo struct {
	UserName    string `json:"userName"`
	FullName    string `json:"fullName"`
	IsAdmin     bool   `json:"isAdmin"`
	UnreadCount int    `json:"unreadCount"`
}
