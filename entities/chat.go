package entities

import "time"

// ChatMessage 管理员客服会话里的一条消息
type ChatMessage struct {
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Content   string    `json:"content"`
	ImageUrl  string    `json:"imageUrl,omitempty"`
	Type      string    `json:"type"` // text / image
	IsAdmin   bool      `json:"isAdmin"`
	IsRead    bool      `json:"isRead"`
	Timestamp time.Time `json:"timestamp"`
}
