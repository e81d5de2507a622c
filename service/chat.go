package service

import (
	"context"

	"blog-game/entities"
	"blog-game/repository"
)

// ChatHistory 聊天记录读写，Hub通过接口访问存储
type ChatHistory interface {
	Save(ctx context.Context, convUser string, msg entities.ChatMessage) error
	History(ctx context.Context, convUser string) ([]entities.ChatMessage, error)
	MarkRead(ctx context.Context, convUser string) error
	UnreadCount(ctx context.Context, convUser string) (int, error)
}

type ChatService struct {
	store *repository.ChatStore
}

func NewChatService(store *repository.ChatStore) *ChatService {
	return &ChatService{store: store}
}

func (s *ChatService) Save(ctx context.Context, convUser string, msg entities.ChatMessage) error {
	return s.store.Save(ctx, convUser, msg)
}

func (s *ChatService) History(ctx context.Context, convUser string) ([]entities.ChatMessage, error) {
	return s.store.History(ctx, convUser)
}

func (s *ChatService) MarkRead(ctx context.Context, convUser string) error {
	return s.store.MarkRead(ctx, convUser)
}

func (s *ChatService) UnreadCount(ctx context.Context, convUser string) (int, error) {
	return s.store.UnreadCount(ctx, convUser)
}
