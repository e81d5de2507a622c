package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"blog-game/entities"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

var (
	Rdb *redis.Client
	Ctx = context.Background()
)

// InitRedis 初始化Redis客户端（聊天记录、未读计数）
func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	Rdb = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	if _, err := Rdb.Ping(Ctx).Result(); err != nil {
		zap.S().Fatalf("Redis 连接失败: %v", err)
	}
	zap.S().Infof("✅ Redis 连接成功")
}

// ChatStore 聊天记录存Redis：
//   - chat:conv:{user}  list，和该用户的整段会话（双向消息都在里面）
//   - chat:unread       hash，field=用户名，val=该用户发给管理员的未读条数
type ChatStore struct {
	rdb *redis.Client
}

func NewChatStore(rdb *redis.Client) *ChatStore {
	return &ChatStore{rdb: rdb}
}

func convKey(user string) string {
	return "chat:conv:" + user
}

const unreadKey = "chat:unread"

// Save 追加消息到会话，convUser是会话归属的非管理员用户
func (s *ChatStore) Save(ctx context.Context, convUser string, msg entities.ChatMessage) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("消息序列化失败: %w", err)
	}
	if err := s.rdb.RPush(ctx, convKey(convUser), raw).Err(); err != nil {
		return fmt.Errorf("消息写入失败: %w", err)
	}
	// 用户发来的消息累计未读，等管理员打开会话再清
	if !msg.IsAdmin {
		if err := s.rdb.HIncrBy(ctx, unreadKey, convUser, 1).Err(); err != nil {
			return fmt.Errorf("未读计数失败: %w", err)
		}
	}
	return nil
}

// History 取整段会话
func (s *ChatStore) History(ctx context.Context, convUser string) ([]entities.ChatMessage, error) {
	raws, err := s.rdb.LRange(ctx, convKey(convUser), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("会话读取失败: %w", err)
	}
	msgs := make([]entities.ChatMessage, 0, len(raws))
	for _, raw := range raws {
		var m entities.ChatMessage
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			zap.S().Warnf("聊天记录反序列化失败, 跳过: %v", err)
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// MarkRead 管理员读完会话，清掉该用户的未读数
func (s *ChatStore) MarkRead(ctx context.Context, convUser string) error {
	return s.rdb.HDel(ctx, unreadKey, convUser).Err()
}

// UnreadCount 该用户的未读条数
func (s *ChatStore) UnreadCount(ctx context.Context, convUser string) (int, error) {
	val, err := s.rdb.HGet(ctx, unreadKey, convUser).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("未读计数读取失败: %w", err)
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, nil
	}
	return n, nil
}
