package ws

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Upgrade 将 HTTP 请求升级为 WebSocket 连接
func Upgrade(c *gin.Context) (*websocket.Conn, error) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.S().Warnf("WebSocket 升级失败: %v", err)
	}
	return conn, err
}

// Client 一条在线连接；发送统一走带缓冲的 send 通道，
// 由 WritePump 串行写出，避免并发写同一个 conn。
type Client struct {
	ID     string
	UserID int
	Name   string

	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, userID int, name string) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Name:   name,
		conn:   conn,
		send:   make(chan []byte, 64),
		done:   make(chan struct{}),
	}
}

// WritePump 串行把 send 通道里的消息写到连接上，Close 之后收尾退出
func (c *Client) WritePump() {
	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				zap.S().Warnf("发送失败，关闭连接: %s", c.Name)
				c.conn.Close()
				return
			}
		case <-c.done:
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			c.conn.Close()
			return
		}
	}
}

// Send 非阻塞投递；连接已关闭或缓冲满（掉线的慢客户端）时丢弃这条消息。
// send 通道从不 close，晚到的广播撞上 Close 也只是静默丢弃。
func (c *Client) Send(msg []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- msg:
	case <-c.done:
	default:
		zap.S().Warnf("发送缓冲已满，丢弃消息: %s", c.Name)
	}
}

// ReadMessage 读取下一帧
func (c *Client) ReadMessage() ([]byte, error) {
	_, msg, err := c.conn.ReadMessage()
	return msg, err
}

// Close 通知 WritePump 收尾关闭底层连接，可重复调用
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
