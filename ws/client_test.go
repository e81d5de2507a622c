package ws

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSendAfterCloseIsNoop(t *testing.T) {
	c := NewClient(nil, 1, "tester")
	c.Close()
	c.Close() // 可重复调用

	assert.NotPanics(t, func() {
		c.Send([]byte(`{"type":"Ping"}`))
	})
}

func TestSendCloseRace(t *testing.T) {
	// 广播方拿着 *Client 的同时连接被关掉，不能把进程带崩
	for i := 0; i < 100; i++ {
		c := NewClient(nil, 1, "tester")
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				c.Send([]byte("msg"))
			}
		}()
		go func() {
			defer wg.Done()
			c.Close()
		}()
		wg.Wait()
	}
}

func TestSendDropsWhenBufferFull(t *testing.T) {
	c := NewClient(nil, 1, "tester")
	// 没有 WritePump 消费，灌满缓冲后继续投递不能阻塞
	for i := 0; i < 200; i++ {
		c.Send([]byte("msg"))
	}
	assert.Len(t, c.send, cap(c.send))
}
