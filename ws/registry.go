package ws

import "sync"

// Registry 一个 hub 的在线连接表（connectionID -> Client），并发安全
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

func (r *Registry) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID] = c
}

func (r *Registry) Remove(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, connectionID)
}

func (r *Registry) Get(connectionID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[connectionID]
	return c, ok
}

// All 当前所有连接的快照
func (r *Registry) All() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

// SendTo 给单个连接发消息
func (r *Registry) SendTo(connectionID string, msg []byte) {
	if c, ok := r.Get(connectionID); ok {
		c.Send(msg)
	}
}

// Broadcast 给所有连接发消息
func (r *Registry) Broadcast(msg []byte) {
	for _, c := range r.All() {
		c.Send(msg)
	}
}

// ConnIndex 连接到房间的索引（connectionID -> roomID），
// 每个 hub 持有自己的实例，Domino/Okey/Loto 互不共享。
type ConnIndex struct {
	mu    sync.RWMutex
	rooms map[string]string
}

func NewConnIndex() *ConnIndex {
	return &ConnIndex{rooms: make(map[string]string)}
}

func (ci *ConnIndex) Set(connectionID, roomID string) {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	ci.rooms[connectionID] = roomID
}

func (ci *ConnIndex) Get(connectionID string) (string, bool) {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	roomID, ok := ci.rooms[connectionID]
	return roomID, ok
}

// Delete 删除映射，返回被删的 roomID
func (ci *ConnIndex) Delete(connectionID string) (string, bool) {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	roomID, ok := ci.rooms[connectionID]
	if ok {
		delete(ci.rooms, connectionID)
	}
	return roomID, ok
}
