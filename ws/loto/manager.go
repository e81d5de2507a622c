package loto

import (
	"sort"
	"sync"
	"time"

	"blog-game/dto"
	"blog-game/entities"

	"github.com/google/uuid"
)

const (
	defaultEntryFee   = 10
	defaultMaxPlayers = 20
	maxRoomPlayers    = 50
	drawInterval      = 3 * time.Second
)

// RoomManager Loto 房间表
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*entities.LotoRoom
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[string]*entities.LotoRoom)}
}

// CreateRoom 建房；单线奖=入场费，满卡奖=入场费×5
func (m *RoomManager) CreateRoom(req dto.LotoCreateRoomRequest, creatorUserID int, creatorName string) *entities.LotoRoom {
	entryFee := req.EntryFee
	if entryFee <= 0 {
		entryFee = defaultEntryFee
	}
	maxPlayers := req.MaxPlayers
	if maxPlayers <= 0 {
		maxPlayers = defaultMaxPlayers
	}
	if maxPlayers > maxRoomPlayers {
		maxPlayers = maxRoomPlayers
	}

	room := &entities.LotoRoom{
		RoomID:           uuid.New().String(),
		RoomName:         req.RoomName,
		CreatorName:      creatorName,
		CreatorUserID:    creatorUserID,
		CreatedAt:        time.Now(),
		EntryFee:         entryFee,
		LineReward:       entryFee,
		WinReward:        entryFee * 5,
		MaxPlayers:       maxPlayers,
		AutoDrawInterval: drawInterval,
		IsPrivate:        req.IsPrivate,
		Password:         req.Password,
		DrawnNumbers:     make(map[int]bool),
	}

	m.mu.Lock()
	m.rooms[room.RoomID] = room
	m.mu.Unlock()
	return room
}

func (m *RoomManager) GetRoom(roomID string) (*entities.LotoRoom, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[roomID]
	return room, ok
}

// DeleteRoom 删房前先停掉自动开号
func (m *RoomManager) DeleteRoom(roomID string) {
	m.mu.Lock()
	room, ok := m.rooms[roomID]
	delete(m.rooms, roomID)
	m.mu.Unlock()

	if ok {
		room.StateLock.Lock()
		room.CancelDraw()
		room.StateLock.Unlock()
	}
}

func (m *RoomManager) Rooms() []*entities.LotoRoom {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*entities.LotoRoom, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out
}

// AvailableRooms 公开且没打完的房间（进行中的也列出来，可以中途买卡进场）
func (m *RoomManager) AvailableRooms() []dto.LotoRoomListItem {
	items := make([]dto.LotoRoomListItem, 0)
	for _, room := range m.Rooms() {
		room.StateLock.Lock()
		if !room.IsPrivate && !room.IsGameFinished {
			items = append(items, dto.LotoRoomListItem{
				RoomID:      room.RoomID,
				RoomName:    room.RoomName,
				EntryFee:    room.EntryFee,
				LineReward:  room.LineReward,
				WinReward:   room.WinReward,
				PlayerCount: len(room.Players),
				MaxPlayers:  room.MaxPlayers,
				IsStarted:   room.IsGameStarted,
			})
		}
		room.StateLock.Unlock()
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].PlayerCount > items[j].PlayerCount
	})
	return items
}

func (m *RoomManager) ActiveRoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

func (m *RoomManager) ActivePlayerCount() int {
	total := 0
	for _, room := range m.Rooms() {
		room.StateLock.Lock()
		total += len(room.Players)
		room.StateLock.Unlock()
	}
	return total
}
