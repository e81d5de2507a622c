package okey

import (
	"sort"
	"sync"

	"blog-game/dto"
	"blog-game/entities"

	"github.com/google/uuid"
)

const defaultEntryFee = 50

// RoomManager Okey 房间表，固定 4 人桌
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*entities.OkeyRoom
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[string]*entities.OkeyRoom)}
}

func (m *RoomManager) CreateRoom(req dto.OkeyCreateRoomRequest, creatorUserID int, creatorName string) *entities.OkeyRoom {
	entryFee := req.EntryFee
	if entryFee <= 0 {
		entryFee = defaultEntryFee
	}

	room := &entities.OkeyRoom{
		RoomID:        uuid.New().String(),
		RoomName:      req.RoomName,
		CreatorName:   creatorName,
		CreatorUserID: creatorUserID,
		EntryFee:      entryFee,
		IsPrivate:     req.IsPrivate,
		Password:      req.Password,
	}

	m.mu.Lock()
	m.rooms[room.RoomID] = room
	m.mu.Unlock()
	return room
}

func (m *RoomManager) GetRoom(roomID string) (*entities.OkeyRoom, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[roomID]
	return room, ok
}

func (m *RoomManager) DeleteRoom(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, roomID)
}

func (m *RoomManager) Rooms() []*entities.OkeyRoom {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*entities.OkeyRoom, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out
}

// AvailableRooms 可加入的公开房间，人多的排前面
func (m *RoomManager) AvailableRooms() []dto.OkeyRoomListItem {
	items := make([]dto.OkeyRoomListItem, 0)
	for _, room := range m.Rooms() {
		room.StateLock.Lock()
		if !room.IsPrivate && !room.IsGameStarted && !room.IsFull() {
			items = append(items, dto.OkeyRoomListItem{
				RoomID:      room.RoomID,
				RoomName:    room.RoomName,
				EntryFee:    room.EntryFee,
				PlayerCount: len(room.Players),
				MaxPlayers:  entities.OkeySeats,
				IsPrivate:   room.IsPrivate,
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
