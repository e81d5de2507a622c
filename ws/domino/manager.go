package domino

import (
	"sort"
	"sync"

	"blog-game/dto"
	"blog-game/entities"

	"github.com/google/uuid"
)

const defaultEntryFee = 10

// RoomManager 多米诺房间表，读写并发安全。
// 房间内部状态由各房间自己的 StateLock 保护。
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*entities.DominoRoom
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[string]*entities.DominoRoom)}
}

// CreateRoom 建房；人数钳制在 2-4，入场费非法时用默认值
func (m *RoomManager) CreateRoom(req dto.DominoCreateRoomRequest, creatorUserID int, creatorName string) *entities.DominoRoom {
	maxPlayers := req.MaxPlayers
	if maxPlayers < 2 {
		maxPlayers = 2
	}
	if maxPlayers > 4 {
		maxPlayers = 4
	}
	entryFee := req.EntryFee
	if entryFee <= 0 {
		entryFee = defaultEntryFee
	}

	room := &entities.DominoRoom{
		RoomID:        uuid.New().String(),
		RoomName:      req.RoomName,
		CreatorName:   creatorName,
		CreatorUserID: creatorUserID,
		GameType:      entities.ParseDominoGameType(req.GameType),
		EntryFee:      entryFee,
		MaxPlayers:    maxPlayers,
		IsPrivate:     req.IsPrivate,
		Password:      req.Password,
	}

	m.mu.Lock()
	m.rooms[room.RoomID] = room
	m.mu.Unlock()
	return room
}

func (m *RoomManager) GetRoom(roomID string) (*entities.DominoRoom, bool) {
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

// Rooms 房间快照
func (m *RoomManager) Rooms() []*entities.DominoRoom {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*entities.DominoRoom, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out
}

// RoomOfUser 找该用户所在的房间（断线重连用）
func (m *RoomManager) RoomOfUser(userID int) (*entities.DominoRoom, bool) {
	for _, room := range m.Rooms() {
		room.StateLock.Lock()
		found := room.GetPlayerByUserID(userID) != nil
		room.StateLock.Unlock()
		if found {
			return room, true
		}
	}
	return nil, false
}

// AvailableRooms 可加入的公开房间列表，人多的排前面
func (m *RoomManager) AvailableRooms() []dto.DominoRoomListItem {
	items := make([]dto.DominoRoomListItem, 0)
	for _, room := range m.Rooms() {
		room.StateLock.Lock()
		if !room.IsPrivate && !room.IsGameStarted && !room.IsFull() {
			items = append(items, dto.DominoRoomListItem{
				RoomID:      room.RoomID,
				RoomName:    room.RoomName,
				GameType:    string(room.GameType),
				EntryFee:    room.EntryFee,
				PlayerCount: len(room.Players),
				MaxPlayers:  room.MaxPlayers,
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

// ActiveRoomCount 当前房间数
func (m *RoomManager) ActiveRoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// ActivePlayerCount 所有房间里的玩家数
func (m *RoomManager) ActivePlayerCount() int {
	total := 0
	for _, room := range m.Rooms() {
		room.StateLock.Lock()
		total += len(room.Players)
		room.StateLock.Unlock()
	}
	return total
}
