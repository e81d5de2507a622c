package loto

import (
	"testing"

	"blog-game/dto"
	"blog-game/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoom(t *testing.T) (*RoomManager, *entities.LotoRoom) {
	t.Helper()
	m := NewRoomManager()
	room := m.CreateRoom(dto.LotoCreateRoomRequest{RoomName: "测试厅", EntryFee: 10, MaxPlayers: 5}, 1, "房主")
	return m, room
}

func join(t *testing.T, room *entities.LotoRoom, connID string, userID int, name string) *entities.LotoPlayer {
	t.Helper()
	p := NewPlayer(connID, userID, name)
	require.True(t, CommitSeat(room, p))
	return p
}

func TestCreateRoomRewards(t *testing.T) {
	m := NewRoomManager()
	room := m.CreateRoom(dto.LotoCreateRoomRequest{EntryFee: 10}, 1, "a")

	assert.Equal(t, int64(10), room.LineReward)
	assert.Equal(t, int64(50), room.WinReward)
	assert.Equal(t, drawInterval, room.AutoDrawInterval)
	assert.Equal(t, defaultMaxPlayers, room.MaxPlayers)
}

func TestStartGameRules(t *testing.T) {
	_, room := newTestRoom(t)

	reason, ok := StartGame(room, 1)
	assert.False(t, ok, "没有玩家不能开局")
	assert.NotEmpty(t, reason)

	join(t, room, "c1", 1, "房主")

	_, ok = StartGame(room, 2)
	assert.False(t, ok, "只有房主能开局")

	_, ok = StartGame(room, 1)
	require.True(t, ok)
	assert.True(t, room.IsGameStarted)
	assert.Len(t, room.NumbersQueue, 90)

	_, ok = StartGame(room, 1)
	assert.False(t, ok, "不能重复开局")
}

func TestDrawNumberSequence(t *testing.T) {
	_, room := newTestRoom(t)
	join(t, room, "c1", 1, "房主")
	_, ok := StartGame(room, 1)
	require.True(t, ok)

	first := room.NumbersQueue[0]
	out := DrawNumber(room)
	require.True(t, out.Ok)
	assert.Equal(t, first, out.Number)
	assert.Equal(t, 89, out.Remaining)
	assert.True(t, room.DrawnNumbers[first])

	// 抽空队列后自动收局
	for i := 0; i < 88; i++ {
		out = DrawNumber(room)
		require.True(t, out.Ok)
		assert.False(t, out.Exhausted)
	}
	out = DrawNumber(room)
	require.True(t, out.Ok)
	assert.True(t, out.Exhausted)
	assert.True(t, room.IsGameFinished)

	out = DrawNumber(room)
	assert.False(t, out.Ok)
}

func markRow(room *entities.LotoRoom, p *entities.LotoPlayer, row int) {
	for col := 0; col < 9; col++ {
		if p.Card[row][col] != nil {
			room.DrawnNumbers[*p.Card[row][col]] = true
		}
	}
}

func TestClaimRowIdempotent(t *testing.T) {
	_, room := newTestRoom(t)
	p := join(t, room, "c1", 1, "房主")
	_, ok := StartGame(room, 1)
	require.True(t, ok)

	res := ClaimRow(room, "c1", 0)
	assert.False(t, res.Ok, "线没满不能报")

	markRow(room, p, 0)
	res = ClaimRow(room, "c1", 0)
	require.True(t, res.Ok, res.Reason)
	assert.False(t, res.Duplicate)
	assert.Equal(t, room.LineReward, res.Reward)

	// 重复报同一条线不再派彩
	res = ClaimRow(room, "c1", 0)
	require.True(t, res.Ok)
	assert.True(t, res.Duplicate)
	assert.Zero(t, res.Reward)

	res = ClaimRow(room, "c1", 5)
	assert.False(t, res.Ok)
}

func TestClaimBingo(t *testing.T) {
	_, room := newTestRoom(t)
	p := join(t, room, "c1", 1, "房主")
	join(t, room, "c2", 2, "乙")
	_, ok := StartGame(room, 1)
	require.True(t, ok)

	res := ClaimBingo(room, "c1")
	assert.False(t, res.Ok, "卡没满不能报")

	for row := 0; row < 3; row++ {
		markRow(room, p, row)
	}
	res = ClaimBingo(room, "c1")
	require.True(t, res.Ok, res.Reason)
	assert.Equal(t, room.WinReward, res.Reward)
	assert.Equal(t, 1, res.UserID)
	assert.True(t, room.IsGameFinished)

	// 收局后开号停止
	out := DrawNumber(room)
	assert.False(t, out.Ok)

	res = ClaimBingo(room, "c2")
	assert.False(t, res.Ok)
}

func TestResetRoomClearsPlayers(t *testing.T) {
	_, room := newTestRoom(t)
	join(t, room, "c1", 1, "房主")
	join(t, room, "c2", 2, "乙")
	_, ok := StartGame(room, 1)
	require.True(t, ok)
	DrawNumber(room)
	room.IsGameFinished = true

	connIDs := ResetRoom(room)

	assert.ElementsMatch(t, []string{"c1", "c2"}, connIDs)
	assert.Empty(t, room.Players)
	assert.Empty(t, room.NumbersQueue)
	assert.Empty(t, room.DrawnNumbers)
	assert.False(t, room.IsGameStarted)
	assert.False(t, room.IsGameFinished)
}

func TestCheckSeatMidGameJoin(t *testing.T) {
	_, room := newTestRoom(t)
	join(t, room, "c1", 1, "房主")
	_, ok := StartGame(room, 1)
	require.True(t, ok)

	// 进行中还能买卡进场
	_, ok = CheckSeat(room, 2, "")
	assert.True(t, ok)

	room.IsGameFinished = true
	reason, ok := CheckSeat(room, 2, "")
	assert.False(t, ok)
	assert.NotEmpty(t, reason)
}

func TestAvailableRoomsFilter(t *testing.T) {
	m := NewRoomManager()
	open := m.CreateRoom(dto.LotoCreateRoomRequest{RoomName: "公开厅"}, 1, "a")
	m.CreateRoom(dto.LotoCreateRoomRequest{RoomName: "私厅", IsPrivate: true, Password: "x"}, 2, "b")
	finished := m.CreateRoom(dto.LotoCreateRoomRequest{RoomName: "已结束"}, 3, "c")
	finished.IsGameFinished = true

	items := m.AvailableRooms()
	require.Len(t, items, 1)
	assert.Equal(t, open.RoomID, items[0].RoomID)
}
