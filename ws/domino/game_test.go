package domino

import (
	"sync"
	"testing"

	"blog-game/dto"
	"blog-game/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoom(t *testing.T, maxPlayers int) (*RoomManager, *entities.DominoRoom) {
	t.Helper()
	m := NewRoomManager()
	room := m.CreateRoom(dto.DominoCreateRoomRequest{
		RoomName:   "测试房",
		GameType:   "Classic101",
		EntryFee:   10,
		MaxPlayers: maxPlayers,
	}, 1, "房主")
	return m, room
}

func seat(t *testing.T, room *entities.DominoRoom, connID string, userID int, name string) *entities.DominoPlayer {
	t.Helper()
	p := &entities.DominoPlayer{ConnectionID: connID, UserID: userID, Name: name}
	require.True(t, CommitSeat(room, p))
	return p
}

func TestCreateRoomClamps(t *testing.T) {
	m := NewRoomManager()

	room := m.CreateRoom(dto.DominoCreateRoomRequest{MaxPlayers: 9, EntryFee: -5, GameType: "乱写的"}, 1, "a")
	assert.Equal(t, 4, room.MaxPlayers)
	assert.Equal(t, int64(10), room.EntryFee)
	assert.Equal(t, entities.DominoClassic101, room.GameType)

	room = m.CreateRoom(dto.DominoCreateRoomRequest{MaxPlayers: 1}, 1, "a")
	assert.Equal(t, 2, room.MaxPlayers)
}

func TestCheckSeat(t *testing.T) {
	_, room := newTestRoom(t, 2)
	room.IsPrivate = true
	room.Password = "secret"

	reason, ok := CheckSeat(room, 2, "wrong")
	assert.False(t, ok)
	assert.NotEmpty(t, reason)

	_, ok = CheckSeat(room, 2, "secret")
	assert.True(t, ok)

	seat(t, room, "c1", 2, "甲")
	_, ok = CheckSeat(room, 2, "secret")
	assert.False(t, ok, "同一用户不能重复入座")

	seat(t, room, "c2", 3, "乙")
	_, ok = CheckSeat(room, 4, "secret")
	assert.False(t, ok, "满员后不能入座")
}

func TestSeatRaceLastSeat(t *testing.T) {
	_, room := newTestRoom(t, 2)
	seat(t, room, "c1", 2, "甲")

	// 两个连接同时抢最后一个座位，只能有一个成功
	var wg sync.WaitGroup
	results := make([]bool, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := &entities.DominoPlayer{ConnectionID: "race", UserID: 10 + i, Name: "抢座"}
			results[i] = CommitSeat(room, p)
		}(i)
	}
	wg.Wait()

	assert.NotEqual(t, results[0], results[1])
	assert.Len(t, room.Players, 2)
}

func TestStartRound(t *testing.T) {
	_, room := newTestRoom(t, 2)
	seat(t, room, "c1", 2, "甲")
	seat(t, room, "c2", 3, "乙")

	snap := StartRound(room)

	assert.Equal(t, 1, snap.Round)
	assert.Len(t, snap.Hands, 2)
	for _, hand := range snap.Hands {
		assert.Len(t, hand, 7)
	}
	assert.Equal(t, 14, snap.StockCount)
	assert.NotEmpty(t, snap.CurrentConnID)
	assert.True(t, room.IsGameStarted)
	assert.False(t, room.IsRoundFinished)
}

func TestPlaceTileWrongTurn(t *testing.T) {
	_, room := newTestRoom(t, 2)
	seat(t, room, "c1", 2, "甲")
	p2 := seat(t, room, "c2", 3, "乙")
	StartRound(room)

	room.CurrentPlayerIndex = 0
	before := len(p2.Hand)

	res := PlaceTile(room, "c2", p2.Hand[0].ID, "right")
	assert.False(t, res.Ok)
	assert.NotEmpty(t, res.Reason)
	assert.Len(t, p2.Hand, before)
}

func TestPlaceLastTileEndsRound(t *testing.T) {
	_, room := newTestRoom(t, 2)
	p1 := seat(t, room, "c1", 2, "甲")
	p2 := seat(t, room, "c2", 3, "乙")

	room.IsGameStarted = true
	room.CurrentPlayerIndex = 0
	p1.Hand = []entities.DominoTile{entities.NewDominoTile(2, 3)}
	p2.Hand = []entities.DominoTile{entities.NewDominoTile(6, 6), entities.NewDominoTile(5, 5)}

	res := PlaceTile(room, "c1", p1.Hand[0].ID, "right")
	require.True(t, res.Ok, res.Reason)
	assert.True(t, res.RoundOver)
	assert.False(t, res.GameOver)
	assert.Equal(t, "甲", res.WinnerName)
	assert.Equal(t, 22, res.RoundPoints)
	assert.Equal(t, 22, p1.Score)
	assert.True(t, room.IsRoundFinished)
}

func TestReachingThresholdEndsGame(t *testing.T) {
	_, room := newTestRoom(t, 2)
	p1 := seat(t, room, "c1", 2, "甲")
	p2 := seat(t, room, "c2", 3, "乙")

	room.IsGameStarted = true
	room.PotCount = 2
	room.CurrentPlayerIndex = 0
	p1.Score = 90
	p1.Hand = []entities.DominoTile{entities.NewDominoTile(2, 3)}
	p2.Hand = []entities.DominoTile{entities.NewDominoTile(6, 6)}

	res := PlaceTile(room, "c1", p1.Hand[0].ID, "left")
	require.True(t, res.Ok, res.Reason)
	assert.True(t, res.GameOver)
	assert.Equal(t, 102, p1.Score)
	assert.Equal(t, int64(20), res.Reward)
	assert.False(t, room.IsGameStarted)
}

func TestDrawRequiresBlockedHand(t *testing.T) {
	_, room := newTestRoom(t, 2)
	p1 := seat(t, room, "c1", 2, "甲")
	seat(t, room, "c2", 3, "乙")

	room.IsGameStarted = true
	room.CurrentPlayerIndex = 0
	room.Chain.AddRight(entities.NewDominoTile(2, 5), false)
	p1.Hand = []entities.DominoTile{entities.NewDominoTile(5, 6)}
	room.Stock = []entities.DominoTile{entities.NewDominoTile(1, 1)}

	res := DrawFromStock(room, "c1")
	assert.False(t, res.Ok, "有牌可出时不许摸牌")
}

func TestBlockedDrawAndPass(t *testing.T) {
	_, room := newTestRoom(t, 2)
	p1 := seat(t, room, "c1", 2, "甲")
	p2 := seat(t, room, "c2", 3, "乙")

	room.IsGameStarted = true
	room.CurrentPlayerIndex = 0
	room.Chain.AddRight(entities.NewDominoTile(0, 0), false)
	p1.Hand = []entities.DominoTile{entities.NewDominoTile(5, 6)}
	p2.Hand = []entities.DominoTile{entities.NewDominoTile(1, 2)}
	room.Stock = []entities.DominoTile{entities.NewDominoTile(3, 4)}

	// 牌库有牌先摸牌，回合不转
	res := DrawFromStock(room, "c1")
	require.True(t, res.Ok, res.Reason)
	assert.True(t, res.Drew)
	assert.Len(t, p1.Hand, 2)
	assert.Equal(t, "c1", room.CurrentPlayerID())

	// 摸来的也接不上，牌库已空，过牌
	res = DrawFromStock(room, "c1")
	require.True(t, res.Ok, res.Reason)
	assert.True(t, res.Passed)
	assert.Equal(t, "c2", room.CurrentPlayerID())

	// 第二个人也过牌，流局，手牌点数小的赢
	res = DrawFromStock(room, "c2")
	require.True(t, res.Ok, res.Reason)
	assert.True(t, res.Passed)
	assert.True(t, res.RoundOver)
	assert.Equal(t, "乙", res.WinnerName) // 1+2 < 5+6+3+4
	assert.Equal(t, p1.HandValue(), res.RoundPoints)
}

func TestResetGame(t *testing.T) {
	_, room := newTestRoom(t, 2)
	p1 := seat(t, room, "c1", 2, "甲")
	seat(t, room, "c2", 3, "乙")
	StartRound(room)
	p1.Score = 120

	ResetGame(room)

	assert.False(t, room.IsGameStarted)
	assert.Equal(t, 0, room.CurrentRound)
	assert.Empty(t, room.Chain.Tiles)
	assert.Len(t, room.Players, 2, "清场后玩家留在座位上")
	for _, p := range room.Players {
		assert.Empty(t, p.Hand)
		assert.Zero(t, p.Score)
	}
}

func TestAvailableRooms(t *testing.T) {
	m := NewRoomManager()
	r1 := m.CreateRoom(dto.DominoCreateRoomRequest{RoomName: "一人房", MaxPlayers: 4}, 1, "a")
	r2 := m.CreateRoom(dto.DominoCreateRoomRequest{RoomName: "两人房", MaxPlayers: 4}, 2, "b")
	priv := m.CreateRoom(dto.DominoCreateRoomRequest{RoomName: "私房", IsPrivate: true, Password: "x"}, 3, "c")
	started := m.CreateRoom(dto.DominoCreateRoomRequest{RoomName: "已开局"}, 4, "d")

	seat(t, r1, "a1", 10, "x")
	seat(t, r2, "b1", 11, "y")
	seat(t, r2, "b2", 12, "z")
	seat(t, started, "d1", 13, "w")
	seat(t, started, "d2", 14, "v")
	StartRound(started)

	items := m.AvailableRooms()
	require.Len(t, items, 2)
	assert.Equal(t, "两人房", items[0].RoomName, "人多的排前面")
	assert.Equal(t, "一人房", items[1].RoomName)
	for _, item := range items {
		assert.NotEqual(t, priv.RoomID, item.RoomID)
	}
}

func TestRebindKeepsHandAndSeat(t *testing.T) {
	_, room := newTestRoom(t, 3)
	seat(t, room, "c1", 2, "甲")
	seat(t, room, "c2", 3, "乙")
	seat(t, room, "c3", 4, "丙")
	StartRound(room)

	p := room.GetPlayerByUserID(3)
	handBefore := append([]entities.DominoTile{}, p.Hand...)
	curBefore := room.GetCurrentPlayer().Name

	snap := Rebind(room, 3, "c2-new")
	require.True(t, snap.Ok)
	assert.Equal(t, "c2", snap.OldConnID)
	assert.Equal(t, handBefore, snap.Hand, "手牌原样补发")
	assert.Equal(t, handBefore, p.Hand)
	assert.Equal(t, "c2-new", p.ConnectionID)
	assert.Equal(t, curBefore, snap.CurrentName, "回合不因换绑变化")
	assert.Equal(t, room.GetCurrentPlayer().ConnectionID == "c2-new", snap.YourTurn)
	assert.Len(t, room.Players, 3, "换绑不产生新座位")

	// 没入座的用户绑不上
	assert.False(t, Rebind(room, 99, "cx").Ok)
}

func TestRemovePlayerRepointsTurn(t *testing.T) {
	_, room := newTestRoom(t, 3)
	seat(t, room, "c1", 2, "甲")
	seat(t, room, "c2", 3, "乙")
	seat(t, room, "c3", 4, "丙")
	StartRound(room)

	// 前面的座位空出来，指针要跟着前移才还指着同一个人
	room.CurrentPlayerIndex = 2
	cur := room.Players[2]
	res := RemovePlayer(room, "c1")
	require.True(t, res.Left)
	assert.False(t, res.Refund, "开局后离场不退费")
	assert.Equal(t, cur, room.GetCurrentPlayer())
	assert.Equal(t, entities.StatusPlaying, cur.Status)
	assert.Equal(t, cur.Name, res.NextName)
}

func TestRemoveCurrentPlayerAdvancesTurn(t *testing.T) {
	_, room := newTestRoom(t, 3)
	seat(t, room, "c1", 2, "甲")
	seat(t, room, "c2", 3, "乙")
	seat(t, room, "c3", 4, "丙")
	StartRound(room)

	// 轮到的人走了，回合顺延给下一家
	room.CurrentPlayerIndex = 1
	next := room.Players[2]
	res := RemovePlayer(room, "c2")
	require.True(t, res.Left)
	assert.Equal(t, next, room.GetCurrentPlayer())
	assert.Equal(t, next.Name, res.NextName)
	assert.Equal(t, entities.StatusPlaying, next.Status)

	// 末座的当前玩家走了，回合绕回首座
	room.CurrentPlayerIndex = 1
	last := room.Players[1]
	res = RemovePlayer(room, last.ConnectionID)
	require.True(t, res.Left)
	assert.True(t, res.Walkover)
	assert.Equal(t, 0, room.CurrentPlayerIndex)
}

func TestWalkoverPaysWholePot(t *testing.T) {
	_, room := newTestRoom(t, 3)
	seat(t, room, "c1", 2, "甲")
	seat(t, room, "c2", 3, "乙")
	seat(t, room, "c3", 4, "丙")
	StartRound(room)
	require.Equal(t, 3, room.PotCount)

	first := RemovePlayer(room, "c1")
	require.True(t, first.Left)
	assert.False(t, first.Walkover)

	res := RemovePlayer(room, "c2")
	require.True(t, res.Walkover)
	assert.Equal(t, 4, res.WinnerUserID)
	assert.Equal(t, int64(30), res.Reward, "有人先走彩池也按开局人数算")
	assert.False(t, room.IsGameStarted)
	assert.True(t, room.IsRoundFinished)
}

func TestRoomOfUser(t *testing.T) {
	m, room := newTestRoom(t, 2)
	seat(t, room, "c1", 2, "甲")

	found, ok := m.RoomOfUser(2)
	require.True(t, ok)
	assert.Equal(t, room.RoomID, found.RoomID)

	_, ok = m.RoomOfUser(99)
	assert.False(t, ok)
}
