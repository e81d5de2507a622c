package dto

// 多米诺客户端请求载荷

type DominoCreateRoomRequest struct {
	RoomName   string `json:"roomName"`
	GameType   string `json:"gameType"`
	EntryFee   int64  `json:"entryFee"`
	MaxPlayers int    `json:"maxPlayers"`
	IsPrivate  bool   `json:"isPrivate"`
	Password   string `json:"password"`
}

type DominoJoinRoomRequest struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password"`
}

type DominoPlaceTileRequest struct {
	TileID string `json:"tileId"`
	Side   string `json:"side"` // left / right
}

// DominoRoomListItem 房间列表条目
type DominoRoomListItem struct {
	RoomID      string `json:"roomId"`
	RoomName    string `json:"roomName"`
	GameType    string `json:"gameType"`
	EntryFee    int64  `json:"entryFee"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	IsPrivate   bool   `json:"isPrivate"`
	IsStarted   bool   `json:"isStarted"`
}

type DominoPlayerInfo struct {
	UserID    int    `json:"userId"`
	Name      string `json:"name"`
	TileCount int    `json:"tileCount"`
	Score     int    `json:"score"`
	HasPassed bool   `json:"hasPassed"`
}
