package dto

// Okey客户端请求载荷

type OkeyCreateRoomRequest struct {
	RoomName  string `json:"roomName"`
	EntryFee  int64  `json:"entryFee"`
	IsPrivate bool   `json:"isPrivate"`
	Password  string `json:"password"`
}

type OkeyJoinRoomRequest struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password"`
}

type OkeyDiscardRequest struct {
	TileID string `json:"tileId"`
}

type OkeyRoomListItem struct {
	RoomID      string `json:"roomId"`
	RoomName    string `json:"roomName"`
	EntryFee    int64  `json:"entryFee"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	IsPrivate   bool   `json:"isPrivate"`
	IsStarted   bool   `json:"isStarted"`
}

type OkeyPlayerInfo struct {
	UserID    int    `json:"userId"`
	Name      string `json:"name"`
	Seat      int    `json:"seat"`
	TileCount int    `json:"tileCount"`
}
