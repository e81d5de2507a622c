package dto

// Loto客户端请求载荷

type LotoCreateRoomRequest struct {
	RoomName   string `json:"roomName"`
	EntryFee   int64  `json:"entryFee"`
	MaxPlayers int    `json:"maxPlayers"`
	IsPrivate  bool   `json:"isPrivate"`
	Password   string `json:"password"`
}

type LotoJoinRoomRequest struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password"`
}

type LotoClaimRowRequest struct {
	Row int `json:"rowIndex"`
}

type LotoRoomListItem struct {
	RoomID      string `json:"roomId"`
	RoomName    string `json:"roomName"`
	EntryFee    int64  `json:"entryFee"`
	LineReward  int64  `json:"lineReward"`
	WinReward   int64  `json:"winReward"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	IsStarted   bool   `json:"isStarted"`
}

type LotoPlayerInfo struct {
	UserID        int    `json:"userId"`
	Name          string `json:"name"`
	CompletedRows []int  `json:"completedRows"`
}
