package controller

import (
	"net/http"

	"blog-game/ws/chat"
	"blog-game/ws/domino"
	"blog-game/ws/loto"
	"blog-game/ws/okey"

	"github.com/gin-gonic/gin"
)

// StatsController 运营统计：各游戏的房间数和在座玩家数
type StatsController struct {
	Domino *domino.RoomManager
	Okey   *okey.RoomManager
	Loto   *loto.RoomManager
	Chat   *chat.Hub
}

func NewStatsController(d *domino.RoomManager, o *okey.RoomManager, l *loto.RoomManager, c *chat.Hub) *StatsController {
	return &StatsController{Domino: d, Okey: o, Loto: l, Chat: c}
}

func (s *StatsController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"domino": gin.H{
			"rooms":   s.Domino.ActiveRoomCount(),
			"players": s.Domino.ActivePlayerCount(),
		},
		"okey": gin.H{
			"rooms":   s.Okey.ActiveRoomCount(),
			"players": s.Okey.ActivePlayerCount(),
		},
		"loto": gin.H{
			"rooms":   s.Loto.ActiveRoomCount(),
			"players": s.Loto.ActivePlayerCount(),
		},
		"chat": gin.H{
			"online": s.Chat.OnlineCount(),
		},
	})
}
