package router

import (
	"blog-game/controller"
	"blog-game/middleware"
	"blog-game/ws/chat"
	"blog-game/ws/domino"
	"blog-game/ws/loto"
	"blog-game/ws/okey"

	"github.com/gin-gonic/gin"
)

// InitRouter 挂载 REST 接口和各游戏的 WebSocket 路由
func InitRouter(r *gin.Engine,
	dominoHub *domino.Hub,
	okeyHub *okey.Hub,
	lotoHub *loto.Hub,
	chatHub *chat.Hub,
	stats *controller.StatsController,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.JWTAuth())
	{
		api.GET("/stats", stats.GetStats)
	}

	// WebSocket 路由，token 走查询参数
	r.GET("/ws/domino", dominoHub.HandleConnection)
	r.GET("/ws/okey", okeyHub.HandleConnection)
	r.GET("/ws/loto", lotoHub.HandleConnection)
	r.GET("/ws/chat", chatHub.HandleConnection)
}
