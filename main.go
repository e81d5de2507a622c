package main

import (
	"os"
	"time"

	"blog-game/controller"
	"blog-game/repository"
	"blog-game/router"
	"blog-game/service"
	"blog-game/utils"
	"blog-game/ws/chat"
	"blog-game/ws/domino"
	"blog-game/ws/loto"
	"blog-game/ws/okey"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	utils.InitLogger(os.Getenv("GIN_MODE") != "release")

	repository.InitRedis()
	repository.InitMySQL()

	accounts := service.NewAccountService(repository.NewUserRepo(repository.DB))
	chatHistory := service.NewChatService(repository.NewChatStore(repository.Rdb))

	dominoManager := domino.NewRoomManager()
	okeyManager := okey.NewRoomManager()
	lotoManager := loto.NewRoomManager()

	dominoHub := domino.NewHub(dominoManager, accounts)
	okeyHub := okey.NewHub(okeyManager, accounts)
	lotoHub := loto.NewHub(lotoManager, accounts)
	chatHub := chat.NewHub(accounts, chatHistory)

	stats := controller.NewStatsController(dominoManager, okeyManager, lotoManager, chatHub)

	r := gin.Default()

	// 设置 CORS 中间件，允许所有域名、所有方法、所有 header
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))

	router.InitRouter(r, dominoHub, okeyHub, lotoHub, chatHub, stats)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	zap.S().Infof("🚀 游戏服务启动, 端口 %s", port)
	if err := r.Run(":" + port); err != nil {
		zap.S().Fatalf("服务启动失败: %v", err)
	}
}
