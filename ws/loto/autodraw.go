package loto

import (
	"context"
	"time"

	"blog-game/entities"
	"blog-game/ws"

	"go.uber.org/zap"
)

// startAutoDraw 启动该房间的自动开号循环；
// 取消函数挂在房间上，满卡、清场或删房时统一取消。
func (h *Hub) startAutoDraw(room *entities.LotoRoom) {
	ctx, cancel := context.WithCancel(context.Background())

	room.StateLock.Lock()
	room.CancelDraw() // 不留上一局的残余任务
	room.DrawCancel = cancel
	interval := room.AutoDrawInterval
	room.StateLock.Unlock()

	go h.drawLoop(ctx, room, interval)
}

func (h *Hub) drawLoop(ctx context.Context, room *entities.LotoRoom, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			out := DrawNumber(room)
			if !out.Ok {
				// 有人满卡或房间被清，循环收工
				return
			}

			h.broadcastRoom(room, ws.BuildMessage("NumberDrawn", map[string]interface{}{
				"number":    out.Number,
				"remaining": out.Remaining,
			}))

			if out.Exhausted {
				zap.S().Infof("🎱 Loto号抽完无人满卡: %s", room.RoomID)
				h.broadcastRoom(room, ws.BuildMessage("GameOver", map[string]interface{}{
					"winnerName": "",
					"reason":     "号码已全部开出",
				}))
				time.AfterFunc(roomResetDelay, func() { h.resetRoom(room) })
				return
			}
		}
	}
}
