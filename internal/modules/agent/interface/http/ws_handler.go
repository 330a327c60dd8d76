package http

import (
	"net/http"
	"strings"

	"StorePilot/pkg/back"
	"StorePilot/pkg/ws"
	"StorePilot/pkg/xerr"
	"StorePilot/pkg/zlog"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WsHandler 审批结果实时推送通道
type WsHandler struct {
	hub *ws.Hub
}

// NewWsHandler 创建WsHandler
func NewWsHandler(hub *ws.Hub) *WsHandler {
	return &WsHandler{hub: hub}
}

// Connect 建立 WebSocket 连接，动作到达终态时服务端推送 action_resolved 事件
//
// 路由: GET /agent/ws
func (h *WsHandler) Connect(c *gin.Context) {
	uuid := strings.TrimSpace(c.GetString("uuid"))
	if uuid == "" {
		back.Error(c, xerr.Unauthorized, "未登录")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zlog.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := ws.NewClient(uuid, conn)
	h.hub.Register(client)
	go client.WritePump()

	// 读循环只用于感知断连
	go func() {
		defer h.hub.Unregister(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
