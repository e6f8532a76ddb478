package chat

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/onboard/internal/channel"
	"github.com/zhouzirui/onboard/internal/model/chat"
	"github.com/zhouzirui/onboard/internal/service/onboarding"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
	replyTimeout = 30 * time.Second
)

// FailureReply is sent when a turn could not be processed.
const FailureReply = "Sorry, something went wrong on our side. Please try that again."

// WebSocketHandler 处理 onboarding 聊天的 WebSocket 连接。
type WebSocketHandler struct {
	svc      *onboarding.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(svc *onboarding.Service) *WebSocketHandler {
	return &WebSocketHandler{
		svc: svc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/chat/", h.handleWebSocket)
	r.Get("/ws/chat", h.handleWebSocket)
}

// wsConn serializes data frame writes; gorilla allows one concurrent writer.
type wsConn struct {
	*websocket.Conn
	writeMu sync.Mutex
}

func (c *wsConn) send(text string) error {
	frame, err := channel.EncodeEnvelope(chat.Envelope{Message: text})
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteMessage(websocket.TextMessage, frame)
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		http.Error(w, "onboarding service unavailable", http.StatusServiceUnavailable)
		return
	}

	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	conn := &wsConn{Conn: raw}
	defer conn.Close()

	// 服务关闭或连接断开时取消进行中的模型调用。
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conv, err := h.svc.Start(ctx)
	if err != nil {
		log.Printf("[websocket] start conversation failed: %v", err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "session unavailable"),
			time.Now().Add(writeWait))
		return
	}
	log.Printf("[websocket] new connection session=%s remote=%s", conv.ID(), r.RemoteAddr)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go h.pingLoop(ctx, conn)

	if err := conn.send(chat.ConnectedNotice); err != nil {
		log.Printf("[websocket] write greeting failed: %v", err)
		return
	}

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error session=%s: %v", conv.ID(), err)
			}
			log.Printf("[websocket] disconnected session=%s", conv.ID())
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		env, err := channel.DecodeEnvelope(frame)
		if err != nil {
			log.Printf("[websocket] skip frame session=%s: %v", conv.ID(), err)
			continue
		}

		if err := conn.send(h.reply(ctx, conv, env.Message)); err != nil {
			log.Printf("[websocket] write reply failed session=%s: %v", conv.ID(), err)
			return
		}
	}
}

func (h *WebSocketHandler) reply(ctx context.Context, conv *onboarding.Conversation, text string) string {
	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	reply, err := conv.Reply(ctx, text)
	if err != nil {
		log.Printf("[websocket] reply failed session=%s: %v", conv.ID(), err)
		return FailureReply
	}
	return reply
}

// pingLoop 定期发送ping消息
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *wsConn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// 服务关闭时通知客户端并断开，阻塞中的 ReadMessage 随之返回。
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			conn.Close()
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
