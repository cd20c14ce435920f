package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"solr-admin-go/internal/model"
	"solr-admin-go/internal/service"
	"solr-admin-go/pkg/log"
)

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // 允许所有来源
		},
	}
)

// AIHandler 负责 AI 生成接口（一次性 HTTP 与 WebSocket 流式两种方式）。
type AIHandler struct {
	aiService service.AIService
}

// NewAIHandler 创建一个新的 AIHandler。
func NewAIHandler(aiService service.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// Generate POST /ai/generate，请求体 {"prompt": "...", "config": {...}}。
func (h *AIHandler) Generate(c *gin.Context) {
	var req model.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[AIHandler] 无法解析生成请求: %v", err)
		respondBadRequest(c, "Invalid request body")
		return
	}
	text, err := h.aiService.Generate(upstreamContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// streamMessage 是 WebSocket 上的客户端消息。type 为 "stop" 时中断当前生成，否则视为生成请求。
type streamMessage struct {
	Type string `json:"type"`
	model.GenerateRequest
}

// lockedWriter 保证同一连接上同时只有一个写者。
type lockedWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *lockedWriter) WriteMessage(messageType int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(messageType, data)
}

func (w *lockedWriter) writeJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = w.WriteMessage(websocket.TextMessage, b)
}

func completionMessage() gin.H {
	return gin.H{
		"type":      "completion",
		"status":    "finished",
		"timestamp": time.Now().UnixMilli(),
	}
}

// Stream GET /ai/generate/stream
// 每条生成请求的分块以文本帧写回，结束时发送 completion 通知；出错时先发送 {"error": ...}。
func (h *AIHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("[AIHandler] WebSocket 升级失败", err)
		return
	}
	defer conn.Close()
	log.Infof("[AIHandler] WebSocket 连接已建立: %s", c.ClientIP())

	writer := &lockedWriter{conn: conn}

	var (
		mu     sync.Mutex
		cancel context.CancelFunc
	)
	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		if cancel != nil {
			cancel()
			cancel = nil
		}
	}
	defer stop()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Infof("[AIHandler] WebSocket 连接关闭: %v", err)
			return
		}

		var msg streamMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			writer.writeJSON(gin.H{"error": "Invalid message"})
			continue
		}
		if msg.Type == "stop" {
			log.Info("[AIHandler] 收到停止指令，正在中断流式响应...")
			stop()
			writer.writeJSON(gin.H{"type": "stop", "message": "Generation stopped"})
			continue
		}

		// 同一连接上只保留最新的一次生成
		stop()
		ctx, cancelFn := context.WithCancel(context.Background())
		mu.Lock()
		cancel = cancelFn
		mu.Unlock()

		go func(req model.GenerateRequest) {
			defer cancelFn()
			if err := h.aiService.StreamGenerate(ctx, req, writer); err != nil && ctx.Err() == nil {
				apiErr := service.TranslateError(err, service.Scope{})
				writer.writeJSON(gin.H{"error": apiErr.Message})
			}
			writer.writeJSON(completionMessage())
		}(msg.GenerateRequest)
	}
}
