// Package wshub 按主题（战斗 ID）分组的 websocket 广播中心
package wshub

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"robot-arena/internal/pkg/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// Upgrader 观战端不带凭证，允许任意来源
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub 管理全部订阅连接
type Hub struct {
	logger log.Logger

	mu     sync.RWMutex
	topics map[string]map[*client]struct{}
}

// NewHub 创建广播中心
func NewHub(logger log.Logger) *Hub {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Hub{
		logger: logger.With("component", "wshub"),
		topics: make(map[string]map[*client]struct{}),
	}
}

type client struct {
	hub   *Hub
	topic string
	conn  *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// Serve 把已升级的连接挂到 topic 下，initial 非空时作为第一条消息发送
// 阻塞直到连接关闭
func (h *Hub) Serve(topic string, conn *websocket.Conn, initial []byte) {
	c := &client{
		hub:   h,
		topic: topic,
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
	}
	if len(initial) > 0 {
		c.send <- initial
	}

	h.mu.Lock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*client]struct{})
		h.topics[topic] = subs
	}
	subs[c] = struct{}{}
	h.mu.Unlock()

	go c.writePump()
	c.readPump()
}

// Broadcast 向 topic 下所有连接发送消息；发送缓冲已满的慢连接会被断开
func (h *Hub) Broadcast(topic string, message []byte) {
	h.mu.RLock()
	var slow []*client
	for c := range h.topics[topic] {
		if !c.trySend(message) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("观战连接发送缓冲已满，断开", "topic", topic)
		h.remove(c)
	}
}

// CloseTopic 发送最后一条消息后关闭 topic 下所有连接
func (h *Hub) CloseTopic(topic string, final []byte) {
	h.mu.Lock()
	subs := h.topics[topic]
	delete(h.topics, topic)
	h.mu.Unlock()

	for c := range subs {
		if len(final) > 0 {
			c.trySend(final)
		}
		c.close()
	}
}

// Subscribers 返回 topic 下的连接数
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Close 关闭全部连接
func (h *Hub) Close() {
	h.mu.Lock()
	topics := h.topics
	h.topics = make(map[string]map[*client]struct{})
	h.mu.Unlock()

	for _, subs := range topics {
		for c := range subs {
			c.close()
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if subs, ok := h.topics[c.topic]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, c.topic)
		}
	}
	h.mu.Unlock()
	c.close()
}

// trySend 非阻塞投递，连接已关闭或缓冲已满时返回 false
func (c *client) trySend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// close 关闭 send 通道，writePump 发出 close 帧后退出
func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump 只处理 pong 与关闭，观战端发来的内容一律丢弃
func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("观战连接异常关闭", "topic", c.topic, "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
