package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"e_queue/internal/engine"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Hub хранит подписчиков, сгруппированных по queueID, и рассылает им события
// движка в порядке публикации. Подписчики двух видов: WebSocket-клиенты и
// локальные канальные подписчики (фасад движка). Доставка best-effort —
// отстающий клиент отключается и события теряет.
type Hub struct {
	// Для каждой очереди храним множество подключений.
	clients map[uint]map[*Client]bool
	// Локальные подписчики (каналы событий внутри процесса).
	local map[uint]map[chan engine.Event]bool
	// Канал для регистрации нового клиента.
	register chan *Client
	// Канал для удаления клиента.
	unregister chan *Client
	// Канал для трансляции событий. Один канал на весь хаб: порядок
	// публикации равен порядку доставки.
	broadcast chan engine.Event
	// Mutex для защиты карт подписчиков.
	mu sync.RWMutex
}

// Глобальный экземпляр хаба.
var HubInstance = NewHub()

// NewHub создает новый Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		local:      make(map[uint]map[chan engine.Event]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan engine.Event, 256),
	}
}

// Run запускает цикл обработки каналов хаба.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.QueueID] == nil {
				h.clients[client.QueueID] = make(map[*Client]bool)
			}
			h.clients[client.QueueID][client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.QueueID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.QueueID)
					}
				}
			}
			h.mu.Unlock()
		case ev := <-h.broadcast:
			h.deliver(ev)
		}
	}
}

func (h *Hub) deliver(ev engine.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Println("Ошибка сериализации события очереди:", err)
		return
	}
	h.mu.Lock()
	if clients, ok := h.clients[ev.QueueID]; ok {
		for client := range clients {
			select {
			case client.Send <- payload:
			default:
				close(client.Send)
				delete(clients, client)
			}
		}
	}
	if subs, ok := h.local[ev.QueueID]; ok {
		for ch := range subs {
			select {
			case ch <- ev:
			default:
				// Отставший подписчик событие теряет (доставка не более одного раза).
			}
		}
	}
	h.mu.Unlock()
}

// Publish реализует engine.Broadcaster.
func (h *Hub) Publish(ev engine.Event) {
	h.broadcast <- ev
}

// Subscribe подключает локального подписчика к событиям очереди.
// Возвращает канал событий и функцию отписки.
func (h *Hub) Subscribe(queueID uint) (<-chan engine.Event, func()) {
	ch := make(chan engine.Event, 64)
	h.mu.Lock()
	if h.local[queueID] == nil {
		h.local[queueID] = make(map[chan engine.Event]bool)
	}
	h.local[queueID][ch] = true
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if subs, ok := h.local[queueID]; ok {
			if subs[ch] {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(h.local, queueID)
				}
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Subscribers возвращает число подписчиков очереди (ws-клиенты + локальные).
func (h *Hub) Subscribers(queueID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[queueID]) + len(h.local[queueID])
}

// Client представляет одно подключение через WebSocket.
type Client struct {
	Hub     *Hub
	Conn    *websocket.Conn
	Send    chan []byte
	QueueID uint
}

// readPump читает сообщения из WebSocket-соединения.
// Входящие сообщения не обрабатываются — отслеживаем только разрыв соединения.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump отправляет сообщения клиенту из канала Send.
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Канал закрыт.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			// Отправка ping-сообщения для поддержания соединения.
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Настраиваем апгрейдер для WebSocket с разрешением всех источников.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// QueueWebSocketHandler обновляет соединение до WebSocket и регистрирует клиента в Hub.
// URL-пример: /api/queues/{id}/ws
func QueueWebSocketHandler(c *gin.Context) {
	queueID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный идентификатор очереди"})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		http.Error(c.Writer, "Ошибка обновления до WebSocket", http.StatusInternalServerError)
		return
	}
	client := &Client{
		Hub:     HubInstance,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		QueueID: uint(queueID),
	}
	HubInstance.register <- client

	// Запускаем горутины для отправки и приема сообщений
	go client.writePump()
	client.readPump()
}
