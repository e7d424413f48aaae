package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"e_queue/internal/engine"
	"e_queue/internal/handlers"
	"e_queue/internal/models"
	"e_queue/internal/storage"
	"e_queue/internal/tasks"
	"e_queue/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func AuthMiddlewareTest() gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDStr := c.Request.Header.Get("X-Test-UserID")
		if userIDStr == "" {
			// Значение по умолчанию
			c.Set("userID", uint(1))
		} else {
			id, err := strconv.Atoi(userIDStr)
			if err != nil {
				c.Set("userID", uint(1))
			} else {
				c.Set("userID", uint(id))
			}
		}
		c.Set("role", models.RoleStaff)
		c.Next()
	}
}

func setupTestServer() *httptest.Server {
	storage.ConnectTestingDatabase()
	storage.DB.Exec("TRUNCATE TABLE users, businesses, queues, queue_entries RESTART IDENTITY CASCADE;")

	if err := storage.DB.AutoMigrate(&models.User{}, &models.Business{}, &models.Queue{}, &models.QueueEntry{}); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}

	storage.InitRedis()

	go ws.HubInstance.Run()
	handlers.Engine = engine.New(func(queueID uint) engine.Ledger {
		return engine.NewGormLedger(storage.DB, queueID)
	}, ws.HubInstance, 30*time.Minute)
	tasks.InitScheduler(handlers.Engine)

	r := gin.Default()

	r.GET("/api/queues/:id/status", handlers.GetQueueStatusHandler)
	r.GET("/api/queues/:id/ws", ws.QueueWebSocketHandler)
	queues := r.Group("/api/queues", AuthMiddlewareTest())
	{
		queues.POST("/:id/join", handlers.JoinQueueHandler)
		queues.POST("/:id/leave", handlers.LeaveQueueHandler)
	}
	staff := r.Group("/api/staff", AuthMiddlewareTest())
	{
		staff.POST("/queues/:id/walkin", handlers.AddWalkInHandler)
		staff.POST("/queues/:id/next", handlers.CallNextHandler)
		staff.POST("/queues/:id/entries/:entryId/status", handlers.SetEntryStatusHandler)
		staff.POST("/queues/:id/open", handlers.OpenQueueHandler)
		staff.POST("/queues/:id/close", handlers.CloseQueueHandler)
	}

	return httptest.NewServer(r)
}

func TestQueueFlow(t *testing.T) {
	if os.Getenv("ENV_CHEK") == "" {
		godotenv.Load("../.env")
	}
	if os.Getenv("TEST_DB_HOST") == "" {
		t.Skip("TEST_DB_HOST не задан — пропускаем интеграционный тест")
	}

	ts := setupTestServer()
	defer ts.Close()

	// 1. Создаем тестовое заведение и открытую очередь вручную.
	now := time.Now()
	business := models.Business{Name: "Тестовая клиника", Address: "ул. Тестовая, 1"}
	err := storage.DB.Create(&business).Error
	assert.NoError(t, err, "Ошибка создания тестового заведения")

	queue := models.Queue{
		BusinessID: business.ID,
		Name:       "Приём",
		OpensAt:    now,
		ClosesAt:   now.Add(time.Hour),
		IsActive:   true,
	}
	err = storage.DB.Create(&queue).Error
	assert.NoError(t, err, "Ошибка создания тестовой очереди")
	log.Println("Тестовая очередь создана, ID:", queue.ID)

	// 2. Регистрируем двух тестовых пользователей с уникальными email.
	user1 := models.User{Name: "Иван", Surname: "Иванов", Email: fmt.Sprintf("ivan_%d@example.com", now.UnixNano()), PasswordHash: "hashed123"}
	user2 := models.User{Name: "Петр", Surname: "Петров", Email: fmt.Sprintf("petr_%d@example.com", now.UnixNano()), PasswordHash: "hashed456"}
	err = storage.DB.Create(&user1).Error
	assert.NoError(t, err, "Ошибка создания пользователя 1")
	err = storage.DB.Create(&user2).Error
	assert.NoError(t, err, "Ошибка создания пользователя 2")

	queueID := strconv.Itoa(int(queue.ID))
	joinURL := ts.URL + "/api/queues/" + queueID + "/join"

	joinAs := func(userID uint) (*http.Response, map[string]interface{}) {
		req, _ := http.NewRequest("POST", joinURL, nil)
		req.Header.Set("X-Test-UserID", fmt.Sprintf("%d", userID))
		res, err := http.DefaultClient.Do(req)
		assert.NoError(t, err, "Ошибка запроса join")
		var body map[string]interface{}
		json.NewDecoder(res.Body).Decode(&body)
		res.Body.Close()
		return res, body
	}

	// 3. Вступление двух пользователей: позиции 1 и 2.
	res1, body1 := joinAs(user1.ID)
	assert.Equal(t, http.StatusOK, res1.StatusCode, "Пользователь 1 не смог присоединиться к очереди")
	assert.Equal(t, float64(1), body1["position"], "Неверная позиция пользователя 1")

	res2, body2 := joinAs(user2.ID)
	assert.Equal(t, http.StatusOK, res2.StatusCode, "Пользователь 2 не смог присоединиться к очереди")
	assert.Equal(t, float64(2), body2["position"], "Неверная позиция пользователя 2")

	// Повторное вступление отклоняется со стабильным кодом.
	resDup, bodyDup := joinAs(user1.ID)
	assert.Equal(t, http.StatusBadRequest, resDup.StatusCode, "Повторное вступление должно быть отклонено")
	assert.Equal(t, "ALREADY_IN_QUEUE", bodyDup["code"], "Неверный код ошибки повторного вступления")

	// 4. Проверка состояния очереди через HTTP GET /api/queues/:id/status
	statusRes, err := http.Get(ts.URL + "/api/queues/" + queueID + "/status")
	assert.NoError(t, err, "Ошибка запроса статуса очереди")
	var statusResponse map[string]interface{}
	json.NewDecoder(statusRes.Body).Decode(&statusResponse)
	statusRes.Body.Close()
	assert.Equal(t, http.StatusOK, statusRes.StatusCode, "Ошибка получения статуса очереди")
	participants, ok := statusResponse["participants"].([]interface{})
	assert.True(t, ok, "В ответе статуса очереди отсутствует поле participants")
	assert.Equal(t, 2, len(participants), "Количество участников в очереди неверное")

	// 5. Подключаем WS-подписчика к очереди.
	wsURL := "ws" + ts.URL[4:] + "/api/queues/" + queueID + "/ws"
	wsConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NoError(t, err, "Ошибка подключения к WS")
	defer wsConn.Close()

	readEvent := func() map[string]interface{} {
		wsConn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, message, err := wsConn.ReadMessage()
		assert.NoError(t, err, "Ошибка чтения WS сообщения")
		var msg map[string]interface{}
		assert.NoError(t, json.Unmarshal(message, &msg), "Ошибка разбора WS сообщения")
		return msg
	}

	// 6. Сотрудник вызывает следующего: пользователь 1 переходит в serving.
	nextReq, _ := http.NewRequest("POST", ts.URL+"/api/staff/queues/"+queueID+"/next", nil)
	nextRes, err := http.DefaultClient.Do(nextReq)
	assert.NoError(t, err, "Ошибка запроса next")
	var nextBody map[string]interface{}
	json.NewDecoder(nextRes.Body).Decode(&nextBody)
	nextRes.Body.Close()
	assert.Equal(t, http.StatusOK, nextRes.StatusCode, "Вызов следующего участника не удался")

	advanced := readEvent()
	assert.Equal(t, "serving_advanced", advanced["event_type"], "Неверный тип WS сообщения после вызова")

	// 7. Сотрудник добавляет walk-in гостя.
	walkinBody, _ := json.Marshal(map[string]interface{}{"guest_name": "Гость Кассы"})
	walkinReq, _ := http.NewRequest("POST", ts.URL+"/api/staff/queues/"+queueID+"/walkin", bytes.NewReader(walkinBody))
	walkinReq.Header.Set("Content-Type", "application/json")
	walkinRes, err := http.DefaultClient.Do(walkinReq)
	assert.NoError(t, err, "Ошибка запроса walkin")
	walkinRes.Body.Close()
	assert.Equal(t, http.StatusOK, walkinRes.StatusCode, "Добавление walk-in гостя не удалось")

	joined := readEvent()
	assert.Equal(t, "entry_joined", joined["event_type"], "Неверный тип WS сообщения после walk-in")

	// 8. Симулируем автоматическое закрытие очереди по расписанию.
	log.Println("Симуляция закрытия очереди: обновляем closes_at на прошлое время")
	storage.DB.Model(&models.Queue{}).Where("id = ?", queue.ID).Update("closes_at", time.Now().Add(-1*time.Minute))
	tasks.CloseExpiredQueues(handlers.Engine)

	closedMsg := readEvent()
	assert.Equal(t, "queue_closed", closedMsg["event_type"], "Неверный тип WS сообщения после закрытия очереди")

	// Вступление в закрытую очередь отклоняется.
	resClosed, bodyClosed := joinAs(user1.ID)
	assert.Equal(t, http.StatusBadRequest, resClosed.StatusCode)
	assert.Equal(t, "QUEUE_CLOSED", bodyClosed["code"], "Неверный код ошибки закрытой очереди")
}
