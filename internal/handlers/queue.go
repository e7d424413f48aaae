package handlers

import (
	"net/http"
	"strconv"
	"time"

	"e_queue/internal/engine"
	"e_queue/internal/models"
	"e_queue/internal/response"
	"e_queue/internal/storage"

	"github.com/gin-gonic/gin"
)

func queueIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_QUEUE_ID",
			Message: "Неверный идентификатор очереди",
		})
		return 0, false
	}
	return uint(id), true
}

// JoinQueueHandler обрабатывает запрос на вступление в очередь
// @Summary		Вступление в очередь
// @Description	Ставит пользователя в хвост очереди и уведомляет подписчиков
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			id	path		string	true	"ID очереди"
// @Security		BearerAuth
// @Success		200	{object}	response.EntryResponse	"Успешное вступление в очередь с указанием позиции"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (INVALID_QUEUE_ID, ALREADY_IN_QUEUE, QUEUE_CLOSED, QUEUE_FULL)"
// @Failure		404	{object}	response.ErrorResponse	"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues/{id}/join [post]
func JoinQueueHandler(c *gin.Context) {
	queueID, ok := queueIDParam(c)
	if !ok {
		return
	}
	userID := c.GetUint("userID")

	entry, err := Engine.Join(c.Request.Context(), queueID, userID)
	if err != nil {
		engineError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.EntryResponse{
		EntryID:  entry.ID,
		Position: entry.Position,
		Status:   string(entry.Status),
		Message:  "Вступление в очередь прошло успешно",
	})
}

// LeaveQueueHandler обрабатывает запрос на выход из очереди
// @Summary		Выход из очереди
// @Description	Выводит пользователя из очереди; ожидающие позади сдвигаются вниз
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			id	path		string	true	"ID очереди"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Успешный выход из очереди"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (INVALID_QUEUE_ID, INVALID_TRANSITION)"
// @Failure		404	{object}	response.ErrorResponse	"Активная запись не найдена (ENTRY_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues/{id}/leave [post]
func LeaveQueueHandler(c *gin.Context) {
	queueID, ok := queueIDParam(c)
	if !ok {
		return
	}
	userID := c.GetUint("userID")

	if _, err := Engine.Leave(c.Request.Context(), queueID, userID); err != nil {
		engineError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Вы успешно вышли из очереди"})
}

type Participant struct {
	EntryID   string `json:"entry_id"`
	UserID    *uint  `json:"user_id,omitempty"`
	Name      string `json:"name"`
	Surname   string `json:"surname,omitempty"`
	Position  int    `json:"position"`
	Status    string `json:"status"`
	WalkIn    bool   `json:"walk_in"`
	EnteredAt string `json:"entered_at"`
}

// QueueStatusResponse содержит статус очереди, список активных участников
// и обслуживаемую запись, если есть.
type QueueStatusResponse struct {
	QueueID         uint          `json:"queue_id"`
	BusinessID      uint          `json:"business_id"`
	Name            string        `json:"name"`
	IsActive        bool          `json:"is_active"`
	MaxParticipants int           `json:"max_participants"`
	Participants    []Participant `json:"participants"`
	Serving         *Participant  `json:"serving,omitempty"`
}

// GetQueueStatusHandler обрабатывает запрос на получение статуса очереди
// @Summary		Получение статуса очереди
// @Description	Возвращает согласованный срез очереди: активные записи по позициям и обслуживаемую запись
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			id	path		string	true	"ID очереди"
// @Success		200	{object}	QueueStatusResponse	"Успешное получение статуса очереди"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (INVALID_QUEUE_ID)"
// @Failure		404	{object}	response.ErrorResponse	"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues/{id}/status [get]
func GetQueueStatusHandler(c *gin.Context) {
	queueID, ok := queueIDParam(c)
	if !ok {
		return
	}

	snap, err := Engine.Snapshot(c.Request.Context(), queueID)
	if err != nil {
		engineError(c, err)
		return
	}

	// Метаданные очереди (название, заведение) движок не хранит — читаем модель.
	var queue models.Queue
	if err := storage.DB.First(&queue, queueID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "QUEUE_NOT_FOUND",
			Message: "Очередь не найдена",
		})
		return
	}

	// Подтягиваем имена зарегистрированных участников одним запросом.
	var userIDs []uint
	for _, e := range snap.Entries {
		if e.UserID != nil {
			userIDs = append(userIDs, *e.UserID)
		}
	}
	userMap := make(map[uint]models.User)
	if len(userIDs) > 0 {
		var users []models.User
		if err := storage.DB.Where("id IN ?", userIDs).Find(&users).Error; err == nil {
			for _, u := range users {
				userMap[u.ID] = u
			}
		}
	}

	toParticipant := func(e engine.Entry) Participant {
		p := Participant{
			EntryID:   e.ID,
			UserID:    e.UserID,
			Name:      e.GuestName,
			Position:  e.Position,
			Status:    string(e.Status),
			WalkIn:    e.WalkIn,
			EnteredAt: e.EnteredAt.Format(time.RFC3339),
		}
		if e.UserID != nil {
			if u, ok := userMap[*e.UserID]; ok {
				p.Name = u.Name
				p.Surname = u.Surname
			}
		}
		return p
	}

	resp := QueueStatusResponse{
		QueueID:         queue.ID,
		BusinessID:      queue.BusinessID,
		Name:            queue.Name,
		IsActive:        snap.Queue.Active,
		MaxParticipants: snap.Queue.Capacity,
		Participants:    make([]Participant, 0, len(snap.Entries)),
	}
	for _, e := range snap.Entries {
		resp.Participants = append(resp.Participants, toParticipant(e))
	}
	if snap.Serving != nil {
		p := toParticipant(*snap.Serving)
		resp.Serving = &p
	}

	c.JSON(http.StatusOK, resp)
}
