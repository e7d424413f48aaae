package handlers

import (
	"errors"
	"net/http"
	"time"

	"e_queue/internal/engine"
	"e_queue/internal/models"
	"e_queue/internal/response"
	"e_queue/internal/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateQueueRequest struct {
	BusinessID      uint      `json:"business_id" binding:"required"`
	Name            string    `json:"name" binding:"required"`
	OpensAt         time.Time `json:"opens_at"`
	ClosesAt        time.Time `json:"closes_at"`
	MaxParticipants int       `json:"max_participants"`
}

// CreateQueueHandler создаёт очередь заведения
// @Summary		Создание очереди
// @Description	Создаёт новую очередь заведения. Очередь создаётся закрытой, открывается сотрудником или по расписанию
// @Tags			staff
// @Accept			json
// @Produce		json
// @Param			queue	body		CreateQueueRequest	true	"Параметры очереди"
// @Security		BearerAuth
// @Success		201	{object}	response.SuccessResponse	"Очередь создана"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		404	{object}	response.ErrorResponse	"Заведение не найдено (BUSINESS_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/staff/queues [post]
func CreateQueueHandler(c *gin.Context) {
	var req CreateQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	var business models.Business
	if err := storage.DB.First(&business, req.BusinessID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, response.ErrorResponse{
				Code:    "BUSINESS_NOT_FOUND",
				Message: "Заведение не найдено",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при поиске заведения",
			Details: err.Error(),
		})
		return
	}

	queue := models.Queue{
		BusinessID:      req.BusinessID,
		Name:            req.Name,
		OpensAt:         req.OpensAt,
		ClosesAt:        req.ClosesAt,
		MaxParticipants: req.MaxParticipants,
		IsActive:        false,
	}
	if err := storage.DB.Create(&queue).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при создании очереди",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Очередь создана", "queue_id": queue.ID})
}

type WalkInRequest struct {
	GuestName string `json:"guest_name" binding:"required"`
	// Front — явная приоритетная вставка перед всеми ожидающими.
	// По умолчанию walk-in встаёт в хвост, как и обычное вступление.
	Front bool `json:"front"`
}

// AddWalkInHandler добавляет гостя в очередь от имени сотрудника
// @Summary		Добавление walk-in гостя
// @Description	Сотрудник добавляет гостя на месте. Работает и для закрытой очереди. Флаг front — приоритетная вставка перед ожидающими
// @Tags			staff
// @Accept			json
// @Produce		json
// @Param			id		path		string			true	"ID очереди"
// @Param			guest	body		WalkInRequest	true	"Данные гостя"
// @Security		BearerAuth
// @Success		200	{object}	response.EntryResponse	"Гость добавлен с указанием позиции"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (INVALID_QUEUE_ID, QUEUE_FULL)"
// @Failure		404	{object}	response.ErrorResponse	"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/staff/queues/{id}/walkin [post]
func AddWalkInHandler(c *gin.Context) {
	queueID, ok := queueIDParam(c)
	if !ok {
		return
	}
	var req WalkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}
	staffID := c.GetUint("userID")

	entry, err := Engine.AddWalkIn(c.Request.Context(), queueID, staffID, req.GuestName, req.Front)
	if err != nil {
		engineError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.EntryResponse{
		EntryID:  entry.ID,
		Position: entry.Position,
		Status:   string(entry.Status),
		Message:  "Гость добавлен в очередь",
	})
}

// CallNextResponse — результат вызова следующего участника.
type CallNextResponse struct {
	Serving  response.EntryResponse  `json:"serving"`
	Previous *response.EntryResponse `json:"previous,omitempty"`
}

// CallNextHandler вызывает следующего участника к обслуживанию
// @Summary		Вызов следующего участника
// @Description	Переводит ожидающего с наименьшей позицией в serving; текущий обслуживаемый помечается served
// @Tags			staff
// @Accept			json
// @Produce		json
// @Param			id	path		string	true	"ID очереди"
// @Security		BearerAuth
// @Success		200	{object}	CallNextResponse	"Следующий участник вызван"
// @Failure		400	{object}	response.ErrorResponse	"Нет ожидающих (QUEUE_EMPTY) или неверный ID (INVALID_QUEUE_ID)"
// @Failure		404	{object}	response.ErrorResponse	"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/staff/queues/{id}/next [post]
func CallNextHandler(c *gin.Context) {
	queueID, ok := queueIDParam(c)
	if !ok {
		return
	}
	staffID := c.GetUint("userID")

	res, err := Engine.CallNext(c.Request.Context(), queueID, staffID)
	if err != nil {
		engineError(c, err)
		return
	}

	resp := CallNextResponse{
		Serving: response.EntryResponse{
			EntryID:  res.Serving.ID,
			Position: res.Serving.Position,
			Status:   string(res.Serving.Status),
		},
	}
	if res.Previous != nil {
		resp.Previous = &response.EntryResponse{
			EntryID:  res.Previous.ID,
			Position: res.Previous.Position,
			Status:   string(res.Previous.Status),
		}
	}
	c.JSON(http.StatusOK, resp)
}

type SetEntryStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=served missed cancelled"`
}

// SetEntryStatusHandler переводит запись в конечный статус
// @Summary		Завершение записи
// @Description	Сотрудник помечает запись как served, missed или cancelled. Допустимые переходы: waiting - missed/cancelled, serving - served/missed
// @Tags			staff
// @Accept			json
// @Produce		json
// @Param			id		path		string					true	"ID очереди"
// @Param			entryId	path		string					true	"ID записи"
// @Param			status	body		SetEntryStatusRequest	true	"Конечный статус"
// @Security		BearerAuth
// @Success		200	{object}	response.EntryResponse	"Статус записи обновлён"
// @Failure		400	{object}	response.ErrorResponse	"Недопустимый переход (INVALID_TRANSITION) или ошибка валидации"
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (ENTRY_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/staff/queues/{id}/entries/{entryId}/status [post]
func SetEntryStatusHandler(c *gin.Context) {
	queueID, ok := queueIDParam(c)
	if !ok {
		return
	}
	var req SetEntryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}
	staffID := c.GetUint("userID")
	entryID := c.Param("entryId")

	entry, err := Engine.SetEntryStatus(c.Request.Context(), queueID, entryID, engine.Status(req.Status), staffID)
	if err != nil {
		engineError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.EntryResponse{
		EntryID:  entry.ID,
		Position: entry.Position,
		Status:   string(entry.Status),
		Message:  "Статус записи обновлён",
	})
}

// OpenQueueHandler открывает очередь
// @Summary		Открытие очереди
// @Description	Открывает очередь для вступления и уведомляет подписчиков
// @Tags			staff
// @Produce		json
// @Param			id	path		string	true	"ID очереди"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Очередь открыта"
// @Failure		404	{object}	response.ErrorResponse	"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/staff/queues/{id}/open [post]
func OpenQueueHandler(c *gin.Context) {
	queueID, ok := queueIDParam(c)
	if !ok {
		return
	}
	if err := Engine.OpenQueue(c.Request.Context(), queueID, c.GetUint("userID")); err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Очередь открыта"})
}

// CloseQueueHandler закрывает очередь
// @Summary		Закрытие очереди
// @Description	Закрывает очередь: новые вступления отклоняются, стоящих можно обслуживать и отменять
// @Tags			staff
// @Produce		json
// @Param			id	path		string	true	"ID очереди"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Очередь закрыта"
// @Failure		404	{object}	response.ErrorResponse	"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/staff/queues/{id}/close [post]
func CloseQueueHandler(c *gin.Context) {
	queueID, ok := queueIDParam(c)
	if !ok {
		return
	}
	if err := Engine.CloseQueue(c.Request.Context(), queueID, c.GetUint("userID")); err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Очередь закрыта"})
}
