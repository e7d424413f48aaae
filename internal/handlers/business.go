package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"e_queue/internal/models"
	"e_queue/internal/response"
	"e_queue/internal/storage"

	"github.com/gin-gonic/gin"
)

var ctx = context.Background()

const businessCacheKey = "businesses_all"

type BusinessItem struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type BusinessListResponse struct {
	Items []BusinessItem `json:"items"`
	Total int            `json:"total"`
}

// GetBusinessesHandler обрабатывает запрос на получение списка заведений
// @Summary		Получение списка заведений
// @Description	Получает список всех заведений, кэширует результат в Redis
// @Tags			business
// @Accept			json
// @Produce		json
// @Success		200		{object}	BusinessListResponse	"Успешный ответ со списком заведений"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/businesses [get]
func GetBusinessesHandler(c *gin.Context) {
	redisClient := storage.RedisClient

	// Проверка кэша
	if redisClient != nil {
		cached, err := redisClient.Get(ctx, businessCacheKey).Result()
		if err == nil && cached != "" {
			var resp BusinessListResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	var businesses []models.Business
	if err := storage.DB.Order("id ASC").Find(&businesses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки списка заведений",
			Details: err.Error(),
		})
		return
	}

	resp := BusinessListResponse{Items: make([]BusinessItem, 0, len(businesses))}
	for _, b := range businesses {
		resp.Items = append(resp.Items, BusinessItem{ID: b.ID, Name: b.Name, Address: b.Address})
	}
	resp.Total = len(resp.Items)

	// Кэширование результата
	if redisClient != nil {
		if payload, err := json.Marshal(resp); err == nil {
			redisClient.Set(ctx, businessCacheKey, string(payload), time.Hour)
		}
	}

	c.JSON(http.StatusOK, resp)
}

type CreateBusinessRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

// CreateBusinessHandler создаёт заведение
// @Summary		Создание заведения
// @Description	Создаёт заведение, к которому привязываются очереди. Сбрасывает кэш списка
// @Tags			business
// @Accept			json
// @Produce		json
// @Param			business	body		CreateBusinessRequest	true	"Данные заведения"
// @Security		BearerAuth
// @Success		201	{object}	response.SuccessResponse	"Заведение создано"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/staff/businesses [post]
func CreateBusinessHandler(c *gin.Context) {
	var req CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	business := models.Business{Name: req.Name, Address: req.Address}
	if err := storage.DB.Create(&business).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при создании заведения",
			Details: err.Error(),
		})
		return
	}

	// Сбрасываем кэш списка заведений.
	if storage.RedisClient != nil {
		storage.RedisClient.Del(ctx, businessCacheKey)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Заведение создано", "business_id": business.ID})
}
