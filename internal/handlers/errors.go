package handlers

import (
	"errors"
	"net/http"

	"e_queue/internal/engine"
	"e_queue/internal/response"

	"github.com/gin-gonic/gin"
)

// Engine — экземпляр движка очередей, устанавливается в main.
var Engine *engine.Engine

// engineError отдаёт ошибку движка клиенту, сохраняя её машинный код.
// Ошибки, не входящие в таксономию движка, считаются ошибками БД/сервера.
func engineError(c *gin.Context, err error) {
	var engErr *engine.Error
	if !errors.As(err, &engErr) {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Внутренняя ошибка при работе с очередью",
			Details: err.Error(),
		})
		return
	}

	status := http.StatusBadRequest
	switch engErr {
	case engine.ErrQueueNotFound, engine.ErrEntryNotFound:
		status = http.StatusNotFound
	case engine.ErrConcurrencyConflict:
		status = http.StatusConflict
	}

	c.JSON(status, response.ErrorResponse{
		Code:    engErr.Code,
		Message: engErr.Message,
	})
}
