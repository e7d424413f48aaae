package handlers

import (
	"net/http"
	"time"

	"e_queue/internal/models"
	"e_queue/internal/response"
	"e_queue/internal/storage"

	"github.com/gin-gonic/gin"
)

// UserQueueItem represents a single queue entry with all required details
type UserQueueItem struct {
	QueueID      uint   `json:"queue_id"`
	QueueName    string `json:"queue_name"`
	BusinessID   uint   `json:"business_id"`
	BusinessName string `json:"business_name"`
	EntryID      string `json:"entry_id"`
	Position     int    `json:"position"`
	Status       string `json:"status"`
	EnteredAt    string `json:"entered_at"`
	IsActive     bool   `json:"is_active"`
}

// GetUserQueuesHandler godoc
// @Summary		Получение списка своих очередей
// @Description	Получение списка очередей, в которых пользователь сейчас стоит или обслуживается
// @Tags			profile
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Success		200	{array}		UserQueueItem	"List of queues the user is part of"
// @Failure		500	{object}	response.ErrorResponse	"Server error (DB_ERROR)"
// @Router			/profile/queues [get]
func GetUserQueuesHandler(c *gin.Context) {
	userID := c.GetUint("userID")

	// Get all active queue entries for the user
	var queueEntries []models.QueueEntry
	if err := storage.DB.
		Where("user_id = ? AND left_at IS NULL AND status IN ?", userID,
			[]string{"waiting", "serving"}).
		Find(&queueEntries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Error fetching user queue entries",
			Details: err.Error(),
		})
		return
	}

	if len(queueEntries) == 0 {
		c.JSON(http.StatusOK, []UserQueueItem{})
		return
	}

	// Extract queue IDs
	var queueIDs []uint
	for _, entry := range queueEntries {
		queueIDs = append(queueIDs, entry.QueueID)
	}

	// Get queue details with the owning business
	var queues []models.Queue
	if err := storage.DB.
		Preload("Business").
		Where("id IN ?", queueIDs).
		Find(&queues).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Error fetching queue details",
			Details: err.Error(),
		})
		return
	}

	// Create a map for quick lookup
	queueMap := make(map[uint]models.Queue)
	for _, q := range queues {
		queueMap[q.ID] = q
	}

	// Build response
	var result []UserQueueItem
	for _, entry := range queueEntries {
		queue, queueExists := queueMap[entry.QueueID]
		if !queueExists {
			continue
		}

		item := UserQueueItem{
			QueueID:      queue.ID,
			QueueName:    queue.Name,
			BusinessID:   queue.BusinessID,
			BusinessName: queue.Business.Name,
			EntryID:      entry.EntryID,
			Position:     entry.Position,
			Status:       entry.Status,
			EnteredAt:    entry.CreatedAt.Format(time.RFC3339),
			IsActive:     queue.IsActive,
		}

		result = append(result, item)
	}

	c.JSON(http.StatusOK, result)
}
