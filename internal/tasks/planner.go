package tasks

import (
	"context"
	"log"
	"time"

	"e_queue/internal/engine"
	"e_queue/internal/models"
	"e_queue/internal/storage"

	"github.com/robfig/cron/v3"
)

// systemStaffID — "сотрудник" для автоматических действий планировщика.
const systemStaffID uint = 0

// shouldAutoOpen решает, пора ли открыть очередь по расписанию: время
// открытия задано и наступило, а время закрытия либо не задано, либо ещё
// не прошло. Очередь без времени открытия открывается только сотрудником.
func shouldAutoOpen(q *models.Queue, now time.Time) bool {
	if q.IsActive || q.OpensAt.IsZero() || q.OpensAt.After(now) {
		return false
	}
	return q.ClosesAt.IsZero() || q.ClosesAt.After(now)
}

// OpenScheduledQueues ищет закрытые очереди, у которых наступило время
// открытия, и открывает их через движок (с рассылкой queue_opened).
func OpenScheduledQueues(eng *engine.Engine) {
	now := time.Now()

	var queues []models.Queue
	if err := storage.DB.
		Where("is_active = ? AND opens_at <= ?", false, now).
		Find(&queues).Error; err != nil {
		log.Println("Ошибка при поиске очередей для открытия:", err)
		return
	}

	for _, q := range queues {
		if !shouldAutoOpen(&q, now) {
			continue
		}
		if err := eng.OpenQueue(context.Background(), q.ID, systemStaffID); err != nil {
			log.Println("Ошибка открытия очереди", q.ID, ":", err)
		} else {
			log.Printf("Очередь '%s' открыта по расписанию.\n", q.Name)
		}
	}
}

// CloseExpiredQueues ищет активные очереди, у которых время работы вышло,
// и закрывает их через движок (с рассылкой queue_closed).
func CloseExpiredQueues(eng *engine.Engine) {
	now := time.Now()

	var queues []models.Queue
	if err := storage.DB.
		Where("is_active = ? AND closes_at <= ?", true, now).
		Find(&queues).Error; err != nil {
		log.Println("Ошибка при поиске очередей для закрытия:", err)
		return
	}

	for _, q := range queues {
		if q.ClosesAt.IsZero() {
			continue
		}
		if err := eng.CloseQueue(context.Background(), q.ID, systemStaffID); err != nil {
			log.Println("Ошибка закрытия очереди", q.ID, ":", err)
		} else {
			log.Printf("Очередь '%s' закрыта по расписанию.\n", q.Name)
		}
	}
}

// CleanOldEntries удаляет записи, завершённые или покинувшие очередь
// больше 30 дней назад.
func CleanOldEntries() {
	threshold := time.Now().Add(-30 * 24 * time.Hour)
	if err := storage.DB.
		Where("(status IN ? OR left_at IS NOT NULL) AND status_changed_at < ?",
			[]string{"served", "missed", "cancelled"}, threshold).
		Delete(&models.QueueEntry{}).Error; err != nil {
		log.Println("Ошибка при удалении устаревших записей очередей:", err)
	} else {
		log.Println("Устаревшие записи очередей успешно удалены.")
	}
}

// InitScheduler инициализирует планировщик cron-задач.
func InitScheduler(eng *engine.Engine) *cron.Cron {
	c := cron.New(cron.WithSeconds())

	// Открытие и закрытие очередей по расписанию — каждую минуту.
	_, err := c.AddFunc("0 * * * * *", func() { OpenScheduledQueues(eng) })
	if err != nil {
		log.Println("Ошибка запуска cron-задачи OpenScheduledQueues:", err)
	}
	_, err = c.AddFunc("30 * * * * *", func() { CloseExpiredQueues(eng) })
	if err != nil {
		log.Println("Ошибка запуска cron-задачи CloseExpiredQueues:", err)
	}

	// Вытеснение простаивающих сессий очередей — каждые 5 минут.
	_, err = c.AddFunc("0 */5 * * * *", func() {
		if n := eng.EvictIdleSessions(); n > 0 {
			log.Printf("Вытеснено простаивающих сессий очередей: %d\n", n)
		}
	})
	if err != nil {
		log.Println("Ошибка запуска cron-задачи EvictIdleSessions:", err)
	}

	// Задача очистки устаревших записей, каждый день в 03:00.
	_, err = c.AddFunc("0 0 3 * * *", CleanOldEntries)
	if err != nil {
		log.Println("Ошибка запуска cron-задачи CleanOldEntries:", err)
	}

	c.Start()
	log.Println("Cron-планировщик запущен.")
	return c
}
