package engine

import (
	"context"
	"errors"
	"time"

	"e_queue/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormLedger — долговечная реализация Ledger поверх PostgreSQL/GORM.
// Каждая операция выполняется в одной транзакции; сериализацию составных
// операций обеспечивает сессия очереди, поэтому блокировки строк не нужны.
type gormLedger struct {
	db      *gorm.DB
	queueID uint
}

// NewGormLedger создаёт ledger очереди queueID поверх db.
func NewGormLedger(db *gorm.DB, queueID uint) Ledger {
	return &gormLedger{db: db, queueID: queueID}
}

// activeScope отбирает нетерминальные записи очереди, не покинувшие её.
func (l *gormLedger) activeScope(tx *gorm.DB) *gorm.DB {
	return tx.Model(&models.QueueEntry{}).
		Where("queue_id = ? AND left_at IS NULL AND status IN ?", l.queueID,
			[]string{string(StatusWaiting), string(StatusServing)})
}

func (l *gormLedger) loadQueue(tx *gorm.DB) (*models.Queue, error) {
	var q models.Queue
	if err := tx.First(&q, l.queueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQueueNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (l *gormLedger) State(ctx context.Context) (QueueState, error) {
	q, err := l.loadQueue(l.db.WithContext(ctx))
	if err != nil {
		return QueueState{}, err
	}
	return QueueState{ID: q.ID, Active: q.IsActive, Capacity: q.MaxParticipants}, nil
}

func (l *gormLedger) SetState(ctx context.Context, active bool) (bool, error) {
	changed := false
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := l.loadQueue(tx)
		if err != nil {
			return err
		}
		if q.IsActive == active {
			return nil
		}
		changed = true
		return tx.Model(q).Update("is_active", active).Error
	})
	return changed, err
}

func (l *gormLedger) Append(ctx context.Context, ne NewEntry) (*Entry, error) {
	var entry *Entry
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := l.loadQueue(tx)
		if err != nil {
			return err
		}
		if !q.IsActive && !ne.WalkIn {
			return ErrQueueClosed
		}

		if ne.UserID != nil {
			var existing models.QueueEntry
			if err := l.activeScope(tx).Where("user_id = ?", *ne.UserID).
				First(&existing).Error; err == nil {
				return ErrAlreadyInQueue
			}
		}

		var active int64
		if err := l.activeScope(tx).Count(&active).Error; err != nil {
			return err
		}
		if q.MaxParticipants > 0 && active >= int64(q.MaxParticipants) {
			return ErrQueueFull
		}

		var maxPos int
		row := l.activeScope(tx).Select("COALESCE(MAX(position),0)").Row()
		_ = row.Scan(&maxPos)
		pos := maxPos + 1

		if ne.Front {
			var minWaiting int
			row := l.activeScope(tx).Where("status = ?", string(StatusWaiting)).
				Select("COALESCE(MIN(position),0)").Row()
			_ = row.Scan(&minWaiting)
			if minWaiting > 0 {
				// Приоритетная вставка: одним UPDATE сдвигаем всех ожидающих на +1.
				pos = minWaiting
				if err := l.activeScope(tx).
					Where("status = ? AND position >= ?", string(StatusWaiting), pos).
					UpdateColumn("position", gorm.Expr("position + 1")).Error; err != nil {
					return err
				}
			}
		}

		now := time.Now()
		rec := models.QueueEntry{
			EntryID:         uuid.NewString(),
			QueueID:         l.queueID,
			UserID:          ne.UserID,
			GuestName:       ne.GuestName,
			Position:        pos,
			Status:          string(StatusWaiting),
			WalkIn:          ne.WalkIn,
			StatusChangedAt: now,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		entry = recordToEntry(&rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (l *gormLedger) Remove(ctx context.Context, entryID string) (*Entry, error) {
	var entry *Entry
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := l.findEntry(tx, entryID)
		if err != nil {
			return err
		}
		if rec.LeftAt != nil || Status(rec.Status) != StatusWaiting {
			return ErrInvalidTransition
		}

		now := time.Now()
		rec.LeftAt = &now
		if err := tx.Save(rec).Error; err != nil {
			return err
		}
		// Перенумерация хвоста одним UPDATE, а не построчным циклом:
		// частично применённая перенумерация не должна быть наблюдаемой.
		if err := l.shiftDown(tx, rec.Position); err != nil {
			return err
		}
		entry = recordToEntry(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (l *gormLedger) Advance(ctx context.Context, staffID uint) (*Entry, *Entry, error) {
	var prev, next *Entry
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var waiting models.QueueEntry
		if err := l.activeScope(tx).Where("status = ?", string(StatusWaiting)).
			Order("position ASC").First(&waiting).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQueueEmpty
			}
			return err
		}

		now := time.Now()
		var serving models.QueueEntry
		if err := l.activeScope(tx).Where("status = ?", string(StatusServing)).
			First(&serving).Error; err == nil {
			serving.Status = string(StatusServed)
			serving.StatusChangedAt = now
			serving.ServedAt = &now
			serving.ServedBy = &staffID
			if err := tx.Save(&serving).Error; err != nil {
				return err
			}
			prev = recordToEntry(&serving)
		}

		waiting.Status = string(StatusServing)
		waiting.StatusChangedAt = now
		if err := tx.Save(&waiting).Error; err != nil {
			return err
		}
		next = recordToEntry(&waiting)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return prev, next, nil
}

func (l *gormLedger) SetTerminal(ctx context.Context, entryID string, st Status, staffID *uint) (*Entry, error) {
	var entry *Entry
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := l.findEntry(tx, entryID)
		if err != nil {
			return err
		}
		if rec.LeftAt != nil || !allowedTerminal(Status(rec.Status), st) {
			return ErrInvalidTransition
		}

		wasWaiting := Status(rec.Status) == StatusWaiting
		now := time.Now()
		rec.Status = string(st)
		rec.StatusChangedAt = now
		if st == StatusServed {
			rec.ServedAt = &now
			rec.ServedBy = staffID
		}
		if err := tx.Save(rec).Error; err != nil {
			return err
		}
		if wasWaiting {
			if err := l.shiftDown(tx, rec.Position); err != nil {
				return err
			}
		}
		entry = recordToEntry(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (l *gormLedger) ByUser(ctx context.Context, userID uint) (*Entry, error) {
	var rec models.QueueEntry
	if err := l.activeScope(l.db.WithContext(ctx)).Where("user_id = ?", userID).
		First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return recordToEntry(&rec), nil
}

func (l *gormLedger) Active(ctx context.Context) ([]Entry, error) {
	var recs []models.QueueEntry
	if err := l.activeScope(l.db.WithContext(ctx)).
		Order("position ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(recs))
	for i := range recs {
		out = append(out, *recordToEntry(&recs[i]))
	}
	return out, nil
}

func (l *gormLedger) findEntry(tx *gorm.DB, entryID string) (*models.QueueEntry, error) {
	var rec models.QueueEntry
	if err := tx.Where("queue_id = ? AND entry_id = ?", l.queueID, entryID).
		First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (l *gormLedger) shiftDown(tx *gorm.DB, pos int) error {
	return l.activeScope(tx).
		Where("status = ? AND position > ?", string(StatusWaiting), pos).
		UpdateColumn("position", gorm.Expr("position - 1")).Error
}

func recordToEntry(rec *models.QueueEntry) *Entry {
	return &Entry{
		ID:              rec.EntryID,
		QueueID:         rec.QueueID,
		UserID:          rec.UserID,
		GuestName:       rec.GuestName,
		Position:        rec.Position,
		Status:          Status(rec.Status),
		WalkIn:          rec.WalkIn,
		EnteredAt:       rec.CreatedAt,
		StatusChangedAt: rec.StatusChangedAt,
		ServedAt:        rec.ServedAt,
		ServedBy:        rec.ServedBy,
	}
}
