package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memLedger — реализация Ledger в памяти: арена записей одной очереди
// под одним RWMutex. Используется в тестах движка и годится как хранилище
// для очередей, которым не нужна долговечность.
type memLedger struct {
	mu      sync.RWMutex
	state   QueueState
	entries map[string]*Entry // Все записи очереди, включая терминальные (для аудита)
}

// NewMemoryLedger создаёт пустой ledger очереди в памяти.
func NewMemoryLedger(queueID uint, active bool, capacity int) Ledger {
	return &memLedger{
		state:   QueueState{ID: queueID, Active: active, Capacity: capacity},
		entries: make(map[string]*Entry),
	}
}

func (l *memLedger) State(ctx context.Context) (QueueState, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state, nil
}

func (l *memLedger) SetState(ctx context.Context, active bool) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.Active == active {
		return false, nil
	}
	l.state.Active = active
	return true, nil
}

func (l *memLedger) Append(ctx context.Context, ne NewEntry) (*Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.state.Active && !ne.WalkIn {
		return nil, ErrQueueClosed
	}
	if ne.UserID != nil {
		for _, e := range l.entries {
			if !e.Status.Terminal() && e.UserID != nil && *e.UserID == *ne.UserID {
				return nil, ErrAlreadyInQueue
			}
		}
	}

	active := 0
	maxPos := 0
	minWaiting := 0
	for _, e := range l.entries {
		if e.Status.Terminal() {
			continue
		}
		active++
		if e.Position > maxPos {
			maxPos = e.Position
		}
		if e.Status == StatusWaiting && (minWaiting == 0 || e.Position < minWaiting) {
			minWaiting = e.Position
		}
	}
	if l.state.Capacity > 0 && active >= l.state.Capacity {
		return nil, ErrQueueFull
	}

	pos := maxPos + 1
	if ne.Front && minWaiting > 0 {
		// Приоритетная вставка: перед всеми ожидающими, остальные сдвигаются на +1.
		pos = minWaiting
		for _, e := range l.entries {
			if e.Status == StatusWaiting && e.Position >= pos {
				e.Position++
			}
		}
	}

	now := time.Now()
	entry := &Entry{
		ID:              uuid.NewString(),
		QueueID:         l.state.ID,
		UserID:          ne.UserID,
		GuestName:       ne.GuestName,
		Position:        pos,
		Status:          StatusWaiting,
		WalkIn:          ne.WalkIn,
		EnteredAt:       now,
		StatusChangedAt: now,
	}
	l.entries[entry.ID] = entry
	return copyEntry(entry), nil
}

func (l *memLedger) Remove(ctx context.Context, entryID string) (*Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[entryID]
	if !ok {
		return nil, ErrEntryNotFound
	}
	if entry.Status != StatusWaiting {
		// Обслуживаемая или завершённая запись выйти из очереди не может.
		return nil, ErrInvalidTransition
	}

	delete(l.entries, entryID)
	l.shiftDown(entry.Position)
	return copyEntry(entry), nil
}

func (l *memLedger) Advance(ctx context.Context, staffID uint) (*Entry, *Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var next *Entry
	var prev *Entry
	for _, e := range l.entries {
		switch e.Status {
		case StatusWaiting:
			if next == nil || e.Position < next.Position {
				next = e
			}
		case StatusServing:
			prev = e
		}
	}
	if next == nil {
		return nil, nil, ErrQueueEmpty
	}

	now := time.Now()
	if prev != nil {
		prev.Status = StatusServed
		prev.StatusChangedAt = now
		prev.ServedAt = &now
		prev.ServedBy = &staffID
	}
	// Новая serving-запись сохраняет свою позицию: слот обслуживания
	// в плотности ожидающих не участвует, перенумерации нет.
	next.Status = StatusServing
	next.StatusChangedAt = now

	return copyEntry(prev), copyEntry(next), nil
}

func (l *memLedger) SetTerminal(ctx context.Context, entryID string, st Status, staffID *uint) (*Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[entryID]
	if !ok {
		return nil, ErrEntryNotFound
	}
	if !allowedTerminal(entry.Status, st) {
		return nil, ErrInvalidTransition
	}

	wasWaiting := entry.Status == StatusWaiting
	now := time.Now()
	entry.Status = st
	entry.StatusChangedAt = now
	if st == StatusServed {
		entry.ServedAt = &now
		entry.ServedBy = staffID
	}
	if wasWaiting {
		// Из плотного порядка ушла ожидающая запись — сдвигаем хвост.
		l.shiftDown(entry.Position)
	}
	return copyEntry(entry), nil
}

func (l *memLedger) ByUser(ctx context.Context, userID uint) (*Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.entries {
		if !e.Status.Terminal() && e.UserID != nil && *e.UserID == userID {
			return copyEntry(e), nil
		}
	}
	return nil, ErrEntryNotFound
}

func (l *memLedger) Active(ctx context.Context) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if !e.Status.Terminal() {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// shiftDown сдвигает на -1 позиции всех ожидающих записей правее pos.
// Вызывается под мьютексом.
func (l *memLedger) shiftDown(pos int) {
	for _, e := range l.entries {
		if e.Status == StatusWaiting && e.Position > pos {
			e.Position--
		}
	}
}

// allowedTerminal перечисляет допустимые конечные переходы:
// waiting -> missed|cancelled, serving -> served|missed.
func allowedTerminal(from, to Status) bool {
	switch from {
	case StatusWaiting:
		return to == StatusMissed || to == StatusCancelled
	case StatusServing:
		return to == StatusServed || to == StatusMissed
	}
	return false
}

func copyEntry(e *Entry) *Entry {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}
