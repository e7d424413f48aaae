package engine

import (
	"context"
	"sync"
	"time"
)

// LedgerFunc открывает Ledger очереди по её идентификатору. Повторный вызов
// для той же очереди должен возвращать ledger над тем же состоянием
// (для БД-реализации это естественно, реализацию в памяти нужно мемоизировать).
type LedgerFunc func(queueID uint) Ledger

// Registry отображает идентификатор очереди на её сессию. Сессия создаётся
// при первом обращении; одновременные обращения к ещё не существующей
// очереди получают одну и ту же сессию (создание под общим мьютексом).
// Простаивающие сессии вытесняются по таймауту, если у очереди нет
// подписчиков и незавершённых операций.
type Registry struct {
	open    LedgerFunc
	bus     Broadcaster
	idleTTL time.Duration

	mu       sync.Mutex
	sessions map[uint]*Session
}

func NewRegistry(open LedgerFunc, bus Broadcaster, idleTTL time.Duration) *Registry {
	return &Registry{
		open:     open,
		bus:      bus,
		idleTTL:  idleTTL,
		sessions: make(map[uint]*Session),
	}
}

// session возвращает живую сессию очереди, создавая её при необходимости.
func (r *Registry) session(queueID uint) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[queueID]; ok {
		s.mu.Lock()
		alive := !s.closed
		s.mu.Unlock()
		if alive {
			return s
		}
	}
	s := newSession(queueID, r.open(queueID), r.bus)
	r.sessions[queueID] = s
	return s
}

// Do выполняет операцию на сессии очереди queueID. Гонку с вытеснением
// (сессия закрылась между поиском и постановкой операции) решает повтором
// на свежей сессии.
func (r *Registry) Do(ctx context.Context, queueID uint, fn opFunc) (interface{}, error) {
	for {
		val, err := r.session(queueID).Do(ctx, fn)
		if err == errSessionClosed {
			continue
		}
		return val, err
	}
}

// Ledger возвращает ledger очереди для читающих операций в обход сессии.
func (r *Registry) Ledger(queueID uint) Ledger {
	r.mu.Lock()
	if s, ok := r.sessions[queueID]; ok {
		r.mu.Unlock()
		return s.ledger
	}
	r.mu.Unlock()
	return r.open(queueID)
}

// EvictIdle вытесняет сессии, простаивающие дольше idleTTL, у очередей
// которых нет подписчиков. Возвращает число вытесненных сессий.
func (r *Registry) EvictIdle() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, s := range r.sessions {
		if !s.idle(r.idleTTL) {
			continue
		}
		if r.bus != nil && r.bus.Subscribers(id) > 0 {
			continue
		}
		if s.close() {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Len возвращает число живых сессий (для задач обслуживания и тестов).
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
