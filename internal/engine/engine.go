// Package engine — ядро электронной очереди: учёт позиций и статусов
// участников (Ledger), сериализованные сессии очередей, реестр сессий и
// фасад, через который с движком работают обработчики и фоновые задачи.
//
// Все мутирующие операции одной очереди применяются строго последовательно,
// события изменений рассылаются подписчикам в порядке применения.
package engine

import (
	"context"
	"time"
)

// Engine — единственная точка входа для внешних вызовов к движку очередей.
// Мутирующий вызов находит сессию очереди через реестр, дожидается своей
// очереди исполнения, при успехе события уже разосланы подписчикам.
// Ошибки ledger доходят до вызывающего без изменений, событий при ошибке нет.
type Engine struct {
	registry *Registry
	bus      Broadcaster
}

// New создаёт движок. open выдаёт ledger по идентификатору очереди, bus
// рассылает события, idleTTL — таймаут вытеснения простаивающих сессий.
func New(open LedgerFunc, bus Broadcaster, idleTTL time.Duration) *Engine {
	return &Engine{
		registry: NewRegistry(open, bus, idleTTL),
		bus:      bus,
	}
}

// Join ставит участника userID в хвост очереди queueID.
func (e *Engine) Join(ctx context.Context, queueID, userID uint) (*Entry, error) {
	val, err := e.registry.Do(ctx, queueID, func(l Ledger) (interface{}, []Event, error) {
		entry, err := l.Append(ctx, NewEntry{UserID: &userID})
		if err != nil {
			return nil, nil, err
		}
		return entry, []Event{joinedEvent(entry)}, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*Entry), nil
}

// Leave выводит участника userID из очереди. Допустимо только в статусе
// waiting; ожидающие позади сдвигаются вниз.
func (e *Engine) Leave(ctx context.Context, queueID, userID uint) (*Entry, error) {
	val, err := e.registry.Do(ctx, queueID, func(l Ledger) (interface{}, []Event, error) {
		entry, err := l.ByUser(ctx, userID)
		if err != nil {
			return nil, nil, err
		}
		removed, err := l.Remove(ctx, entry.ID)
		if err != nil {
			return nil, nil, err
		}
		return removed, []Event{leftEvent(removed)}, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*Entry), nil
}

// AddWalkIn добавляет гостя от имени сотрудника. Работает и для закрытой
// очереди (сотрудник имеет право добавить на месте). По умолчанию гость
// встаёт в хвост; front — явная приоритетная вставка перед ожидающими.
func (e *Engine) AddWalkIn(ctx context.Context, queueID, staffID uint, guestName string, front bool) (*Entry, error) {
	val, err := e.registry.Do(ctx, queueID, func(l Ledger) (interface{}, []Event, error) {
		entry, err := l.Append(ctx, NewEntry{GuestName: guestName, WalkIn: true, Front: front})
		if err != nil {
			return nil, nil, err
		}
		return entry, []Event{joinedEvent(entry)}, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*Entry), nil
}

// ServeResult — результат вызова следующего участника.
type ServeResult struct {
	Previous *Entry // Запись, закончившая обслуживание (nil, если никого не обслуживали)
	Serving  *Entry // Запись, принятая к обслуживанию
}

// CallNext вызывает к обслуживанию ожидающего с наименьшей позицией.
// Текущая serving-запись при этом помечается served.
func (e *Engine) CallNext(ctx context.Context, queueID, staffID uint) (*ServeResult, error) {
	val, err := e.registry.Do(ctx, queueID, func(l Ledger) (interface{}, []Event, error) {
		prev, next, err := l.Advance(ctx, staffID)
		if err != nil {
			return nil, nil, err
		}
		return &ServeResult{Previous: prev, Serving: next},
			[]Event{advancedEvent(queueID, prev, next)}, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*ServeResult), nil
}

// SetEntryStatus переводит запись в конечный статус по действию сотрудника.
func (e *Engine) SetEntryStatus(ctx context.Context, queueID uint, entryID string, st Status, staffID uint) (*Entry, error) {
	val, err := e.registry.Do(ctx, queueID, func(l Ledger) (interface{}, []Event, error) {
		entry, err := l.SetTerminal(ctx, entryID, st, &staffID)
		if err != nil {
			return nil, nil, err
		}
		return entry, []Event{terminalEvent(entry)}, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*Entry), nil
}

// OpenQueue открывает очередь для вступления. Повторное открытие — no-op
// без события.
func (e *Engine) OpenQueue(ctx context.Context, queueID, staffID uint) error {
	return e.setState(ctx, queueID, true)
}

// CloseQueue закрывает очередь: новые вступления отклоняются, уже стоящих
// можно обслуживать и отменять.
func (e *Engine) CloseQueue(ctx context.Context, queueID, staffID uint) error {
	return e.setState(ctx, queueID, false)
}

func (e *Engine) setState(ctx context.Context, queueID uint, active bool) error {
	_, err := e.registry.Do(ctx, queueID, func(l Ledger) (interface{}, []Event, error) {
		changed, err := l.SetState(ctx, active)
		if err != nil {
			return nil, nil, err
		}
		if !changed {
			return nil, nil, nil
		}
		return nil, []Event{stateEvent(queueID, active)}, nil
	})
	return err
}

// Snapshot возвращает согласованный срез очереди, не вставая в очередь
// мутирующих операций: каждая читающая операция ledger атомарна, рваного
// состояния (дубликат позиции, полузавершённый переход) увидеть нельзя.
func (e *Engine) Snapshot(ctx context.Context, queueID uint) (*Snapshot, error) {
	ledger := e.registry.Ledger(queueID)
	state, err := ledger.State(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := ledger.Active(ctx)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Queue: state, Entries: entries}
	for i := range entries {
		if entries[i].Status == StatusServing {
			snap.Serving = &entries[i]
			break
		}
	}
	return snap, nil
}

// Subscribe подключает подписчика к событиям очереди (без ретроспективы).
func (e *Engine) Subscribe(queueID uint) (<-chan Event, func()) {
	return e.bus.Subscribe(queueID)
}

// EvictIdleSessions вытесняет простаивающие сессии. Вызывается фоновой задачей.
func (e *Engine) EvictIdleSessions() int {
	return e.registry.EvictIdle()
}
