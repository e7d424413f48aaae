package engine

import (
	"context"
	"errors"
	"sync"
	"time"
)

// errSessionClosed — внутренняя ошибка: сессия вытеснена между поиском в
// реестре и постановкой операции. Реестр прозрачно повторяет вызов на
// свежей сессии, наружу эта ошибка не выходит.
var errSessionClosed = errors.New("queue session closed")

// opFunc — одна мутирующая операция над ledger. Возвращает результат для
// вызывающего и события для рассылки (публикуются только при успехе).
type opFunc func(l Ledger) (interface{}, []Event, error)

type opResult struct {
	val interface{}
	err error
}

type op struct {
	fn   opFunc
	done chan opResult // буфер 1: результат доставляется даже брошенному вызывающему
}

// Session — сериализованный актор одной очереди. Все мутирующие операции
// очереди проходят через один канал и применяются строго по одной, в порядке
// поступления (FIFO), поэтому назначение позиций и переходы статусов
// линеаризуемы. События публикуются из цикла сессии до выдачи результата,
// так что подписчики видят их ровно в порядке применения операций.
type Session struct {
	queueID uint
	ledger  Ledger
	bus     Broadcaster
	ops     chan op

	mu      sync.Mutex
	closed  bool
	pending int
	lastOp  time.Time
}

func newSession(queueID uint, ledger Ledger, bus Broadcaster) *Session {
	s := &Session{
		queueID: queueID,
		ledger:  ledger,
		bus:     bus,
		ops:     make(chan op, 64),
		lastOp:  time.Now(),
	}
	go s.run()
	return s
}

func (s *Session) run() {
	for o := range s.ops {
		val, events, err := o.fn(s.ledger)
		if err == nil && s.bus != nil {
			for _, ev := range events {
				s.bus.Publish(ev)
			}
		}
		s.mu.Lock()
		s.pending--
		s.lastOp = time.Now()
		s.mu.Unlock()

		o.done <- opResult{val: val, err: err}
	}
}

// Do ставит операцию в очередь сессии и ждёт её результата. Если вызывающий
// отменяет контекст, операция всё равно будет применена — отмена влияет
// только на то, увидит ли вызывающий результат.
func (s *Session) Do(ctx context.Context, fn opFunc) (interface{}, error) {
	o := op{fn: fn, done: make(chan opResult, 1)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errSessionClosed
	}
	s.pending++
	s.mu.Unlock()

	s.ops <- o

	select {
	case r := <-o.done:
		return r.val, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// idle сообщает, можно ли вытеснить сессию: нет незавершённых операций и
// последняя активность была раньше, чем ttl назад.
func (s *Session) idle(ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending == 0 && time.Since(s.lastOp) >= ttl
}

// close останавливает цикл сессии. Возвращает false, если остались
// незавершённые операции — тогда сессия остаётся жить.
func (s *Session) close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	if s.pending > 0 {
		return false
	}
	s.closed = true
	close(s.ops)
	return true
}
