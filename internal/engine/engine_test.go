package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBus — Broadcaster для тестов: запоминает опубликованные события
// и раздаёт их локальным подписчикам через буферизованные каналы.
type recordingBus struct {
	mu     sync.Mutex
	events []Event
	subs   map[uint]map[chan Event]bool
}

func newRecordingBus() *recordingBus {
	return &recordingBus{subs: make(map[uint]map[chan Event]bool)}
}

func (b *recordingBus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	for ch := range b.subs[ev.QueueID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *recordingBus) Subscribe(queueID uint) (<-chan Event, func()) {
	ch := make(chan Event, 64)
	b.mu.Lock()
	if b.subs[queueID] == nil {
		b.subs[queueID] = make(map[chan Event]bool)
	}
	b.subs[queueID][ch] = true
	b.mu.Unlock()
	return ch, func() {
		b.mu.Lock()
		delete(b.subs[queueID], ch)
		b.mu.Unlock()
	}
}

func (b *recordingBus) Subscribers(queueID uint) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[queueID])
}

func (b *recordingBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, ev := range b.events {
		out = append(out, ev.Type)
	}
	return out
}

// memOpener — LedgerFunc над памятью с мемоизацией: повторное открытие
// очереди возвращает тот же ledger (как сделала бы БД-реализация).
func memOpener(active bool, capacity int) LedgerFunc {
	var mu sync.Mutex
	ledgers := make(map[uint]Ledger)
	return func(queueID uint) Ledger {
		mu.Lock()
		defer mu.Unlock()
		if l, ok := ledgers[queueID]; ok {
			return l
		}
		l := NewMemoryLedger(queueID, active, capacity)
		ledgers[queueID] = l
		return l
	}
}

func newTestEngine(active bool, capacity int) (*Engine, *recordingBus) {
	bus := newRecordingBus()
	return New(memOpener(active, capacity), bus, time.Hour), bus
}

func TestEngineJoinAndCallNext(t *testing.T) {
	eng, _ := newTestEngine(true, 0)
	ctx := context.Background()

	p1, err := eng.Join(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, p1.Position)
	assert.Equal(t, StatusWaiting, p1.Status)

	p2, err := eng.Join(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, p2.Position)

	res, err := eng.CallNext(ctx, 1, 99)
	require.NoError(t, err)
	assert.Nil(t, res.Previous)
	assert.Equal(t, p1.ID, res.Serving.ID)
	assert.Equal(t, StatusServing, res.Serving.Status)

	snap, err := eng.Snapshot(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, snap.Serving)
	assert.Equal(t, p1.ID, snap.Serving.ID)
	// Второй участник остаётся ожидать на своей позиции.
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, p2.ID, snap.Entries[1].ID)
	assert.Equal(t, 2, snap.Entries[1].Position)
}

func TestEngineLeaveRenumbersBehindServing(t *testing.T) {
	eng, _ := newTestEngine(true, 0)
	ctx := context.Background()

	p1, err := eng.Join(ctx, 1, 10)
	require.NoError(t, err)
	_, err = eng.Join(ctx, 1, 20)
	require.NoError(t, err)
	p3, err := eng.Join(ctx, 1, 30)
	require.NoError(t, err)

	_, err = eng.CallNext(ctx, 1, 99)
	require.NoError(t, err)

	left, err := eng.Leave(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, left.Position)

	snap, err := eng.Snapshot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, p1.ID, snap.Entries[0].ID)
	assert.Equal(t, StatusServing, snap.Entries[0].Status)
	assert.Equal(t, p3.ID, snap.Entries[1].ID)
	assert.Equal(t, 2, snap.Entries[1].Position)
}

func TestEngineCallNextUntilEmpty(t *testing.T) {
	eng, _ := newTestEngine(true, 0)
	ctx := context.Background()

	p1, err := eng.Join(ctx, 1, 10)
	require.NoError(t, err)
	p2, err := eng.Join(ctx, 1, 20)
	require.NoError(t, err)

	res, err := eng.CallNext(ctx, 1, 99)
	require.NoError(t, err)
	assert.Equal(t, p1.ID, res.Serving.ID)

	res, err = eng.CallNext(ctx, 1, 99)
	require.NoError(t, err)
	require.NotNil(t, res.Previous)
	assert.Equal(t, p1.ID, res.Previous.ID)
	assert.Equal(t, StatusServed, res.Previous.Status)
	assert.Equal(t, p2.ID, res.Serving.ID)

	_, err = eng.CallNext(ctx, 1, 99)
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestEngineClosedQueueWalkInOverride(t *testing.T) {
	eng, _ := newTestEngine(false, 0)
	ctx := context.Background()

	_, err := eng.Join(ctx, 1, 10)
	assert.ErrorIs(t, err, ErrQueueClosed)

	guest, err := eng.AddWalkIn(ctx, 1, 99, "Иван", false)
	require.NoError(t, err)
	assert.Equal(t, 1, guest.Position)
	assert.True(t, guest.WalkIn)
}

func TestEngineConcurrentDoubleJoin(t *testing.T) {
	eng, _ := newTestEngine(true, 0)
	ctx := context.Background()

	const attempts = 16
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.Join(ctx, 1, 10)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok, dup := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrAlreadyInQueue):
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, dup)

	snap, err := eng.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, snap.Entries, 1)
}

func TestEngineConcurrentJoinsStayDense(t *testing.T) {
	eng, _ := newTestEngine(true, 0)
	ctx := context.Background()

	const users = 20
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := eng.Join(ctx, 1, userID)
			assert.NoError(t, err)
		}(uint(i + 1))
	}
	wg.Wait()

	snap, err := eng.Snapshot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snap.Entries, users)
	for i, e := range snap.Entries {
		assert.Equal(t, i+1, e.Position)
	}
}

func TestEngineSetEntryStatus(t *testing.T) {
	eng, _ := newTestEngine(true, 0)
	ctx := context.Background()

	p1, err := eng.Join(ctx, 1, 10)
	require.NoError(t, err)
	_, err = eng.Join(ctx, 1, 20)
	require.NoError(t, err)

	entry, err := eng.SetEntryStatus(ctx, 1, p1.ID, StatusCancelled, 99)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, entry.Status)

	// Повтор того же перехода не идемпотентен: запись уже терминальна.
	_, err = eng.SetEntryStatus(ctx, 1, p1.ID, StatusCancelled, 99)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = eng.SetEntryStatus(ctx, 1, "no-such-entry", StatusMissed, 99)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	snap, err := eng.Snapshot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, 1, snap.Entries[0].Position)
}

func TestEngineOpenClose(t *testing.T) {
	eng, bus := newTestEngine(true, 0)
	ctx := context.Background()

	require.NoError(t, eng.CloseQueue(ctx, 1, 99))
	_, err := eng.Join(ctx, 1, 10)
	assert.ErrorIs(t, err, ErrQueueClosed)

	require.NoError(t, eng.OpenQueue(ctx, 1, 99))
	_, err = eng.Join(ctx, 1, 10)
	require.NoError(t, err)

	// Повторное открытие — no-op без события.
	require.NoError(t, eng.OpenQueue(ctx, 1, 99))
	assert.Equal(t, []string{EventQueueClosed, EventQueueOpened, EventEntryJoined}, bus.types())
}

func TestEngineEventsFollowApplyOrder(t *testing.T) {
	eng, bus := newTestEngine(true, 0)
	ctx := context.Background()

	events, cancel := eng.Subscribe(1)
	defer cancel()

	p1, err := eng.Join(ctx, 1, 10)
	require.NoError(t, err)
	_, err = eng.Join(ctx, 1, 20)
	require.NoError(t, err)
	_, err = eng.CallNext(ctx, 1, 99)
	require.NoError(t, err)
	_, err = eng.Leave(ctx, 1, 20)
	require.NoError(t, err)

	want := []string{EventEntryJoined, EventEntryJoined, EventServingAdvanced, EventEntryLeft}
	got := make([]Event, 0, len(want))
	for i := 0; i < len(want); i++ {
		select {
		case ev := <-events:
			got = append(got, ev)
		case <-time.After(time.Second):
			t.Fatalf("не дождались события %d", i)
		}
	}
	for i, ev := range got {
		assert.Equal(t, want[i], ev.Type)
		assert.Equal(t, uint(1), ev.QueueID)
	}
	assert.Equal(t, p1.ID, got[0].Data["entry_id"])

	// Ошибочная операция событий не производит.
	_, err = eng.Join(ctx, 1, 10)
	assert.ErrorIs(t, err, ErrAlreadyInQueue)
	assert.Len(t, bus.types(), len(want))
}

func TestEngineQueuesAreIndependent(t *testing.T) {
	eng, _ := newTestEngine(true, 0)
	ctx := context.Background()

	// Один участник может стоять в разных очередях одновременно.
	a, err := eng.Join(ctx, 1, 10)
	require.NoError(t, err)
	b, err := eng.Join(ctx, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Position)
	assert.Equal(t, 1, b.Position)

	_, err = eng.CallNext(ctx, 1, 99)
	require.NoError(t, err)

	snap, err := eng.Snapshot(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, snap.Serving)
}

func TestEngineQueueFull(t *testing.T) {
	eng, _ := newTestEngine(true, 2)
	ctx := context.Background()

	_, err := eng.Join(ctx, 1, 10)
	require.NoError(t, err)
	_, err = eng.Join(ctx, 1, 20)
	require.NoError(t, err)
	_, err = eng.Join(ctx, 1, 30)
	assert.ErrorIs(t, err, ErrQueueFull)

	// Лимит действует и на walk-in.
	_, err = eng.AddWalkIn(ctx, 1, 99, "Иван", false)
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestEngineMixedLoadKeepsInvariants(t *testing.T) {
	eng, _ := newTestEngine(true, 0)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := eng.Join(ctx, 1, uint(i))
		require.NoError(t, err)
	}
	_, err := eng.CallNext(ctx, 1, 99)
	require.NoError(t, err)
	_, err = eng.Leave(ctx, 1, 3)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 6; i <= 10; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := eng.Join(ctx, 1, userID)
			assert.NoError(t, err)
		}(uint(i))
	}
	wg.Wait()

	snap, err := eng.Snapshot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snap.Entries, 9)

	// Позиции уникальны, обслуживается ровно одна запись, позиции
	// ожидающих идут подряд без дыр.
	seen := make(map[int]bool)
	serving := 0
	minWaiting, maxWaiting, waiting := 0, 0, 0
	for _, e := range snap.Entries {
		assert.False(t, seen[e.Position], "позиция %d встретилась дважды", e.Position)
		seen[e.Position] = true
		switch e.Status {
		case StatusServing:
			serving++
		case StatusWaiting:
			waiting++
			if minWaiting == 0 || e.Position < minWaiting {
				minWaiting = e.Position
			}
			if e.Position > maxWaiting {
				maxWaiting = e.Position
			}
		}
	}
	assert.Equal(t, 1, serving)
	assert.Equal(t, waiting, maxWaiting-minWaiting+1)
}

func TestEngineLeaveWithoutEntry(t *testing.T) {
	eng, _ := newTestEngine(true, 0)
	_, err := eng.Leave(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}
