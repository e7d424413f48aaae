package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreatesSessionOnDemand(t *testing.T) {
	r := NewRegistry(memOpener(true, 0), nil, time.Hour)

	assert.Equal(t, 0, r.Len())
	s1 := r.session(1)
	s2 := r.session(1)
	assert.Same(t, s1, s2)
	assert.Equal(t, 1, r.Len())

	r.session(2)
	assert.Equal(t, 2, r.Len())
}

func TestRegistryConcurrentFirstAccess(t *testing.T) {
	r := NewRegistry(memOpener(true, 0), nil, time.Hour)

	const callers = 16
	sessions := make([]*Session, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessions[i] = r.session(1)
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		assert.Same(t, sessions[0], sessions[i])
	}
	assert.Equal(t, 1, r.Len())
}

func TestRegistryEvictIdle(t *testing.T) {
	r := NewRegistry(memOpener(true, 0), nil, 0)

	userID := uint(10)
	_, err := r.Do(context.Background(), 1, func(l Ledger) (interface{}, []Event, error) {
		entry, err := l.Append(context.Background(), NewEntry{UserID: &userID})
		return entry, nil, err
	})
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())

	assert.Equal(t, 1, r.EvictIdle())
	assert.Equal(t, 0, r.Len())

	// После вытеснения очередь доступна как ни в чём не бывало: opener
	// мемоизирован, состояние сохраняется.
	_, err = r.Do(context.Background(), 1, func(l Ledger) (interface{}, []Event, error) {
		entry, err := l.ByUser(context.Background(), userID)
		return entry, nil, err
	})
	require.NoError(t, err)
}

func TestRegistryEvictSkipsQueuesWithSubscribers(t *testing.T) {
	bus := newRecordingBus()
	r := NewRegistry(memOpener(true, 0), bus, 0)

	r.session(1)
	_, cancel := bus.Subscribe(1)

	assert.Equal(t, 0, r.EvictIdle())
	assert.Equal(t, 1, r.Len())

	cancel()
	assert.Equal(t, 1, r.EvictIdle())
}

func TestRegistryEvictSkipsFreshSessions(t *testing.T) {
	r := NewRegistry(memOpener(true, 0), nil, time.Hour)
	r.session(1)

	assert.Equal(t, 0, r.EvictIdle())
	assert.Equal(t, 1, r.Len())
}

func TestRegistryDoRetriesAfterEviction(t *testing.T) {
	r := NewRegistry(memOpener(true, 0), nil, 0)

	stale := r.session(1)
	require.Equal(t, 1, r.EvictIdle())

	// Операция на вытесненной сессии отклоняется внутренней ошибкой,
	// Do повторяет её на свежей сессии прозрачно для вызывающего.
	_, err := stale.Do(context.Background(), func(l Ledger) (interface{}, []Event, error) {
		return nil, nil, nil
	})
	assert.ErrorIs(t, err, errSessionClosed)

	_, err = r.Do(context.Background(), 1, func(l Ledger) (interface{}, []Event, error) {
		return nil, nil, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryLedgerReadsWithoutSession(t *testing.T) {
	opener := memOpener(true, 0)
	r := NewRegistry(opener, nil, time.Hour)

	// Чтение не создаёт сессию.
	state, err := r.Ledger(1).State(context.Background())
	require.NoError(t, err)
	assert.True(t, state.Active)
	assert.Equal(t, 0, r.Len())

	// Через живую сессию читается тот же ledger.
	userID := uint(10)
	_, err = r.Do(context.Background(), 1, func(l Ledger) (interface{}, []Event, error) {
		entry, err := l.Append(context.Background(), NewEntry{UserID: &userID})
		return entry, nil, err
	})
	require.NoError(t, err)

	entries, err := r.Ledger(1).Active(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
