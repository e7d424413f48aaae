package ws

import (
	"testing"
	"time"

	"e_queue/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan engine.Event) engine.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("не дождались события от хаба")
		return engine.Event{}
	}
}

func TestHubDeliversInPublishOrder(t *testing.T) {
	h := NewHub()
	go h.Run()

	ch, cancel := h.Subscribe(1)
	defer cancel()

	h.Publish(engine.Event{Type: engine.EventEntryJoined, QueueID: 1})
	h.Publish(engine.Event{Type: engine.EventServingAdvanced, QueueID: 1})
	h.Publish(engine.Event{Type: engine.EventQueueClosed, QueueID: 1})

	assert.Equal(t, engine.EventEntryJoined, recv(t, ch).Type)
	assert.Equal(t, engine.EventServingAdvanced, recv(t, ch).Type)
	assert.Equal(t, engine.EventQueueClosed, recv(t, ch).Type)
}

func TestHubRoutesByQueue(t *testing.T) {
	h := NewHub()
	go h.Run()

	ch1, cancel1 := h.Subscribe(1)
	defer cancel1()
	ch2, cancel2 := h.Subscribe(2)
	defer cancel2()

	h.Publish(engine.Event{Type: engine.EventEntryJoined, QueueID: 2})

	assert.Equal(t, uint(2), recv(t, ch2).QueueID)
	select {
	case ev := <-ch1:
		t.Fatalf("подписчик чужой очереди получил событие %s", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubSubscribersCount(t *testing.T) {
	h := NewHub()

	assert.Equal(t, 0, h.Subscribers(1))
	_, cancel1 := h.Subscribe(1)
	_, cancel2 := h.Subscribe(1)
	assert.Equal(t, 2, h.Subscribers(1))
	assert.Equal(t, 0, h.Subscribers(2))

	cancel1()
	cancel2()
	assert.Equal(t, 0, h.Subscribers(1))

	// Повторная отписка безопасна.
	cancel1()
	assert.Equal(t, 0, h.Subscribers(1))
}

func TestHubDropsLaggingSubscriber(t *testing.T) {
	h := NewHub()
	go h.Run()

	ch, cancel := h.Subscribe(1)
	defer cancel()

	// Переполняем буфер подписчика: лишние события молча теряются,
	// публикация не блокируется.
	const published = 100
	for i := 0; i < published; i++ {
		h.Publish(engine.Event{Type: engine.EventEntryJoined, QueueID: 1})
	}

	// Цикл хаба последовательный: когда маркер из другой очереди доставлен,
	// все события выше уже обработаны.
	mark, cancelMark := h.Subscribe(2)
	defer cancelMark()
	h.Publish(engine.Event{Type: engine.EventQueueOpened, QueueID: 2})
	recv(t, mark)

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	require.Less(t, received, published)
	assert.Equal(t, cap(ch), received)
}
