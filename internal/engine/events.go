package engine

// Типы событий очереди. Формат соответствует сообщениям, которые
// рассылаются подписчикам через WebSocket.
const (
	EventEntryJoined     = "entry_joined"
	EventEntryLeft       = "entry_left"
	EventServingAdvanced = "serving_advanced"
	EventEntryTerminal   = "entry_terminal"
	EventQueueOpened     = "queue_opened"
	EventQueueClosed     = "queue_closed"
)

// Event — одно изменение состояния очереди, доставляемое подписчикам
// в том порядке, в котором его произвела сессия очереди.
type Event struct {
	Type    string                 `json:"event_type"`
	QueueID uint                   `json:"queue_id"`
	Data    map[string]interface{} `json:"data"`
}

// Broadcaster рассылает события очереди подписчикам. Доставка best-effort,
// не более одного раза: отставший или отключившийся подписчик события
// теряет и должен перечитать состояние через Snapshot.
type Broadcaster interface {
	// Publish отправляет событие всем подписчикам очереди.
	Publish(ev Event)
	// Subscribe подключает локального подписчика к очереди. Возвращает
	// канал событий и функцию отписки. Ретроспективы нет: подписчик
	// видит только события после момента подписки.
	Subscribe(queueID uint) (<-chan Event, func())
	// Subscribers возвращает число текущих подписчиков очереди.
	Subscribers(queueID uint) int
}

func joinedEvent(e *Entry) Event {
	data := map[string]interface{}{
		"entry_id": e.ID,
		"position": e.Position,
		"walk_in":  e.WalkIn,
	}
	if e.UserID != nil {
		data["user_id"] = *e.UserID
	}
	return Event{Type: EventEntryJoined, QueueID: e.QueueID, Data: data}
}

func leftEvent(e *Entry) Event {
	data := map[string]interface{}{
		"entry_id":      e.ID,
		"left_position": e.Position,
	}
	if e.UserID != nil {
		data["user_id"] = *e.UserID
	}
	return Event{Type: EventEntryLeft, QueueID: e.QueueID, Data: data}
}

func advancedEvent(queueID uint, prev, next *Entry) Event {
	data := map[string]interface{}{
		"serving": map[string]interface{}{
			"entry_id": next.ID,
			"position": next.Position,
		},
	}
	if prev != nil {
		data["previous"] = map[string]interface{}{
			"entry_id": prev.ID,
			"status":   string(prev.Status),
		}
	}
	return Event{Type: EventServingAdvanced, QueueID: queueID, Data: data}
}

func terminalEvent(e *Entry) Event {
	return Event{Type: EventEntryTerminal, QueueID: e.QueueID, Data: map[string]interface{}{
		"entry_id": e.ID,
		"status":   string(e.Status),
	}}
}

func stateEvent(queueID uint, active bool) Event {
	typ := EventQueueClosed
	if active {
		typ = EventQueueOpened
	}
	return Event{Type: typ, QueueID: queueID, Data: map[string]interface{}{}}
}
