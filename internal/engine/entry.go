package engine

import "time"

// Status — статус записи участника в очереди.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusServing   Status = "serving"
	StatusServed    Status = "served"
	StatusMissed    Status = "missed"
	StatusCancelled Status = "cancelled"
)

// Terminal сообщает, является ли статус конечным: из него переходов нет.
func (s Status) Terminal() bool {
	return s == StatusServed || s == StatusMissed || s == StatusCancelled
}

// Entry — одна запись участника в одной очереди.
type Entry struct {
	ID              string // Публичный идентификатор записи (uuid)
	QueueID         uint
	UserID          *uint // nil — гость без аккаунта (walk-in)
	GuestName       string
	Position        int
	Status          Status
	WalkIn          bool
	EnteredAt       time.Time
	StatusChangedAt time.Time
	ServedAt        *time.Time
	ServedBy        *uint
}

// QueueState — видимое движку состояние очереди: активность и лимит.
// Владелец, расписание и прочее — внешние метки, движок их не читает.
type QueueState struct {
	ID       uint
	Active   bool
	Capacity int // 0 — без лимита
}

// NewEntry описывает создаваемую запись для Ledger.Append.
type NewEntry struct {
	UserID    *uint
	GuestName string
	WalkIn    bool
	// Front — приоритетная вставка walk-in перед всеми ожидающими.
	// По умолчанию false: walk-in встаёт в хвост, как и все.
	Front bool
}

// Snapshot — согласованный срез очереди: активные записи по возрастанию
// позиции и обслуживаемая запись, если есть.
type Snapshot struct {
	Queue   QueueState
	Entries []Entry
	Serving *Entry
}
