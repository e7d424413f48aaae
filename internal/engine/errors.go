package engine

// Error — ошибка движка очередей со стабильным машинным кодом,
// по которому внешний вызывающий различает причины отказа.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

var (
	ErrAlreadyInQueue    = &Error{Code: "ALREADY_IN_QUEUE", Message: "Участник уже состоит в этой очереди"}
	ErrQueueClosed       = &Error{Code: "QUEUE_CLOSED", Message: "Очередь закрыта для вступления"}
	ErrQueueFull         = &Error{Code: "QUEUE_FULL", Message: "Достигнут лимит участников очереди"}
	ErrQueueEmpty        = &Error{Code: "QUEUE_EMPTY", Message: "В очереди нет ожидающих участников"}
	ErrInvalidTransition = &Error{Code: "INVALID_TRANSITION", Message: "Недопустимый переход статуса записи"}
	ErrEntryNotFound     = &Error{Code: "ENTRY_NOT_FOUND", Message: "Запись в очереди не найдена"}
	ErrQueueNotFound     = &Error{Code: "QUEUE_NOT_FOUND", Message: "Очередь не найдена"}
	// ErrConcurrencyConflict возвращается, только если хранилище не смогло
	// гарантировать атомарность read-modify-write и гонка всё же была замечена.
	// При сериализации операций на уровне сессии такого быть не должно.
	ErrConcurrencyConflict = &Error{Code: "CONCURRENCY_CONFLICT", Message: "Конфликт одновременного изменения очереди"}
)
