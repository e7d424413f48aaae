package engine

import "context"

// Ledger — единственный источник истины о записях и позициях одной очереди.
// Каждый метод атомарен сам по себе; составные операции сериализует сессия
// очереди, других писателей у Ledger нет.
//
// Инварианты, которые обязана держать любая реализация:
//   - у участника не больше одной записи со статусом waiting/serving;
//   - не больше одной записи serving в любой момент;
//   - позиции ожидающих записей плотные: удаление ожидающей записи сразу
//     сдвигает вниз всех ожидающих позади неё;
//   - терминальная запись сохраняет свою последнюю позицию и из активного
//     порядка исключается; переход serving в терминальный статус позиции
//     ожидающих не трогает (слот обслуживания в плотности не участвует).
type Ledger interface {
	// State возвращает состояние очереди (активность, лимит).
	State(ctx context.Context) (QueueState, error)

	// SetState открывает или закрывает очередь. Возвращает false,
	// если очередь уже была в запрошенном состоянии.
	SetState(ctx context.Context, active bool) (bool, error)

	// Append создаёт запись в хвосте очереди (позиция = максимальная
	// позиция нетерминальной записи + 1) либо, для NewEntry.Front,
	// перед всеми ожидающими со сдвигом их позиций на +1.
	// Ошибки: ErrAlreadyInQueue, ErrQueueClosed (очередь неактивна и
	// запись не walk-in), ErrQueueFull.
	Append(ctx context.Context, ne NewEntry) (*Entry, error)

	// Remove удаляет запись по выходу участника. Допустимо только для
	// статуса waiting; ожидающие позади сдвигаются на -1.
	// Ошибки: ErrEntryNotFound, ErrInvalidTransition (serving или терминал).
	Remove(ctx context.Context, entryID string) (*Entry, error)

	// Advance выбирает ожидающую запись с наименьшей позицией и атомарно:
	// текущую serving (если есть) помечает served с отметками времени и
	// сотрудника, выбранную переводит в serving. Возвращает обе записи.
	// Ошибка ErrQueueEmpty, если ожидающих нет; состояние при этом не меняется.
	Advance(ctx context.Context, staffID uint) (prev *Entry, next *Entry, err error)

	// SetTerminal переводит запись в конечный статус. Допустимые переходы:
	// waiting -> missed|cancelled, serving -> served|missed. Перенумерация
	// выполняется только при уходе ожидающей записи. Повторный перевод
	// терминальной записи — ErrInvalidTransition без изменений.
	SetTerminal(ctx context.Context, entryID string, st Status, staffID *uint) (*Entry, error)

	// ByUser возвращает нетерминальную запись участника или ErrEntryNotFound.
	ByUser(ctx context.Context, userID uint) (*Entry, error)

	// Active возвращает нетерминальные записи по возрастанию позиции.
	// Срез — согласованная копия, повторный вызов перечитывает состояние.
	Active(ctx context.Context) ([]Entry, error)
}
