package swap

import "github.com/StephenBergman/FitSwap/internal/models"

// Result классифицирует исход перехода. Явный тип вместо исключений:
// вызывающий обязан обработать каждый вариант.
type Result string

const (
	// ResultApplied — условная запись прошла, переход выполнен
	ResultApplied Result = "applied"

	// ResultAlreadyResolved — предикат не совпал: обмен уже разрешён
	// другой стороной. Нормальный исход переговоров, не сбой.
	ResultAlreadyResolved Result = "already_resolved"

	// ResultRejected — локальное предусловие не выполнено (не та роль или
	// статус в кэше не pending); сетевой вызов не выполнялся
	ResultRejected Result = "rejected"

	// ResultUnavailable — запись больше не существует; локальная копия удалена
	ResultUnavailable Result = "unavailable"

	// ResultFailed — транспортная ошибка; оптимистичное состояние откатано,
	// пользователь может повторить попытку вручную
	ResultFailed Result = "failed"
)

// Outcome представляет разрешённый исход операции движка.
// Swap — актуальное состояние локальной проекции после сверки (nil, если
// записи больше нет). Err заполняется только для ResultFailed.
type Outcome struct {
	Result Result
	Swap   *models.Swap
	Err    error
}

// Applied возвращает true для успешно выполненного перехода
func (o Outcome) Applied() bool {
	return o.Result == ResultApplied
}
