package entity

// Phase фаза экрана анализа
type Phase string

const (
	PhaseIdle          Phase = "idle"           // Изображение не выбрано
	PhaseImageSelected Phase = "image_selected" // Изображение выбрано, запроса нет
	PhasePending       Phase = "pending"        // Запрос выполняется
	PhaseSucceeded     Phase = "succeeded"      // Детекции получены
	PhaseFailed        Phase = "failed"         // Запрос завершился ошибкой
)

// RequestID номер запроса внутри сессии, растёт монотонно
type RequestID uint64

// RequestState единственный источник истины о том, что показывать пользователю.
type RequestState struct {
	Phase     Phase
	RequestID RequestID      // последний выданный запрос, 0 если запросов не было
	Batch     DetectionBatch // только в PhaseSucceeded
	ErrKind   ErrorKind      // только в PhaseFailed
	Err       error          // только в PhaseFailed
}

// IdleState начальное состояние
func IdleState() RequestState {
	return RequestState{Phase: PhaseIdle}
}

// ImageSelectedState состояние после выбора изображения.
func ImageSelectedState(last RequestID) RequestState {
	return RequestState{Phase: PhaseImageSelected, RequestID: last}
}

// PendingState состояние выполняющегося запроса
func PendingState(id RequestID) RequestState {
	return RequestState{Phase: PhasePending, RequestID: id}
}

// SucceededState состояние с полученными детекциями
func SucceededState(id RequestID, batch DetectionBatch) RequestState {
	return RequestState{Phase: PhaseSucceeded, RequestID: id, Batch: batch}
}

// FailedState состояние с ошибкой запроса
func FailedState(id RequestID, err error) RequestState {
	return RequestState{Phase: PhaseFailed, RequestID: id, ErrKind: KindOf(err), Err: err}
}

// CanSubmit сообщает, можно ли из этой фазы отправить изображение.
// Pending тоже допускает отправку: новый запрос вытесняет старый.
func (p Phase) CanSubmit() bool {
	return p != PhaseIdle && p != ""
}

// IsBusy сообщает, что нужно показывать индикатор загрузки.
func (s RequestState) IsBusy() bool {
	return s.Phase == PhasePending
}
