package port

import "stock-scan/internal/domain/entity"

// DetectionResultStore интерфейс хранилища последних детекций
type DetectionResultStore interface {
	// Reset очищает хранилище
	Reset()

	// SetBatch целиком заменяет содержимое
	SetBatch(batch entity.DetectionBatch)

	// Current возвращает текущие детекции
	Current() entity.DetectionBatch
}
