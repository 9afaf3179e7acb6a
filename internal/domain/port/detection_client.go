package port

import (
	"context"

	"stock-scan/internal/domain/entity"
)

// DetectionClient интерфейс удалённого сервиса детекции
type DetectionClient interface {
	// Detect отправляет изображение на сервер и возвращает детекции.
	// Отмена ctx прерывает передачу.
	Detect(ctx context.Context, handle entity.ImageHandle) (entity.DetectionBatch, error)
}

// ImagePreparer интерфейс подготовки изображения перед отправкой
type ImagePreparer interface {
	// Prepare возвращает байты, готовые к отправке как image/jpeg
	Prepare(ctx context.Context, imageData []byte) ([]byte, error)
}
