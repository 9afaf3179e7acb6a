package port

import (
	"context"

	"stock-scan/internal/domain/entity"
)

// ImageSource интерфейс получения изображения от пользователя
type ImageSource interface {
	// PickFromLibrary выбирает готовое изображение.
	// Возвращает entity.ErrCancelled, если пользователь отказался от выбора.
	PickFromLibrary(ctx context.Context) (entity.ImageHandle, error)

	// CaptureFromCamera делает снимок камерой.
	// Возвращает entity.ErrPermissionDenied без запуска камеры, если доступа нет.
	CaptureFromCamera(ctx context.Context) (entity.ImageHandle, error)
}

// ImageLoader интерфейс чтения байтов изображения по ссылке
type ImageLoader interface {
	Load(ctx context.Context, handle entity.ImageHandle) ([]byte, error)
}
