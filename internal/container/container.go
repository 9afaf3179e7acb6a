package container

import (
	"log/slog"

	"stock-scan/config"
	app "stock-scan/internal/application"
	"stock-scan/internal/domain/port"
	"stock-scan/internal/infrastructure/detection"
	"stock-scan/internal/infrastructure/imagesource"
	"stock-scan/internal/infrastructure/storage"
	"stock-scan/internal/infrastructure/vision"
)

type Container struct {
	Client   *detection.Client
	Sessions *app.Registry
	Logger   *slog.Logger
}

// New собирает клиента детекции и реестр сессий чатов.
func New(cfg *config.Config, logger *slog.Logger) *Container {
	client := NewDetectionClient(cfg, logger)

	sessions := app.NewRegistry(func() *app.Session {
		return app.NewSession(nil, client, storage.NewMemoryResultStore(), logger)
	})

	return &Container{
		Client:   client,
		Sessions: sessions,
		Logger:   logger,
	}
}

// NewDetectionClient создаёт клиента с загрузчиком и подготовкой JPEG.
func NewDetectionClient(cfg *config.Config, logger *slog.Logger) *detection.Client {
	var preparer port.ImagePreparer = vision.NewJPEGPreparer(cfg.JPEGMaxSide)
	return detection.NewClient(cfg.DetectEndpoint, cfg.DetectTimeout, imagesource.NewLoader(nil), preparer, logger)
}

// NewLocalSession создаёт одиночную сессию с локальным источником изображений.
func NewLocalSession(cfg *config.Config, libraryPath string, logger *slog.Logger) *app.Session {
	source := imagesource.NewLocalSource(libraryPath, cfg.CameraDevice, cfg.CameraCommand, logger)
	return app.NewSession(source, NewDetectionClient(cfg, logger), storage.NewMemoryResultStore(), logger)
}
