package imagesource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"stock-scan/internal/domain/entity"
	"stock-scan/internal/domain/port"
)

// OutputPlaceholder заменяется в команде съёмки путём к файлу снимка.
const OutputPlaceholder = "{out}"

// LocalSource источник изображений на локальной машине: файл с диска или снимок с веб-камеры.
type LocalSource struct {
	LibraryPath    string   // выбранный файл; пусто означает отказ от выбора
	CameraDevice   string   // устройство камеры, проверяется до съёмки
	CaptureCommand []string // команда съёмки с OutputPlaceholder
	TempDir        string

	logger     *slog.Logger
	openDevice func(name string) (*os.File, error)
}

// NewLocalSource создаёт локальный источник
func NewLocalSource(libraryPath, cameraDevice string, captureCommand []string, logger *slog.Logger) *LocalSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalSource{
		LibraryPath:    libraryPath,
		CameraDevice:   cameraDevice,
		CaptureCommand: captureCommand,
		logger:         logger,
		openDevice:     os.Open,
	}
}

// PickFromLibrary возвращает ссылку на заранее выбранный файл.
func (s *LocalSource) PickFromLibrary(ctx context.Context) (entity.ImageHandle, error) {
	if ctx.Err() != nil || strings.TrimSpace(s.LibraryPath) == "" {
		return entity.ImageHandle{}, entity.ErrCancelled
	}

	abs, err := filepath.Abs(s.LibraryPath)
	if err != nil {
		return entity.ImageHandle{}, fmt.Errorf("resolve image path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return entity.ImageHandle{}, fmt.Errorf("stat image: %w", err)
	}
	if info.IsDir() {
		return entity.ImageHandle{}, fmt.Errorf("%w: %s is a directory", entity.ErrUnsupportedImage, abs)
	}

	mimeType, err := detectMimeType(abs)
	if err != nil {
		return entity.ImageHandle{}, err
	}

	handle := entity.NewImageHandle(fileURI(abs), mimeType, filepath.Base(abs))
	if !handle.IsStillImage() {
		return entity.ImageHandle{}, fmt.Errorf("%w: %s", entity.ErrUnsupportedImage, handle.MimeType)
	}

	s.logger.Debug("image picked", "uri", handle.URI, "mime", handle.MimeType)
	return handle, nil
}

// CaptureFromCamera проверяет доступ к камере и делает снимок внешней командой.
func (s *LocalSource) CaptureFromCamera(ctx context.Context) (entity.ImageHandle, error) {
	if err := s.checkCameraAccess(); err != nil {
		return entity.ImageHandle{}, err
	}
	if len(s.CaptureCommand) == 0 {
		return entity.ImageHandle{}, errors.New("capture command is not configured")
	}

	f, err := os.CreateTemp(s.TempDir, "capture-*.jpg")
	if err != nil {
		return entity.ImageHandle{}, fmt.Errorf("create capture file: %w", err)
	}
	out := f.Name()
	f.Close()

	args := make([]string, len(s.CaptureCommand))
	for i, a := range s.CaptureCommand {
		args[i] = strings.ReplaceAll(a, OutputPlaceholder, out)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	output, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		os.Remove(out)
		return entity.ImageHandle{}, entity.ErrCancelled
	}
	if err != nil {
		os.Remove(out)
		return entity.ImageHandle{}, fmt.Errorf("capture: %w: %s", err, bytes.TrimSpace(output))
	}

	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		os.Remove(out)
		return entity.ImageHandle{}, errors.New("capture produced no image")
	}

	handle := entity.NewImageHandle(fileURI(out), "image/jpeg", filepath.Base(out))
	s.logger.Info("photo captured", "uri", handle.URI, "bytes", info.Size())
	return handle, nil
}

// checkCameraAccess открывает устройство камеры; нет прав значит нет разрешения.
func (s *LocalSource) checkCameraAccess() error {
	if s.CameraDevice == "" {
		return nil
	}

	dev, err := s.openDevice(s.CameraDevice)
	if errors.Is(err, fs.ErrPermission) {
		s.logger.Warn("camera access denied", "device", s.CameraDevice)
		return entity.ErrPermissionDenied
	}
	if err != nil {
		return fmt.Errorf("open camera %s: %w", s.CameraDevice, err)
	}
	dev.Close()
	return nil
}

// detectMimeType определяет тип по расширению, иначе по содержимому.
func detectMimeType(path string) (string, error) {
	if mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); mt != "" {
		return mt, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read image: %w", err)
	}
	return http.DetectContentType(head[:n]), nil
}

func fileURI(abs string) string {
	return "file://" + filepath.ToSlash(abs)
}

// Проверка реализации интерфейса
var _ port.ImageSource = (*LocalSource)(nil)
