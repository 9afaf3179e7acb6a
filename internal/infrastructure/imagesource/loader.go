package imagesource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"stock-scan/internal/domain/entity"
	"stock-scan/internal/domain/port"
)

// maxImageBytes верхняя граница размера загружаемого изображения
const maxImageBytes = 32 << 20

// Loader читает байты изображения по ссылке из ImageHandle.
type Loader struct {
	http     *http.Client
	maxBytes int64
}

// NewLoader создаёт загрузчик; client используется для http(s)-ссылок.
func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Loader{
		http:     client,
		maxBytes: maxImageBytes,
	}
}

// Load возвращает содержимое изображения
func (l *Loader) Load(ctx context.Context, handle entity.ImageHandle) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if handle.IsZero() {
		return nil, fmt.Errorf("load image: %w", entity.ErrNoImage)
	}

	u, err := url.Parse(handle.URI)
	if err != nil {
		return nil, fmt.Errorf("parse image uri: %w", err)
	}

	switch u.Scheme {
	case "":
		return l.readFile(handle.URI)
	case "file":
		return l.readFile(filePath(u))
	case "http", "https":
		return l.download(ctx, u.String())
	default:
		return nil, fmt.Errorf("unsupported image uri scheme %q", u.Scheme)
	}
}

func (l *Loader) readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("image %s is a directory", path)
	}
	if info.Size() > l.maxBytes {
		return nil, fmt.Errorf("image %s is too large (%d bytes)", path, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}

// download скачивает изображение, например файл Telegram
func (l *Loader) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := l.http.Do(req)
	if err != nil {
		// В ссылке на файл Telegram есть токен бота, в ошибку её не пускаем.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("image is larger than %d bytes", l.maxBytes)
	}
	return data, nil
}

// filePath достаёт путь из file://-ссылки; file://a.jpg тоже считается относительным путём.
func filePath(u *url.URL) string {
	if u.Host != "" && u.Host != "localhost" {
		return u.Host + u.Path
	}
	return u.Path
}

// Проверка реализации интерфейса
var _ port.ImageLoader = (*Loader)(nil)
