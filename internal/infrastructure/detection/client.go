package detection

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"github.com/google/uuid"

	"stock-scan/internal/domain/entity"
	"stock-scan/internal/domain/port"
)

const (
	// FormField имя поля с файлом в multipart-запросе
	FormField = "file"
	// UploadFileName имя файла, которое ждёт сервер
	UploadFileName = "shelf.jpg"
	// UploadContentType тип части с файлом, не зависит от источника
	UploadContentType = "image/jpeg"

	// RequestIDHeader заголовок для поиска запроса в логах сервера
	RequestIDHeader = "X-Request-ID"

	maxResponseBytes = 8 << 20
)

// Client клиент удалённого сервиса детекции объектов на полке.
type Client struct {
	endpoint string
	http     *http.Client
	loader   port.ImageLoader
	preparer port.ImagePreparer
	logger   *slog.Logger
}

// NewClient создаёт клиента. timeout 0 означает отсутствие таймаута.
// preparer может быть nil, тогда байты уходят как есть.
func NewClient(endpoint string, timeout time.Duration, loader port.ImageLoader, preparer port.ImagePreparer, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		loader:   loader,
		preparer: preparer,
		logger:   logger,
	}
}

// Detect загружает изображение, отправляет его одним POST-запросом и разбирает ответ.
// Все ошибки возвращаются как *entity.DetectionError.
func (c *Client) Detect(ctx context.Context, handle entity.ImageHandle) (entity.DetectionBatch, error) {
	imageData, err := c.loadImage(ctx, handle)
	if err != nil {
		return nil, err
	}

	body, contentType, err := encodeMultipart(imageData)
	if err != nil {
		return nil, &entity.DetectionError{Kind: entity.ErrorKindImage, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, &entity.DetectionError{Kind: entity.ErrorKindNetwork, Err: fmt.Errorf("create request: %w", err)}
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("detect request failed", "trace_id", reqID, "error", err)
		return nil, &entity.DetectionError{Kind: entity.ErrorKindNetwork, Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("detect request rejected", "trace_id", reqID, "status", resp.StatusCode, "body", string(snippet))
		return nil, &entity.DetectionError{
			Kind:   entity.ErrorKindServer,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	batch, err := decodeResponse(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, &entity.DetectionError{Kind: entity.ErrorKindNetwork, Err: ctx.Err()}
		}
		c.logger.Warn("detect response undecodable", "trace_id", reqID, "error", err)
		return nil, &entity.DetectionError{Kind: entity.ErrorKindDecode, Err: err}
	}

	c.logger.Debug("detect request done", "trace_id", reqID, "detections", batch.Len(), "elapsed", time.Since(started))
	return batch, nil
}

func (c *Client) loadImage(ctx context.Context, handle entity.ImageHandle) ([]byte, error) {
	data, err := c.loader.Load(ctx, handle)
	if err != nil {
		kind := entity.ErrorKindImage
		// Скачать удалённый файл не удалось: это проблема связи, а не снимка.
		if ctx.Err() != nil || isRemote(handle.URI) {
			kind = entity.ErrorKindNetwork
		}
		return nil, &entity.DetectionError{Kind: kind, Err: err}
	}
	if c.preparer == nil {
		return data, nil
	}

	data, err = c.preparer.Prepare(ctx, data)
	if err != nil {
		kind := entity.ErrorKindImage
		if ctx.Err() != nil {
			kind = entity.ErrorKindNetwork
		}
		return nil, &entity.DetectionError{Kind: kind, Err: err}
	}
	return data, nil
}

func isRemote(uri string) bool {
	u, err := url.Parse(uri)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// encodeMultipart собирает тело с единственной частью file=shelf.jpg.
func encodeMultipart(imageData []byte) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FormField, UploadFileName))
	h.Set("Content-Type", UploadContentType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, "", fmt.Errorf("copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

// Проверка реализации интерфейса
var _ port.DetectionClient = (*Client)(nil)
