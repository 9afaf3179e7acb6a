package detection_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stock-scan/internal/devserver"
	"stock-scan/internal/domain/entity"
	"stock-scan/internal/infrastructure/detection"
	"stock-scan/internal/infrastructure/imagesource"
)

func imageHandle(t *testing.T, mimeType string) entity.ImageHandle {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xFF, 0xD8, 0xFF, 0xE0, 'j', 'p', 'g'}, 0o644))
	return entity.NewImageHandle("file://"+path, mimeType, "a.jpg")
}

func newClient(endpoint string, timeout time.Duration) *detection.Client {
	return detection.NewClient(endpoint, timeout, imagesource.NewLoader(nil), nil, nil)
}

func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Detect_SingleProduct(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"objetos_detectados":[{"producto":"leche","confianza":0.92}]}`)

	batch, err := newClient(srv.URL, time.Second).Detect(context.Background(), imageHandle(t, "image/jpeg"))
	require.NoError(t, err)
	require.Equal(t, entity.DetectionBatch{{Label: "leche", Confidence: 0.92}}, batch)
}

func TestClient_Detect_PreservesOrder(t *testing.T) {
	srv := httptest.NewServer(devserver.NewRouter(devserver.DefaultDetections, nil))
	defer srv.Close()

	batch, err := newClient(srv.URL+"/detect/", time.Second).Detect(context.Background(), imageHandle(t, "image/jpeg"))
	require.NoError(t, err)
	require.Equal(t, devserver.DefaultDetections, batch)
}

func TestClient_Detect_EmptyList(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"objetos_detectados":[]}`)

	batch, err := newClient(srv.URL, time.Second).Detect(context.Background(), imageHandle(t, "image/jpeg"))
	require.NoError(t, err)
	require.Equal(t, 0, batch.Len())
}

func TestClient_Detect_MultipartShape(t *testing.T) {
	type upload struct {
		filename, contentType, traceID string
		data                           []byte
	}
	got := make(chan upload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile(detection.FormField)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		got <- upload{
			filename:    header.Filename,
			contentType: header.Header.Get("Content-Type"),
			traceID:     r.Header.Get(detection.RequestIDHeader),
			data:        data,
		}
		io.WriteString(w, `{"objetos_detectados":[]}`)
	}))
	defer srv.Close()

	// Тип источника не влияет на тип части.
	_, err := newClient(srv.URL, time.Second).Detect(context.Background(), imageHandle(t, "image/png"))
	require.NoError(t, err)

	u := <-got
	require.Equal(t, "shelf.jpg", u.filename)
	require.Equal(t, "image/jpeg", u.contentType)
	require.NotEmpty(t, u.traceID)
	require.Equal(t, []byte{0xFF, 0xD8, 0xFF, 0xE0, 'j', 'p', 'g'}, u.data)
}

func TestClient_Detect_ServerError(t *testing.T) {
	srv := jsonServer(t, http.StatusInternalServerError, `{"error":"boom"}`)

	_, err := newClient(srv.URL, time.Second).Detect(context.Background(), imageHandle(t, "image/jpeg"))
	var de *entity.DetectionError
	require.ErrorAs(t, err, &de)
	require.Equal(t, entity.ErrorKindServer, de.Kind)
	require.Equal(t, http.StatusInternalServerError, de.Status)
	require.True(t, entity.KindOf(err).IsConnection())
}

func TestClient_Detect_DecodeErrors(t *testing.T) {
	for name, body := range map[string]string{
		"not json":     `<html>502</html>`,
		"missing key":  `{"detections":[]}`,
		"null list":    `{"objetos_detectados":null}`,
		"wrong shape":  `{"objetos_detectados":"leche"}`,
		"bad element":  `{"objetos_detectados":[{"producto":1,"confianza":"x"}]}`,
		"empty object": `{"objetos_detectados":[{}]}`,
		"null object":  `{"objetos_detectados":[null]}`,
		"foreign keys": `{"objetos_detectados":[{"name":"leche","score":0.9}]}`,
		"no label":     `{"objetos_detectados":[{"producto":"leche","confianza":0.92},{"confianza":0.5}]}`,
		"trailing":     `{"objetos_detectados":[{"producto":"leche","confianza":0.92}]} <html>`,
		"second value": `{"objetos_detectados":[]}{"objetos_detectados":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := jsonServer(t, http.StatusOK, body)

			_, err := newClient(srv.URL, time.Second).Detect(context.Background(), imageHandle(t, "image/jpeg"))
			require.Equal(t, entity.ErrorKindDecode, entity.KindOf(err))
			require.True(t, entity.KindOf(err).IsConnection())
		})
	}
}

func TestClient_Detect_NoConnectivity(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	_, err := newClient(endpoint, time.Second).Detect(context.Background(), imageHandle(t, "image/jpeg"))
	require.Equal(t, entity.ErrorKindNetwork, entity.KindOf(err))
	require.True(t, entity.KindOf(err).IsConnection())
}

func TestClient_Detect_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newClient(srv.URL, 50*time.Millisecond).Detect(context.Background(), imageHandle(t, "image/jpeg"))
	require.Equal(t, entity.ErrorKindNetwork, entity.KindOf(err))
}

func TestClient_Detect_Cancelled(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		close(started)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := newClient(srv.URL, 0).Detect(ctx, imageHandle(t, "image/jpeg"))
		errc <- err
	}()

	<-started
	cancel()

	select {
	case err := <-errc:
		require.True(t, errors.Is(err, context.Canceled), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("cancel did not abort the transfer")
	}
}

func TestClient_Detect_UnreadableImage(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"objetos_detectados":[]}`)
	handle := entity.NewImageHandle(filepath.Join(t.TempDir(), "gone.jpg"), "image/jpeg", "gone.jpg")

	_, err := newClient(srv.URL, time.Second).Detect(context.Background(), handle)
	require.Equal(t, entity.ErrorKindImage, entity.KindOf(err))
	require.False(t, entity.KindOf(err).IsConnection())
}

func TestClient_Detect_TrailingWhitespaceAccepted(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, "{\"objetos_detectados\":[{\"producto\":\"leche\",\"confianza\":0}]}\n")

	batch, err := newClient(srv.URL, time.Second).Detect(context.Background(), imageHandle(t, "image/jpeg"))
	require.NoError(t, err)
	require.Equal(t, entity.DetectionBatch{{Label: "leche", Confidence: 0}}, batch)
}

func TestClient_Detect_RemoteImageUnreachable(t *testing.T) {
	files := httptest.NewServer(http.NotFoundHandler())
	fileURL := files.URL + "/file/bot123/photos/file_1.jpg"
	files.Close()
	srv := jsonServer(t, http.StatusOK, `{"objetos_detectados":[]}`)

	_, err := newClient(srv.URL, time.Second).Detect(context.Background(), entity.NewImageHandle(fileURL, "image/jpeg", "file_1.jpg"))
	require.Equal(t, entity.ErrorKindNetwork, entity.KindOf(err))
	require.True(t, entity.KindOf(err).IsConnection())
}
