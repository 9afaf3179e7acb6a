//go:build !gocv

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stock-scan/config"
	"stock-scan/internal/container"
	"stock-scan/internal/devserver"
	"stock-scan/internal/domain/entity"
)

func shelfPhoto(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shelf.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xFF, 0xD8, 0xFF, 0xE0}, 0o644))
	return path
}

func TestScan_PrintsDetections(t *testing.T) {
	srv := httptest.NewServer(devserver.NewRouter(entity.DetectionBatch{{Label: "leche", Confidence: 0.92}}, nil))
	defer srv.Close()

	cfg := &config.Config{DetectEndpoint: srv.URL + "/detect/", DetectTimeout: time.Second}
	sess := container.NewLocalSession(cfg, shelfPhoto(t), nil)
	defer sess.Close()

	var stdout, stderr bytes.Buffer
	code := scan(context.Background(), sess, false, &stdout, &stderr)
	require.Equal(t, exitOK, code)
	require.Equal(t, "Total de objetos detectados: 1\nleche - Confianza: 0.92\n", stdout.String())
	require.Empty(t, stderr.String())
}

func TestScan_ServerErrorReturnsCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := &config.Config{DetectEndpoint: srv.URL, DetectTimeout: time.Second}
	sess := container.NewLocalSession(cfg, shelfPhoto(t), nil)
	defer sess.Close()

	var stdout, stderr bytes.Buffer
	code := scan(context.Background(), sess, false, &stdout, &stderr)
	require.Equal(t, exitError, code)
	require.Equal(t, "Error de conexión con el servidor.\n", stderr.String())
	require.Empty(t, stdout.String())
}

func TestScan_NoImageSelected(t *testing.T) {
	sess := container.NewLocalSession(&config.Config{DetectEndpoint: "http://localhost:1/"}, "", nil)
	defer sess.Close()

	var stdout, stderr bytes.Buffer
	require.Equal(t, exitNoImage, scan(context.Background(), sess, false, &stdout, &stderr))
	require.Contains(t, stderr.String(), "Selecciona o toma una foto primero.")
}
