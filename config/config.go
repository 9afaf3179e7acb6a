package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEndpoint      = "http://localhost:8080/detect/"
	defaultTimeout       = 30 * time.Second
	defaultCameraDevice  = "/dev/video0"
	defaultCameraCommand = "fswebcam -r 1280x720 --no-banner --jpeg 95 {out}"
	defaultJPEGMaxSide   = 2048
	defaultDevServerAddr = ":8080"
)

type Config struct {
	TelegramToken  string
	DetectEndpoint string
	DetectTimeout  time.Duration // 0 отключает таймаут
	CameraDevice   string
	CameraCommand  []string
	JPEGMaxSide    int
	LogLevel       slog.Level
	DevServerAddr  string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		DetectEndpoint: getEnv("DETECT_ENDPOINT", defaultEndpoint),
		CameraDevice:   getEnv("CAMERA_DEVICE", defaultCameraDevice),
		CameraCommand:  strings.Fields(getEnv("CAMERA_COMMAND", defaultCameraCommand)),
		DevServerAddr:  getEnv("DEVSERVER_ADDR", defaultDevServerAddr),
	}

	timeout, err := time.ParseDuration(getEnv("DETECT_TIMEOUT", defaultTimeout.String()))
	if err != nil {
		return nil, fmt.Errorf("DETECT_TIMEOUT: %w", err)
	}
	if timeout < 0 {
		return nil, fmt.Errorf("DETECT_TIMEOUT must not be negative, got %s", timeout)
	}
	cfg.DetectTimeout = timeout

	maxSide, err := strconv.Atoi(getEnv("JPEG_MAX_SIDE", strconv.Itoa(defaultJPEGMaxSide)))
	if err != nil {
		return nil, fmt.Errorf("JPEG_MAX_SIDE: %w", err)
	}
	cfg.JPEGMaxSide = maxSide

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

// NewLogger возвращает JSON-логгер slog с уровнем из конфигурации.
func (c *Config) NewLogger() *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: c.LogLevel})
	return slog.New(h)
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}
