// Package devserver отдаёт фиксированные детекции вместо настоящего сервиса,
// чтобы гонять бота и сканер локально.
package devserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"stock-scan/internal/domain/entity"
	"stock-scan/internal/infrastructure/detection"
)

const maxUploadBytes = 50 << 20

// DefaultDetections ответ по умолчанию
var DefaultDetections = entity.DetectionBatch{
	{Label: "leche", Confidence: 0.92},
	{Label: "pan", Confidence: 0.87},
	{Label: "leche", Confidence: 0.81},
	{Label: "arroz", Confidence: 0.64},
}

type server struct {
	detections entity.DetectionBatch
	logger     *slog.Logger
}

// NewRouter создаёт роутер с POST /detect/ и GET /health.
func NewRouter(detections entity.DetectionBatch, logger *slog.Logger) *mux.Router {
	if logger == nil {
		logger = slog.Default()
	}
	s := &server{detections: detections.Clone(), logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/detect/", s.detect).Methods(http.MethodPost)
	r.HandleFunc("/detect", s.detect).Methods(http.MethodPost)
	return r
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// detect принимает multipart с полем file и отвечает заготовленными детекциями.
func (s *server) detect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile(detection.FormField)
	if err != nil {
		respondError(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	n, err := io.Copy(io.Discard, file)
	if err != nil {
		respondError(w, "Failed to read file", http.StatusInternalServerError)
		return
	}
	if n == 0 {
		respondError(w, "Empty file", http.StatusBadRequest)
		return
	}

	s.logger.Info("detect",
		"trace_id", r.Header.Get(detection.RequestIDHeader),
		"filename", header.Filename,
		"content_type", header.Header.Get("Content-Type"),
		"bytes", n,
	)
	respondJSON(w, detection.NewResponse(s.detections), http.StatusOK)
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, map[string]string{"error": message}, status)
}
