package entity

import (
	"errors"
	"fmt"
)

var (
	ErrCancelled        = errors.New("image selection cancelled")
	ErrPermissionDenied = errors.New("camera permission denied")
	ErrUnsupportedImage = errors.New("not a still image")
	ErrNoImage          = errors.New("no image selected")
	ErrSuperseded       = errors.New("request superseded")
	ErrSessionClosed    = errors.New("session closed")
)

// ErrorKind категория ошибки запроса детекции
type ErrorKind string

const (
	ErrorKindNone    ErrorKind = ""
	ErrorKindNetwork ErrorKind = "network" // сервер недоступен, обрыв, таймаут
	ErrorKindServer  ErrorKind = "server"  // ответ не 2xx
	ErrorKindDecode  ErrorKind = "decode"  // тело ответа не разобрать
	ErrorKindImage   ErrorKind = "image"   // не удалось прочитать изображение
)

// IsConnection сообщает, что для пользователя это ошибка связи с сервером.
func (k ErrorKind) IsConnection() bool {
	switch k {
	case ErrorKindNetwork, ErrorKindServer, ErrorKindDecode:
		return true
	}
	return false
}

// DetectionError ошибка запроса детекции с категорией
type DetectionError struct {
	Kind   ErrorKind
	Status int // HTTP-статус для ErrorKindServer
	Err    error
}

func (e *DetectionError) Error() string {
	if e.Kind == ErrorKindServer {
		return fmt.Sprintf("detection %s error: status %d", e.Kind, e.Status)
	}
	return fmt.Sprintf("detection %s error: %v", e.Kind, e.Err)
}

func (e *DetectionError) Unwrap() error {
	return e.Err
}

// KindOf возвращает категорию ошибки; неизвестные ошибки считаются сетевыми.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}
	var de *DetectionError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ErrorKindNetwork
}
