package entity

import "strings"

// ImageHandle ссылка на локальное или удалённое изображение.
type ImageHandle struct {
	URI      string // file://, путь на диске или http(s)-ссылка
	MimeType string // тип содержимого источника
	FileName string // имя файла у источника
}

// stillImageTypes допустимые типы неподвижных изображений
var stillImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/bmp":  {},
	"image/tiff": {},
}

// NewImageHandle создаёт ссылку на изображение
func NewImageHandle(uri, mimeType, fileName string) ImageHandle {
	return ImageHandle{
		URI:      uri,
		MimeType: strings.ToLower(strings.TrimSpace(mimeType)),
		FileName: fileName,
	}
}

// IsStillImage сообщает, что ссылка указывает на неподвижное изображение.
func (h ImageHandle) IsStillImage() bool {
	mt := h.MimeType
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	_, ok := stillImageTypes[mt]
	return ok
}

// IsZero сообщает, что ссылка пустая.
func (h ImageHandle) IsZero() bool {
	return h.URI == ""
}
