package detection

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"stock-scan/internal/domain/entity"
)

// Object один объект в ответе сервиса детекции
type Object struct {
	Product    string  `json:"producto"`
	Confidence float64 `json:"confianza"`
}

// Response тело ответа сервиса детекции.
type Response struct {
	Objects []Object `json:"objetos_detectados"`
}

// NewResponse собирает ответ из детекций, как его отдаёт сервер.
func NewResponse(batch entity.DetectionBatch) Response {
	objects := make([]Object, 0, len(batch))
	for _, d := range batch {
		objects = append(objects, Object{Product: d.Label, Confidence: d.Confidence})
	}
	return Response{Objects: objects}
}

// rawResponse и rawObject нужны при разборе: указатели отличают
// отсутствующее поле от нулевого значения.
type rawResponse struct {
	Objects *[]*rawObject `json:"objetos_detectados"`
}

type rawObject struct {
	Product    *string  `json:"producto"`
	Confidence *float64 `json:"confianza"`
}

// decodeResponse разбирает ровно один JSON-объект; каждый элемент обязан
// содержать producto и confianza, порядок сервера сохраняется.
func decodeResponse(r io.Reader) (entity.DetectionBatch, error) {
	dec := json.NewDecoder(r)

	var out rawResponse
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if err := dec.Decode(new(json.RawMessage)); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode response: unexpected data after json object")
	}
	if out.Objects == nil {
		return nil, errors.New("decode response: objetos_detectados is missing")
	}

	batch := make(entity.DetectionBatch, 0, len(*out.Objects))
	for i, o := range *out.Objects {
		if o == nil || o.Product == nil || o.Confidence == nil {
			return nil, fmt.Errorf("decode response: object %d has no producto or confianza", i)
		}
		batch = append(batch, entity.Detection{Label: *o.Product, Confidence: *o.Confidence})
	}
	return batch, nil
}
