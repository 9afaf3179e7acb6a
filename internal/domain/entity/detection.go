package entity

// Detection один найденный на полке объект
type Detection struct {
	Label      string  // название продукта
	Confidence float64 // уверенность, шкалу задаёт сервер
}

// DetectionBatch все детекции для одного изображения в порядке ответа сервера.
type DetectionBatch []Detection

// LabelCount количество объектов одного продукта
type LabelCount struct {
	Label string
	Count int
}

// Len возвращает количество детекций
func (b DetectionBatch) Len() int {
	return len(b)
}

// Clone возвращает независимую копию набора.
func (b DetectionBatch) Clone() DetectionBatch {
	if b == nil {
		return nil
	}
	out := make(DetectionBatch, len(b))
	copy(out, b)
	return out
}

// CountByLabel считает объекты по продуктам в порядке первого появления.
func (b DetectionBatch) CountByLabel() []LabelCount {
	index := make(map[string]int, len(b))
	counts := make([]LabelCount, 0, len(b))
	for _, d := range b {
		if i, ok := index[d.Label]; ok {
			counts[i].Count++
			continue
		}
		index[d.Label] = len(counts)
		counts = append(counts, LabelCount{Label: d.Label, Count: 1})
	}
	return counts
}
