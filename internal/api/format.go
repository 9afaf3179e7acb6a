package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"stock-scan/internal/domain/entity"
)

// maxMessageRunes лимит Telegram на длину сообщения
const maxMessageRunes = 4096

func summaryText(batch entity.DetectionBatch) string {
	if batch.Len() == 0 {
		return msgNoDetections
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Total de objetos detectados: %d", batch.Len())
	for _, c := range batch.CountByLabel() {
		fmt.Fprintf(&sb, "\n• %s: %d", c.Label, c.Count)
	}
	return truncate(sb.String())
}

func analysisText(batch entity.DetectionBatch) string {
	if batch.Len() == 0 {
		return msgNoDetections
	}

	var sb strings.Builder
	sb.WriteString("📊 Análisis Detallado")
	for _, d := range batch {
		fmt.Fprintf(&sb, "\n🔹 %s - Confianza: %s", d.Label, strconv.FormatFloat(d.Confidence, 'f', -1, 64))
	}
	return truncate(sb.String())
}

func failureText(kind entity.ErrorKind) string {
	if kind.IsConnection() {
		return msgConnectionError
	}
	return msgImageError
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxMessageRunes {
		return s
	}
	return string(r[:maxMessageRunes-1]) + "…"
}
