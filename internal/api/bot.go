package telegram

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "stock-scan/internal/application"
	"stock-scan/internal/domain/entity"
)

const (
	msgStart = `📸 Análisis de Stock

Envíame una foto del estante y la analizo.

📋 Comandos:
/detect — enviar la imagen al servidor
/result — ver el análisis detallado
/cancel — cancelar el análisis en curso
/help — ayuda`

	msgHelp = `ℹ️ Cómo usar el bot:

1️⃣ Envía una foto del estante (como foto o como archivo)
2️⃣ Pulsa «🚀 Enviar imagen» o usa /detect
3️⃣ Recibirás el total de objetos detectados y el análisis por producto

Una nueva foto reemplaza a la anterior y descarta el análisis en curso.`

	msgImageReceived   = "📷 Imagen recibida."
	msgSelectFirst     = "Selecciona o toma una foto primero."
	msgProcessing      = "⏳ Analizando imagen..."
	msgConnectionError = "Error de conexión con el servidor."
	msgImageError      = "⚠️ No se pudo leer la imagen. Envía otra foto."
	msgNoDetections    = "No se detectaron objetos."
	msgNoResults       = "Todavía no hay resultados. Envía una foto y usa /detect."
	msgCancelled       = "❌ Análisis cancelado."
	msgNothingToCancel = "No hay ningún análisis en curso."
	msgNotAnImage      = "Solo se aceptan imágenes."
	msgSendPhoto       = "📸 Envía una foto del estante."
	msgUnknownCommand  = "❓ Comando desconocido. Usa /help."

	callbackDetect   = "detect"
	callbackAnalysis = "analysis"
)

// Bot представляет Telegram-бота
type Bot struct {
	api      *tgbotapi.BotAPI
	sessions *app.Registry
	logger   *slog.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, sessions *app.Registry, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	logger.Info("authorized", "account", api.Self.UserName)

	return &Bot{
		api:      api,
		sessions: sessions,
		logger:   logger,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			b.sessions.Close()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			switch {
			case update.CallbackQuery != nil:
				b.handleCallback(ctx, update.CallbackQuery)
			case update.Message != nil:
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	sess := b.sessions.Get(msg.Chat.ID)

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, sess)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		// Берём файл с максимальным разрешением
		photo := msg.Photo[len(msg.Photo)-1]
		b.acceptImage(msg.Chat.ID, sess, photo.FileID, "image/jpeg")
		return
	}

	// Изображение, отправленное файлом, приходит без сжатия
	if msg.Document != nil {
		if !strings.HasPrefix(msg.Document.MimeType, "image/") {
			b.sendMessage(msg.Chat.ID, msgNotAnImage)
			return
		}
		b.acceptImage(msg.Chat.ID, sess, msg.Document.FileID, msg.Document.MimeType)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, sess *app.Session) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "detect":
		b.submit(ctx, chatID, sess)

	case "result":
		b.sendAnalysis(chatID, sess)

	case "cancel":
		st := sess.State()
		if st.Phase == entity.PhasePending && sess.Cancel(st.RequestID) {
			b.sendMessage(chatID, msgCancelled)
			return
		}
		b.sendMessage(chatID, msgNothingToCancel)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handleCallback обрабатывает нажатия inline-кнопок
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("answer callback failed", "error", err)
	}
	if cb.Message == nil {
		return
	}

	chatID := cb.Message.Chat.ID
	sess := b.sessions.Get(chatID)

	switch cb.Data {
	case callbackDetect:
		b.submit(ctx, chatID, sess)
	case callbackAnalysis:
		b.sendAnalysis(chatID, sess)
	}
}

// acceptImage делает присланный файл текущим изображением чата
func (b *Bot) acceptImage(chatID int64, sess *app.Session, fileID, mimeType string) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		b.logger.Error("get file failed", "chat_id", chatID, "error", err)
		b.sendMessage(chatID, msgImageError)
		return
	}

	handle := entity.NewImageHandle(file.Link(b.api.Token), mimeType, path.Base(file.FilePath))
	if err := sess.SelectImage(handle); err != nil {
		b.logger.Error("select image failed", "chat_id", chatID, "error", err)
		return
	}

	reply := tgbotapi.NewMessage(chatID, msgImageReceived)
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🚀 Enviar imagen", callbackDetect)),
	)
	b.send(reply)
}

// submit отправляет изображение и ждёт результат в отдельной горутине
func (b *Bot) submit(ctx context.Context, chatID int64, sess *app.Session) {
	req, err := sess.Submit(ctx)
	if errors.Is(err, entity.ErrNoImage) {
		b.sendMessage(chatID, msgSelectFirst)
		return
	}
	if err != nil {
		b.logger.Error("submit failed", "chat_id", chatID, "error", err)
		return
	}

	b.logger.Info("detection submitted", "chat_id", chatID, "request_id", req.ID)
	b.sendMessage(chatID, msgProcessing)

	go b.deliver(ctx, chatID, sess, req)
}

// deliver отправляет пользователю результат, если запрос всё ещё актуален
func (b *Bot) deliver(ctx context.Context, chatID int64, sess *app.Session, req *app.Request) {
	st, err := sess.Await(ctx, req)
	if err != nil {
		b.logger.Debug("result not delivered", "chat_id", chatID, "request_id", req.ID, "reason", err)
		return
	}

	if st.Phase == entity.PhaseFailed {
		b.sendMessage(chatID, failureText(st.ErrKind))
		return
	}

	reply := tgbotapi.NewMessage(chatID, summaryText(st.Batch))
	if st.Batch.Len() > 0 {
		reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📊 Ver análisis", callbackAnalysis)),
		)
	}
	b.send(reply)
}

// sendAnalysis показывает подробный список детекций
func (b *Bot) sendAnalysis(chatID int64, sess *app.Session) {
	st := sess.State()
	if st.Phase != entity.PhaseSucceeded {
		b.sendMessage(chatID, msgNoResults)
		return
	}
	b.sendMessage(chatID, analysisText(st.Batch))
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("send message failed", "chat_id", msg.ChatID, "error", err)
	}
}
