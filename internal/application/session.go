package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"stock-scan/internal/domain/entity"
	"stock-scan/internal/domain/port"
)

var errNoSource = errors.New("image source is not configured")

// Request выданный сессией запрос детекции
type Request struct {
	ID    entity.RequestID
	Image entity.ImageHandle
	done  chan struct{}
}

// Done закрывается, когда запрос завершён, отменён или вытеснен.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Session машина состояний экрана анализа: выбор изображения, отправка, результат.
// Авторитетен только последний выданный запрос, ответы на остальные отбрасываются.
type Session struct {
	source port.ImageSource
	client port.DetectionClient
	store  port.DetectionResultStore
	logger *slog.Logger

	mu     sync.Mutex
	image  *entity.ImageHandle
	state  entity.RequestState
	lastID entity.RequestID
	cancel context.CancelFunc
	closed bool
}

// NewSession создаёт сессию в состоянии Idle. source может быть nil,
// если изображения приходят снаружи через SelectImage.
func NewSession(source port.ImageSource, client port.DetectionClient, store port.DetectionResultStore, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		source: source,
		client: client,
		store:  store,
		logger: logger,
		state:  entity.IdleState(),
	}
}

// State возвращает снимок текущего состояния
func (s *Session) State() entity.RequestState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Batch = st.Batch.Clone()
	return st
}

// Image возвращает выбранное изображение
func (s *Session) Image() (entity.ImageHandle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.image == nil {
		return entity.ImageHandle{}, false
	}
	return *s.image, true
}

// Results возвращает детекции из хранилища
func (s *Session) Results() entity.DetectionBatch {
	return s.store.Current()
}

// PickFromLibrary выбирает изображение из библиотеки и делает его текущим.
func (s *Session) PickFromLibrary(ctx context.Context) (entity.ImageHandle, error) {
	if s.source == nil {
		return entity.ImageHandle{}, errNoSource
	}
	handle, err := s.source.PickFromLibrary(ctx)
	if err != nil {
		return entity.ImageHandle{}, err
	}
	return handle, s.SelectImage(handle)
}

// CaptureFromCamera делает снимок и делает его текущим изображением.
func (s *Session) CaptureFromCamera(ctx context.Context) (entity.ImageHandle, error) {
	if s.source == nil {
		return entity.ImageHandle{}, errNoSource
	}
	handle, err := s.source.CaptureFromCamera(ctx)
	if err != nil {
		return entity.ImageHandle{}, err
	}
	return handle, s.SelectImage(handle)
}

// SelectImage устанавливает новое изображение: прошлые детекции стираются,
// выполняющийся запрос отменяется.
func (s *Session) SelectImage(handle entity.ImageHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return entity.ErrSessionClosed
	}

	s.abortLocked()
	s.image = &handle
	s.store.Reset()
	s.state = entity.ImageSelectedState(s.lastID)

	s.logger.Debug("image selected", "file", handle.FileName, "mime", handle.MimeType)
	return nil
}

// Submit отправляет текущее изображение. Выполняющийся запрос вытесняется:
// его контекст отменяется, а результат не попадёт в состояние.
func (s *Session) Submit(ctx context.Context) (*Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, entity.ErrSessionClosed
	}
	if s.image == nil || !s.state.Phase.CanSubmit() {
		return nil, entity.ErrNoImage
	}

	if s.state.Phase == entity.PhasePending {
		s.logger.Debug("request superseded", "request_id", s.state.RequestID)
	}
	s.abortLocked()

	s.lastID++
	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	req := &Request{ID: s.lastID, Image: *s.image, done: make(chan struct{})}
	s.state = entity.PendingState(req.ID)

	go s.run(reqCtx, cancel, req)
	return req, nil
}

// Cancel прерывает запрос, если он ещё текущий и выполняется.
// Результат отменённого запроса не доставляется.
func (s *Session) Cancel(id entity.RequestID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase != entity.PhasePending || s.state.RequestID != id {
		return false
	}
	s.abortLocked()
	s.state = entity.ImageSelectedState(id)

	s.logger.Debug("request cancelled", "request_id", id)
	return true
}

// Await ждёт завершения запроса и возвращает состояние с его результатом.
// Для отменённого или вытесненного запроса возвращает entity.ErrSuperseded.
func (s *Session) Await(ctx context.Context, req *Request) (entity.RequestState, error) {
	select {
	case <-req.Done():
	case <-ctx.Done():
		return entity.RequestState{}, ctx.Err()
	}

	st := s.State()
	if st.RequestID != req.ID || (st.Phase != entity.PhaseSucceeded && st.Phase != entity.PhaseFailed) {
		return entity.RequestState{}, entity.ErrSuperseded
	}
	return st, nil
}

// Close отменяет выполняющийся запрос; после него сессия не принимает запросы.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.abortLocked()
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, req *Request) {
	defer close(req.done)
	defer cancel()

	batch, err := s.client.Detect(ctx, req.Image)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase != entity.PhasePending || s.state.RequestID != req.ID {
		s.logger.Debug("stale detection result dropped", "request_id", req.ID)
		return
	}
	s.cancel = nil

	// Родительский контекст отменён снаружи: результата нет.
	if ctx.Err() != nil {
		s.state = entity.ImageSelectedState(req.ID)
		return
	}

	if err != nil {
		s.state = entity.FailedState(req.ID, err)
		s.logger.Warn("detection failed", "request_id", req.ID, "kind", s.state.ErrKind, "error", err)
		return
	}

	s.store.SetBatch(batch)
	s.state = entity.SucceededState(req.ID, batch.Clone())
	s.logger.Info("detection succeeded", "request_id", req.ID, "detections", batch.Len())
}

func (s *Session) abortLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
