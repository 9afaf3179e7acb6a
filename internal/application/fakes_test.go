package app

import (
	"context"

	"stock-scan/internal/domain/entity"
)

type outcome struct {
	batch entity.DetectionBatch
	err   error
}

// gatedCall один вызов Detect, ждущий ответа из теста
type gatedCall struct {
	ctx    context.Context
	handle entity.ImageHandle
	reply  chan outcome
}

// gatedClient отдаёт ответ только когда тест его пришлёт и не смотрит на ctx,
// как клиент, ответ которого пришёл уже после отмены.
type gatedClient struct {
	calls chan *gatedCall
}

func newGatedClient() *gatedClient {
	return &gatedClient{calls: make(chan *gatedCall, 8)}
}

func (c *gatedClient) Detect(ctx context.Context, handle entity.ImageHandle) (entity.DetectionBatch, error) {
	call := &gatedCall{ctx: ctx, handle: handle, reply: make(chan outcome, 1)}
	c.calls <- call
	o := <-call.reply
	return o.batch, o.err
}

type fakeSource struct {
	handle entity.ImageHandle
	err    error
}

func (s fakeSource) PickFromLibrary(ctx context.Context) (entity.ImageHandle, error) {
	return s.handle, s.err
}

func (s fakeSource) CaptureFromCamera(ctx context.Context) (entity.ImageHandle, error) {
	return s.handle, s.err
}
