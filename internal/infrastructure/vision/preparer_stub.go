//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"
)

type JPEGPreparer struct {
	MaxSide int
	Quality int
}

// NewJPEGPreparer создаёт подготовщик-заглушку (без OpenCV).
func NewJPEGPreparer(maxSide int) *JPEGPreparer {
	return &JPEGPreparer{
		MaxSide: maxSide,
		Quality: 90,
	}
}

// Prepare без тега gocv отдаёт байты как есть.
func (p *JPEGPreparer) Prepare(ctx context.Context, imageData []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(imageData) == 0 {
		return nil, errors.New("empty image")
	}
	return imageData, nil
}
