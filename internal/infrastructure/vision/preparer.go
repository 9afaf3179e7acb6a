//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"image"

	"gocv.io/x/gocv"
)

// JPEGPreparer перекодирует снимок в JPEG и уменьшает слишком большие кадры.
type JPEGPreparer struct {
	MaxSide int
	Quality int
}

// NewJPEGPreparer создаёт подготовщик с ограничением на длинную сторону.
func NewJPEGPreparer(maxSide int) *JPEGPreparer {
	return &JPEGPreparer{
		MaxSide: maxSide,
		Quality: 90,
	}
}

// Prepare декодирует изображение любого поддерживаемого формата и кодирует его в JPEG.
func (p *JPEGPreparer) Prepare(ctx context.Context, imageData []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(imageData) == 0 {
		return nil, errors.New("empty image")
	}

	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer func() { mat.Close() }()

	// Длинная сторона больше MaxSide только раздувает запрос.
	if p.MaxSide > 0 && (mat.Cols() > p.MaxSide || mat.Rows() > p.MaxSide) {
		scale := float64(p.MaxSide) / float64(maxInt(mat.Cols(), mat.Rows()))
		newW := int(float64(mat.Cols()) * scale)
		newH := int(float64(mat.Rows()) * scale)
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(newW, newH), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{int(gocv.IMWriteJpegQuality), p.Quality})
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode image")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
