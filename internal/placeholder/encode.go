package placeholder

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// sampleSize BlurHash 计算前的缩放尺寸
	sampleSize = 64

	// previewSize 输出预览图的最长边
	previewSize = 16

	xComponents = 4
	yComponents = 3
)

// Encode 将图片编码为模糊预览的 data URI
func Encode(img image.Image) (string, error) {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return "", fmt.Errorf("empty image")
	}

	hash, err := blurhash.Encode(xComponents, yComponents, fit(img, sampleSize))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}

	w, h := scaledSize(bounds.Dx(), bounds.Dy(), previewSize)
	preview, err := blurhash.Decode(hash, w, h, 1)
	if err != nil {
		return "", fmt.Errorf("decode blurhash: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, preview); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// fit 等比缩小到最长边不超过 size，已足够小时原样返回
func fit(img image.Image, size int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= size && bounds.Dy() <= size {
		return img
	}

	w, h := scaledSize(bounds.Dx(), bounds.Dy(), size)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// scaledSize 计算保持宽高比、最长边为 size 的尺寸
func scaledSize(srcWidth, srcHeight, size int) (int, int) {
	if srcWidth >= srcHeight {
		h := srcHeight * size / srcWidth
		if h < 1 {
			h = 1
		}
		return size, h
	}

	w := srcWidth * size / srcHeight
	if w < 1 {
		w = 1
	}
	return w, size
}
