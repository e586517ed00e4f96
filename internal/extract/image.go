package extract

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoder

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// PrepareImage bounds an encoded image for oracle transmission. Images
// whose long edge exceeds maxEdge are downscaled with Catmull-Rom
// resampling and re-encoded as JPEG at the given quality. JPEG and PNG
// inputs within bounds pass through untouched.
func PrepareImage(data []byte, maxEdge, quality int) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", eris.Wrap(err, "image: decode")
	}

	mediaType := "image/" + format
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	long := w
	if h > long {
		long = h
	}
	if long <= maxEdge {
		return data, mediaType, nil
	}

	scale := float64(maxEdge) / float64(long)
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, "", eris.Wrap(err, "image: re-encode")
	}

	zap.L().Debug("image: downscaled for transmission",
		zap.Int("src_w", w), zap.Int("src_h", h),
		zap.Int("dst_w", dw), zap.Int("dst_h", dh),
		zap.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), "image/jpeg", nil
}
