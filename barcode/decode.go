// Package barcode decodes barcode symbols from product images and resolves
// the encoded codes against an external catalog.
package barcode

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"

	"github.com/Balaji2327/Devsparks/internal/types"
)

// Decode runs the multi-format decoder over the rasterized pixel buffer and
// returns the encoded string, or "" when no symbol is found. An undecodable
// symbol is a soft outcome; malformed image bytes are the only hard error.
func Decode(imageBytes []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return "", types.ErrInvalidInput
	}

	bitmap, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", nil
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}

	reader := gozxing.NewMultiFormatReader()
	result, err := reader.Decode(bitmap, hints)
	if err != nil {
		return "", nil
	}
	return result.GetText(), nil
}
