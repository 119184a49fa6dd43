package ocr

import (
	"bytes"
	"fmt"
	"image"

	"github.com/rwcarlsen/goexif/exif"
	"gocv.io/x/gocv"

	"github.com/Balaji2327/Devsparks/internal/types"
)

// minRecognitionDim is the smallest long-edge size local recognition copes
// with; smaller inputs are upscaled.
const minRecognitionDim = 1000

// Preprocess normalizes an arbitrary input image into the canonical form for
// recognition: the image is rotated upright when its metadata records a
// camera orientation, converted to grayscale, upscaled if small, contrast
// equalized and binarized with an adaptive threshold. Output is PNG-encoded.
func Preprocess(imageBytes []byte) ([]byte, error) {
	img, err := gocv.IMDecode(imageBytes, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot decode image: %v", types.ErrInvalidInput, err)
	}
	defer img.Close()
	if img.Empty() {
		return nil, fmt.Errorf("%w: empty image", types.ErrInvalidInput)
	}

	oriented := gocv.NewMat()
	defer oriented.Close()
	if rotation, ok := orientationRotation(exifOrientation(imageBytes)); ok {
		gocv.Rotate(img, &oriented, rotation)
	} else {
		img.CopyTo(&oriented)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(oriented, &gray, gocv.ColorBGRToGray)

	scaled := gocv.NewMat()
	defer scaled.Close()
	if longEdge := maxInt(gray.Cols(), gray.Rows()); longEdge < minRecognitionDim {
		factor := float64(minRecognitionDim) / float64(longEdge)
		gocv.Resize(gray, &scaled, image.Point{}, factor, factor, gocv.InterpolationCubic)
	} else {
		gray.CopyTo(&scaled)
	}

	equalized := gocv.NewMat()
	defer equalized.Close()
	clahe := gocv.NewCLAHEWithParams(2.0, image.Pt(8, 8))
	defer clahe.Close()
	clahe.Apply(scaled, &equalized)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.AdaptiveThreshold(equalized, &binary, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, 31, 11)

	buf, err := gocv.IMEncode(gocv.PNGFileExt, binary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preprocessed image: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// exifOrientation reads the EXIF orientation tag, or 0 when the image
// carries none.
func exifOrientation(imageBytes []byte) int {
	meta, err := exif.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return 0
	}
	tag, err := meta.Get(exif.Orientation)
	if err != nil {
		return 0
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 0
	}
	return orientation
}

// orientationRotation maps an EXIF orientation value to the rotation that
// restores the capture to upright. Mirrored orientations (2, 4, 5, 7) are
// treated as their unmirrored counterparts; recognition tolerates a mirror
// far better than sideways text.
func orientationRotation(orientation int) (gocv.RotateFlag, bool) {
	switch orientation {
	case 3, 4:
		return gocv.Rotate180Clockwise, true
	case 5, 6:
		return gocv.Rotate90Clockwise, true
	case 7, 8:
		return gocv.Rotate90CounterClockwise, true
	}
	return 0, false
}
