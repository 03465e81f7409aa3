package photo

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"
)

// qualityLadder is the deterministic jpeg quality chain tried in order.
var qualityLadder = []int{85, 75, 65, 55, 45, 35, 30}

const downscaleLongEdge = 1600

var errCannotCompress = errors.New("photo: cannot compress payload")

// compressJPEG re-encodes an image toward targetBytes. Strategy chain:
// quality ladder at original dimensions, then the same ladder after a
// downscale of the long edge. When no attempt reaches the target the
// smallest successful encoding wins; an undecodable payload errors and
// the caller keeps the original bytes.
func compressJPEG(data []byte, targetBytes int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errCannotCompress
	}

	best := encodeLadder(img, targetBytes)
	if best != nil && len(best) <= targetBytes {
		return best, nil
	}

	if scaled := downscale(img, downscaleLongEdge); scaled != nil {
		if candidate := encodeLadder(scaled, targetBytes); candidate != nil {
			if best == nil || len(candidate) < len(best) {
				best = candidate
			}
		}
	}

	if best == nil {
		return nil, errCannotCompress
	}
	if len(best) >= len(data) {
		// Recompression gained nothing; the original is already tighter.
		return data, nil
	}
	return best, nil
}

// encodeLadder walks the quality ladder and returns the first encoding at
// or under target, otherwise the smallest one produced.
func encodeLadder(img image.Image, targetBytes int) []byte {
	var best []byte
	for _, quality := range qualityLadder {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			continue
		}
		encoded := buf.Bytes()
		if len(encoded) <= targetBytes {
			return encoded
		}
		if best == nil || len(encoded) < len(best) {
			best = encoded
		}
	}
	return best
}

// downscale shrinks the image so its long edge is at most longEdge, using
// nearest-neighbour sampling. Returns nil when no shrink is needed.
func downscale(img image.Image, longEdge int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	long := width
	if height > long {
		long = height
	}
	if long <= longEdge {
		return nil
	}

	ratio := float64(longEdge) / float64(long)
	newW := int(float64(width) * ratio)
	newH := int(float64(height) * ratio)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, newW, newH))
	for y := 0; y < newH; y++ {
		srcY := bounds.Min.Y + y*height/newH
		for x := 0; x < newW; x++ {
			srcX := bounds.Min.X + x*width/newW
			out.Set(x, y, img.At(srcX, srcY))
		}
	}
	return out
}
