package proctoring

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
)

// ReferenceDetector is a deterministic, model-free stand-in for the real
// face-mesh/object-detection services named in spec §6 as configuration
// "model handles" (connection strings, not vendored binaries — see
// DESIGN.md). It derives a face/object signal from simple pixel statistics
// so the state machine and risk scoring are exercisable and testable without
// a real inference backend; a production deployment swaps this for an
// implementation that calls out to that external service.
type ReferenceDetector struct{}

func NewReferenceDetector() *ReferenceDetector {
	return &ReferenceDetector{}
}

// DetectFaces decodes the frame and reports a single face whenever the frame
// isn't overwhelmingly dark (a crude "is anyone even there" proxy). The
// face's iris and nose offsets are both set to the frame's luminance centre
// of mass relative to the frame centre.
// A frame that decodes to near-black is treated as face-absent.
func (d *ReferenceDetector) DetectFaces(ctx context.Context, frame []byte) ([]Face, error) {
	img, err := decodeFrame(frame)
	if err != nil {
		return nil, err
	}

	brightness := averageBrightness(img)
	if brightness < 20 {
		return nil, nil
	}

	bounds := img.Bounds()
	cx, cy := centerOfMass(img)
	offsetX := normalizedOffset(cx, bounds.Dx())
	offsetY := normalizedOffset(cy, bounds.Dy())

	return []Face{{
		IrisOffsetX: offsetX,
		IrisOffsetY: offsetY,
		NoseOffsetX: offsetX,
		NoseOffsetY: offsetY,
	}}, nil
}

// DetectObjects never fires in the reference implementation: recognising
// watch-list objects (phone, laptop, book, a second person) from pixels
// alone has no honest deterministic proxy, so the reference detector
// reports nothing rather than fabricate detections. Real object-watch-list
// behaviour requires the external model-backed implementation.
func (d *ReferenceDetector) DetectObjects(ctx context.Context, frame []byte) ([]ObjectDetection, error) {
	if _, err := decodeFrame(frame); err != nil {
		return nil, err
	}
	return nil, nil
}

// ReferenceMovementEstimator scores movement as the mean absolute difference
// in per-pixel luminance between two frames, normalised to [0,1].
type ReferenceMovementEstimator struct{}

func NewReferenceMovementEstimator() *ReferenceMovementEstimator {
	return &ReferenceMovementEstimator{}
}

func (e *ReferenceMovementEstimator) EstimateMovement(ctx context.Context, frame, prev []byte) (float64, error) {
	img, err := decodeFrame(frame)
	if err != nil {
		return 0, err
	}
	if prev == nil {
		return 0, nil
	}
	prevImg, err := decodeFrame(prev)
	if err != nil {
		return 0, nil // a malformed previous frame should not fail the current analysis
	}

	return luminanceDelta(img, prevImg), nil
}

func decodeFrame(frame []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return img, nil
}

func averageBrightness(img image.Image) float64 {
	bounds := img.Bounds()
	var total uint64
	count := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y += sampleStride(bounds.Dy()) {
		for x := bounds.Min.X; x < bounds.Max.X; x += sampleStride(bounds.Dx()) {
			total += uint64(luminance(img.At(x, y)))
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

func centerOfMass(img image.Image) (int, int) {
	bounds := img.Bounds()
	var sumX, sumY, weight int64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += sampleStride(bounds.Dy()) {
		for x := bounds.Min.X; x < bounds.Max.X; x += sampleStride(bounds.Dx()) {
			l := int64(luminance(img.At(x, y)))
			sumX += int64(x) * l
			sumY += int64(y) * l
			weight += l
		}
	}
	if weight == 0 {
		return bounds.Dx() / 2, bounds.Dy() / 2
	}
	return int(sumX / weight), int(sumY / weight)
}

// normalizedOffset maps a coordinate to [-1,1] relative to the midpoint of
// [0, dim).
func normalizedOffset(coord, dim int) float64 {
	if dim == 0 {
		return 0
	}
	mid := float64(dim) / 2
	return (float64(coord) - mid) / mid
}

func sampleStride(dim int) int {
	stride := dim / 32
	if stride < 1 {
		return 1
	}
	return stride
}

func luminance(c color.Color) uint8 {
	r, g, b, _ := c.RGBA()
	return uint8((19595*r + 38470*g + 7471*b) >> 24)
}

func luminanceDelta(a, b image.Image) float64 {
	boundsA := a.Bounds()
	boundsB := b.Bounds()
	w := minInt(boundsA.Dx(), boundsB.Dx())
	h := minInt(boundsA.Dy(), boundsB.Dy())
	if w == 0 || h == 0 {
		return 0
	}

	stride := sampleStride(minInt(w, h))
	var totalDiff uint64
	count := 0
	for y := 0; y < h; y += stride {
		for x := 0; x < w; x += stride {
			la := int(luminance(a.At(boundsA.Min.X+x, boundsA.Min.Y+y)))
			lb := int(luminance(b.At(boundsB.Min.X+x, boundsB.Min.Y+y)))
			diff := la - lb
			if diff < 0 {
				diff = -diff
			}
			totalDiff += uint64(diff)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return (float64(totalDiff) / float64(count)) / 255.0
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
