package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func testJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func testPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestEncodePhotoJPEG(t *testing.T) {
	payload, err := EncodePhoto(bytes.NewReader(testJPEG(100, 100)))
	if err != nil {
		t.Fatalf("EncodePhoto: %v", err)
	}
	if !strings.HasPrefix(payload, "data:image/jpeg;base64,") {
		t.Errorf("unexpected payload prefix: %.40s", payload)
	}
}

func TestEncodePhotoPNGBecomesJPEG(t *testing.T) {
	payload, err := EncodePhoto(bytes.NewReader(testPNG(50, 50)))
	if err != nil {
		t.Fatalf("EncodePhoto: %v", err)
	}

	data, err := DecodePhoto(payload)
	if err != nil {
		t.Fatalf("DecodePhoto: %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("expected JPEG output, decode failed: %v", err)
	}
}

func TestEncodePhotoDownscales(t *testing.T) {
	payload, err := EncodePhoto(bytes.NewReader(testJPEG(MaxDimension*2, MaxDimension)))
	if err != nil {
		t.Fatalf("EncodePhoto: %v", err)
	}

	data, _ := DecodePhoto(payload)
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if img.Bounds().Dx() != MaxDimension {
		t.Errorf("expected width %d, got %d", MaxDimension, img.Bounds().Dx())
	}
	if img.Bounds().Dy() != MaxDimension/2 {
		t.Errorf("expected aspect ratio preserved, got height %d", img.Bounds().Dy())
	}
}

func TestEncodePhotoRejectsNonImages(t *testing.T) {
	if _, err := EncodePhoto(strings.NewReader("plain text")); err == nil {
		t.Error("expected error for non-image input")
	}
}

func TestDecodePhotoRejectsForeignPayloads(t *testing.T) {
	if _, err := DecodePhoto("not-a-data-url"); err == nil {
		t.Error("expected error for foreign payload")
	}
}
