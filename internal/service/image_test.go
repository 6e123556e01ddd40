package service

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2)), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestValidateImage(t *testing.T) {
	testCases := []struct {
		name     string
		data     []byte
		wantMime string
		wantErr  bool
	}{
		{name: "valid png", data: nil, wantMime: "image/png"},
		{name: "valid jpeg", data: nil, wantMime: "image/jpeg"},
		{name: "empty", data: []byte{}, wantErr: true},
		{name: "plain text", data: []byte("hello, not an image"), wantErr: true},
		{name: "html masquerading", data: []byte("<html><body>404</body></html>"), wantErr: true},
	}
	testCases[0].data = pngBytes(t)
	testCases[1].data = jpegBytes(t)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mime, err := ValidateImage(tc.data)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected rejection")
				}
				if CategoryOf(err) != CategoryInvalidImage {
					t.Errorf("category = %s, want %s", CategoryOf(err), CategoryInvalidImage)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mime != tc.wantMime {
				t.Errorf("mime = %s, want %s", mime, tc.wantMime)
			}
		})
	}
}

func TestValidateImageTruncated(t *testing.T) {
	// PNG header with the rest cut off: right content type, undecodable.
	data := pngBytes(t)[:20]
	if _, err := ValidateImage(data); CategoryOf(err) != CategoryInvalidImage {
		t.Errorf("category = %s, want %s", CategoryOf(err), CategoryInvalidImage)
	}
}

func TestEncodeDataURL(t *testing.T) {
	got := EncodeDataURL("image/png", []byte{1, 2, 3})
	if !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Errorf("unexpected data URL prefix: %s", got)
	}
}
