package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	_ "golang.org/x/image/webp"
)

// MaxImageBytes caps uploads and downloaded import images at 10 MB.
const MaxImageBytes = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidateImage checks that raw bytes are a decodable image of an accepted
// format and within the size cap.
// Parameters:
//   - data: raw image bytes.
//
// Returns:
//   - string: detected MIME type.
//   - error: *PipelineError with CategoryInvalidImage on rejection.
func ValidateImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", newPipelineError(CategoryInvalidImage,
			"Empty image", "The uploaded file contains no data.", nil)
	}
	if len(data) > MaxImageBytes {
		return "", newPipelineError(CategoryInvalidImage,
			"Image too large",
			fmt.Sprintf("The image is %d bytes; the maximum is %d.", len(data), MaxImageBytes), nil)
	}

	mimeType := http.DetectContentType(data)
	if !allowedImageTypes[mimeType] {
		return "", newPipelineError(CategoryInvalidImage,
			"Unsupported image type",
			fmt.Sprintf("Detected %s; accepted types are JPEG, PNG, GIF, and WebP.", mimeType), nil)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", newPipelineError(CategoryInvalidImage,
			"Corrupt image",
			"The file has an image content type but could not be decoded.", err)
	}

	return mimeType, nil
}

// EncodeDataURL renders validated image bytes as a data URL for the LLM API.
func EncodeDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
