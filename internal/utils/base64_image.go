package utils

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidImagePayload = errors.New("invalid base64 image payload")

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// DecodeBase64Image decodes a "data:image/...;base64,..." payload into
// raw bytes plus the content type and file extension. A bare base64
// string without a data URI prefix is treated as PNG.
func DecodeBase64Image(payload string) ([]byte, string, string, error) {
	contentType := "image/png"
	encoded := payload

	if strings.HasPrefix(payload, "data:") {
		parts := strings.SplitN(payload, ";base64,", 2)
		if len(parts) != 2 {
			return nil, "", "", ErrInvalidImagePayload
		}
		contentType = strings.TrimPrefix(parts[0], "data:")
		encoded = parts[1]
	}

	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, "", "", ErrInvalidImagePayload
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", "", ErrInvalidImagePayload
	}
	if len(data) == 0 {
		return nil, "", "", ErrInvalidImagePayload
	}

	return data, contentType, ext, nil
}
