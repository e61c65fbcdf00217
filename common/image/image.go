package image

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"regexp"

	_ "golang.org/x/image/webp"
)

// Regex to match an image data URL.
var dataURLPattern = regexp.MustCompile(`^data:image/([^;]+);base64,(.+)$`)

var ErrNotDataURL = errors.New("not an image data URL")

// ParseDataURL splits an image data URL into its MIME type and decoded bytes.
func ParseDataURL(dataURL string) (mimeType string, data []byte, err error) {
	matches := dataURLPattern.FindStringSubmatch(dataURL)
	if len(matches) != 3 {
		return "", nil, ErrNotDataURL
	}
	data, err = base64.StdEncoding.DecodeString(matches[2])
	if err != nil {
		return "", nil, err
	}
	return "image/" + matches[1], data, nil
}

// SizeFromDataURL decodes just enough of the payload to report dimensions.
// Supports png/jpeg/gif/webp.
func SizeFromDataURL(dataURL string) (width int, height int, err error) {
	_, data, err := ParseDataURL(dataURL)
	if err != nil {
		return 0, 0, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func IsDataURL(s string) bool {
	return dataURLPattern.MatchString(s)
}
