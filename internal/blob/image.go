// Package blob decodes image payloads carried as data URLs.
package blob

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/MrSnakeDoc/webclipper/internal/domain"
)

var ErrNotDataURL = errors.New("not a data url")

// Decode splits a data URL into its media type and payload.
func Decode(dataURL string) (mediaType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURL
	}

	mediaType = header
	isBase64 := false
	if mt, found := strings.CutSuffix(header, ";base64"); found {
		mediaType = mt
		isBase64 = true
	}

	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("failed to decode base64 payload: %w", err)
		}
		return mediaType, data, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to unescape payload: %w", err)
	}
	return mediaType, []byte(unescaped), nil
}

// LoadImage reads the dimensions of the image in dataURL.
func LoadImage(dataURL string) (domain.ImageClip, error) {
	_, data, err := Decode(dataURL)
	if err != nil {
		return domain.ImageClip{}, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return domain.ImageClip{}, fmt.Errorf("failed to decode image: %w", err)
	}
	return domain.ImageClip{
		DataURL: dataURL,
		Width:   cfg.Width,
		Height:  cfg.Height,
	}, nil
}
