package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"net/url"
	"strings"

	// Decoders for formats accepted by the logo upload.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	LogoFormatPNG  = "png"
	LogoFormatJPEG = "jpg"

	maxLogoPixels = 4096 * 4096
)

var (
	ErrLogoNotDataURL = errors.New("logo_not_data_url")
	ErrLogoEncoding   = errors.New("logo_encoding")
	ErrLogoDecode     = errors.New("logo_decode")
	ErrLogoTooLarge   = errors.New("logo_dimensions_too_large")
)

// Logo is an image ready for embedding. Format is png or jpg.
type Logo struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// DecodeLogo turns a base64 data URL into an embeddable image. JPEG bytes
// are kept as-is; every other raster format is re-encoded as 8-bit PNG.
func DecodeLogo(src string) (*Logo, error) {
	raw, err := decodeDataURL(src)
	if err != nil {
		return nil, err
	}

	cfg, kind, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLogoDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxLogoPixels {
		return nil, ErrLogoTooLarge
	}

	if kind == "jpeg" {
		return &Logo{Data: raw, Format: LogoFormatJPEG, Width: cfg.Width, Height: cfg.Height}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLogoDecode, err)
	}
	rgba := image.NewNRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLogoDecode, err)
	}
	return &Logo{Data: buf.Bytes(), Format: LogoFormatPNG, Width: cfg.Width, Height: cfg.Height}, nil
}

func decodeDataURL(src string) ([]byte, error) {
	src = strings.TrimSpace(src)
	if !strings.HasPrefix(src, "data:") {
		return nil, ErrLogoNotDataURL
	}
	meta, payload, ok := strings.Cut(src[len("data:"):], ",")
	if !ok {
		return nil, ErrLogoEncoding
	}
	if strings.HasSuffix(meta, ";base64") {
		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLogoEncoding, err)
		}
		return raw, nil
	}
	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLogoEncoding, err)
	}
	return []byte(decoded), nil
}
