package imagepkg

import (
	"errors"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	DefaultQRSize = 400
	MinQRSize     = 64
	MaxQRSize     = 2048
)

// QRPrefix is prepended to deck codes so scanners can tell them apart.
const QRPrefix = "deck:"

var ErrEmptyText = errors.New("nothing to encode")

// GenerateQRPNG returns PNG bytes of a QR code for the given text. size is
// clamped to [MinQRSize, MaxQRSize]; zero means DefaultQRSize.
func GenerateQRPNG(text string, size int) ([]byte, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	switch {
	case size == 0:
		size = DefaultQRSize
	case size < MinQRSize:
		size = MinQRSize
	case size > MaxQRSize:
		size = MaxQRSize
	}
	return qrcode.Encode(text, qrcode.Medium, size)
}

// DeckQRPNG renders a deck code as a QR image.
func DeckQRPNG(code string, size int) ([]byte, error) {
	if code == "" {
		return nil, ErrEmptyText
	}
	return GenerateQRPNG(QRPrefix+code, size)
}
