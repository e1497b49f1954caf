package imagepkg

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeckQRPNG(t *testing.T) {
	b, err := DeckQRPNG("TDpMLTE7TTpDLTEqNDtEOjEw", 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, DefaultQRSize, img.Bounds().Dx())

	b, err = GenerateQRPNG("deck:x", 10)
	require.NoError(t, err)
	img, err = png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, MinQRSize, img.Bounds().Dx())

	_, err = DeckQRPNG("", 100)
	assert.ErrorIs(t, err, ErrEmptyText)
}
