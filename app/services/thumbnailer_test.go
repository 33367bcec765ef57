package services

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleToJPEG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 640, 360))
	for x := 0; x < 640; x++ {
		src.Set(x, 10, color.RGBA{R: 255, A: 255})
	}

	data, err := ScaleToJPEG(src, ThumbnailWidth)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 320, decoded.Bounds().Dx())
	assert.Equal(t, 180, decoded.Bounds().Dy())
}

func TestScaleToJPEGDoesNotUpscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	data, err := ScaleToJPEG(src, ThumbnailWidth)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 100, decoded.Bounds().Dx())
}

func TestScaleToJPEGRejectsEmpty(t *testing.T) {
	_, err := ScaleToJPEG(image.NewRGBA(image.Rect(0, 0, 0, 0)), ThumbnailWidth)
	assert.Error(t, err)
}

func TestNewFFmpegThumbnailerDisabled(t *testing.T) {
	assert.Nil(t, NewFFmpegThumbnailer(""))
}
