package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	xdraw "golang.org/x/image/draw"
)

// ThumbnailWidth is the width of generated thumbnails; height keeps the aspect ratio
const ThumbnailWidth = 320

// Thumbnailer extracts a poster frame from a video file
type Thumbnailer interface {
	Thumbnail(ctx context.Context, videoPath string) ([]byte, error)
}

// FFmpegThumbnailer shells out to ffmpeg for the first frame and scales it with x/image
type FFmpegThumbnailer struct {
	binary  string
	timeout time.Duration
}

// NewFFmpegThumbnailer returns nil when binary is empty, which disables thumbnails
func NewFFmpegThumbnailer(binary string) Thumbnailer {
	if binary == "" {
		return nil
	}
	return &FFmpegThumbnailer{binary: binary, timeout: 30 * time.Second}
}

func (f *FFmpegThumbnailer) Thumbnail(ctx context.Context, videoPath string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	dir, err := os.MkdirTemp("", "thumb-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	framePath := filepath.Join(dir, "frame.png")
	cmd := exec.CommandContext(ctx, f.binary, "-loglevel", "error", "-y", "-i", videoPath, "-frames:v", "1", framePath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, bytes.TrimSpace(out))
	}

	frame, err := os.Open(framePath)
	if err != nil {
		return nil, err
	}
	defer frame.Close()

	src, _, err := image.Decode(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return ScaleToJPEG(src, ThumbnailWidth)
}

// ScaleToJPEG resizes src to width with Catmull-Rom and encodes it as JPEG
func ScaleToJPEG(src image.Image, width int) ([]byte, error) {
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("empty image")
	}
	if width <= 0 || width > b.Dx() {
		width = b.Dx()
	}
	height := b.Dy() * width / b.Dx()
	if height == 0 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
