package codec

import (
	"context"
	"errors"
	"image"
	"image/draw"
	"image/jpeg"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jdeng/goheif"

	"github.com/lorrislin/Photo-Dir-Formatter/internal/config"
	"github.com/lorrislin/Photo-Dir-Formatter/internal/logging"
	"github.com/lorrislin/Photo-Dir-Formatter/internal/services"
)

// Converter turns a HEIC/HEIF source file into a JPEG at the destination path.
type Converter interface {
	Convert(ctx context.Context, srcPath, dstPath string, quality int) error
}

// Swappable decode primitives so tests can run without real HEIC fixtures.
var (
	decodeFunc      = func(r io.Reader) (image.Image, error) { return goheif.Decode(r) }
	extractExifFunc = func(r io.ReaderAt) ([]byte, error) { return goheif.ExtractExif(r) }
)

// SetDecodeForTests replaces the HEIF decode primitive. The returned function
// restores the original.
func SetDecodeForTests(fn func(io.Reader) (image.Image, error)) func() {
	prev := decodeFunc
	decodeFunc = fn
	return func() { decodeFunc = prev }
}

// SetExtractExifForTests replaces the EXIF extraction primitive. The returned
// function restores the original.
func SetExtractExifForTests(fn func(io.ReaderAt) ([]byte, error)) func() {
	prev := extractExifFunc
	extractExifFunc = fn
	return func() { extractExifFunc = prev }
}

// HEIF converts HEIC/HEIF images to JPEG.
type HEIF struct {
	logger *slog.Logger
}

// NewHEIF constructs the converter. A nil logger degrades to no-op logging.
func NewHEIF(logger *slog.Logger) *HEIF {
	return &HEIF{logger: logging.NewComponentLogger(logger, "codec")}
}

// Convert decodes srcPath, normalizes alpha/palette images to plain RGB, and
// encodes a JPEG at dstPath with the requested quality. The JPEG is written
// atomically (temp file + rename) so a failed encode never leaves a partial
// file. The source's EXIF block is carried into the JPEG when available, and
// the JPEG's mtime is set to the photo's capture time (falling back to the
// source file's mtime). An existing destination is never overwritten:
// os.ErrExist is returned and the destination left byte-for-byte intact.
func (c *HEIF) Convert(ctx context.Context, srcPath, dstPath string, quality int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if quality < config.MinQuality || quality > config.MaxQuality {
		return services.Wrap(services.ErrValidation, "converting", "check quality", "quality out of range", nil)
	}
	if _, err := os.Lstat(dstPath); err == nil {
		return os.ErrExist
	} else if !errors.Is(err, os.ErrNotExist) {
		return services.Wrap(services.ErrCodec, "converting", "inspect target", "", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return services.Wrap(services.ErrCodec, "converting", "open source", "", err)
	}
	defer src.Close()

	img, err := decodeFunc(src)
	if err != nil {
		return services.Wrap(services.ErrCodec, "converting", "decode", "", err)
	}
	img = normalizeRGB(img)

	exifData := c.extractExif(src)
	injectData := exifData
	if injectData != nil && app1PayloadSize(injectData) > maxExifPayload {
		c.logger.Debug("exif block exceeds jpeg segment limit, skipping injection",
			logging.Int("bytes", len(injectData)))
		injectData = nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(dstPath), "."+filepath.Base(dstPath)+".tmp-*")
	if err != nil {
		return services.Wrap(services.ErrCodec, "converting", "create temp file", "", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	var w io.Writer = tmp
	if injectData != nil {
		ew, err := newWriterExif(tmp, injectData)
		if err != nil {
			return services.Wrap(services.ErrCodec, "converting", "write exif segment", "", err)
		}
		w = ew
	}

	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return services.Wrap(services.ErrCodec, "converting", "encode jpeg", "", err)
	}
	if err := tmp.Sync(); err != nil {
		return services.Wrap(services.ErrCodec, "converting", "sync temp file", "", err)
	}
	if err := tmp.Close(); err != nil {
		return services.Wrap(services.ErrCodec, "converting", "close temp file", "", err)
	}

	if err := os.Rename(tmpName, dstPath); err != nil {
		return services.Wrap(services.ErrCodec, "converting", "finalize jpeg", "", err)
	}

	c.applyCaptureTime(srcPath, dstPath, exifData)
	return nil
}

// extractExif pulls the raw EXIF block out of the source. Failures are logged
// at debug level only; the conversion proceeds without metadata.
func (c *HEIF) extractExif(src *os.File) []byte {
	data, err := extractExifFunc(src)
	if err != nil {
		c.logger.Debug("exif extraction failed", logging.Error(err))
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	return data
}

// applyCaptureTime stamps the JPEG with the photo's capture time when the EXIF
// block carries one, otherwise with the source file's mtime.
func (c *HEIF) applyCaptureTime(srcPath, dstPath string, exifData []byte) {
	var stamp time.Time
	if t, ok := captureTime(exifData); ok {
		stamp = t
	} else if info, err := os.Stat(srcPath); err == nil {
		stamp = info.ModTime()
	} else {
		return
	}
	if err := os.Chtimes(dstPath, time.Now(), stamp); err != nil {
		c.logger.Debug("set jpeg mtime failed", logging.Error(err))
	}
}

// normalizeRGB flattens images JPEG cannot represent natively. Alpha-carrying
// and paletted images are redrawn onto a plain RGB canvas; everything else
// passes through untouched.
func normalizeRGB(img image.Image) image.Image {
	switch img.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.RGBA, *image.RGBA64, *image.Paletted:
		bounds := img.Bounds()
		flat := image.NewRGBA(bounds)
		draw.Draw(flat, bounds, img, bounds.Min, draw.Src)
		return flat
	default:
		return img
	}
}
