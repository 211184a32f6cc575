package codec

import (
	"bytes"
	"io"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

var exifHeader = []byte("Exif\x00\x00")

// maxExifPayload is the largest EXIF block a JPEG APP1 segment can carry; the
// 16-bit segment length covers its own two bytes.
const maxExifPayload = 0xffff - 2

// app1PayloadSize reports how many bytes the EXIF block occupies inside the
// APP1 segment once the missing "Exif\0\0" identifier is prefixed.
func app1PayloadSize(exifData []byte) int {
	if idx := tiffStart(exifData); idx >= 0 && !bytes.HasPrefix(exifData, exifHeader) {
		return len(exifHeader) + len(exifData) - idx
	}
	return len(exifData)
}

// captureTime parses the original capture timestamp out of a raw EXIF block.
func captureTime(payload []byte) (time.Time, bool) {
	idx := tiffStart(payload)
	if idx < 0 {
		return time.Time{}, false
	}
	x, err := exif.Decode(bytes.NewReader(payload[idx:]))
	if err != nil {
		return time.Time{}, false
	}
	t, err := x.DateTime()
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// tiffStart locates the TIFF header inside an EXIF payload, which may or may
// not carry the leading "Exif\0\0" identifier depending on the container.
func tiffStart(payload []byte) int {
	if len(payload) == 0 {
		return -1
	}
	if bytes.HasPrefix(payload, exifHeader) {
		return len(exifHeader)
	}
	if ii := bytes.Index(payload, []byte("II*\x00")); ii >= 0 {
		return ii
	}
	if mm := bytes.Index(payload, []byte("MM\x00*")); mm >= 0 {
		return mm
	}
	return -1
}

// writerSkipper drops the first bytesToSkip bytes written through it. The JPEG
// encoder emits its own SOI marker, which we have already written ahead of the
// injected APP1 segment.
type writerSkipper struct {
	w           io.Writer
	bytesToSkip int
}

func (w *writerSkipper) Write(data []byte) (int, error) {
	if w.bytesToSkip <= 0 {
		return w.w.Write(data)
	}

	if dataLen := len(data); dataLen < w.bytesToSkip {
		w.bytesToSkip -= dataLen
		return dataLen, nil
	}

	if n, err := w.w.Write(data[w.bytesToSkip:]); err != nil {
		return n, err
	}
	skipped := w.bytesToSkip
	w.bytesToSkip = 0
	return len(data[skipped:]) + skipped, nil
}

// newWriterExif wraps w so the encoded JPEG carries the given EXIF block in an
// APP1 segment directly after the SOI marker.
func newWriterExif(w io.Writer, exifData []byte) (io.Writer, error) {
	if idx := tiffStart(exifData); idx >= 0 && !bytes.HasPrefix(exifData, exifHeader) {
		prefixed := make([]byte, 0, len(exifHeader)+len(exifData)-idx)
		prefixed = append(prefixed, exifHeader...)
		prefixed = append(prefixed, exifData[idx:]...)
		exifData = prefixed
	}

	writer := &writerSkipper{w, 2}
	soi := []byte{0xff, 0xd8}
	if _, err := w.Write(soi); err != nil {
		return nil, err
	}

	if exifData != nil {
		const app1Marker = 0xe1
		markerLen := 2 + len(exifData)
		marker := []byte{0xff, app1Marker, uint8(markerLen >> 8), uint8(markerLen & 0xff)}
		if _, err := w.Write(marker); err != nil {
			return nil, err
		}
		if _, err := w.Write(exifData); err != nil {
			return nil, err
		}
	}

	return writer, nil
}
