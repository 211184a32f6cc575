// Package codec adapts the HEIC/HEIF image codec for the organizer.
//
// Decoding is delegated to github.com/jdeng/goheif; encoding uses the standard
// library JPEG encoder. The converter normalizes alpha and paletted images to
// plain RGB, writes the JPEG atomically, refuses to overwrite an existing
// target, and carries the source's EXIF block (and capture time) over to the
// output.
package codec
