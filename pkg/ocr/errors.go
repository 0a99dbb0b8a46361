package ocr

import "errors"

var (
	// ErrInvalidImage means the file could not be decoded into a bitmap.
	ErrInvalidImage = errors.New("no decodable image")
	// ErrEncoding means an image could not be serialized back to bytes.
	ErrEncoding = errors.New("image encoding failed")
)
