package models

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrNotDataURL is returned when an image reference is not an inline
// base64 data URL.
var ErrNotDataURL = errors.New("invalid image data URL")

// DecodeDataURL splits a "data:<mime>;base64,<payload>" URL into its media
// type and decoded bytes.
func DecodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || payload == "" {
		return "", nil, ErrNotDataURL
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok || mime == "" {
		return "", nil, ErrNotDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, ErrNotDataURL
	}
	return mime, data, nil
}

// EncodeDataURL builds an inline base64 data URL.
func EncodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
