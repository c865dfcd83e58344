package transcode

import (
	"encoding/base64"
	"strings"
)

// Encode returns the base64 encoding of s for transport to the code host.
func Encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// Decode reverses Encode. The code host wraps encoded content in newlines, so
// all whitespace is stripped before decoding. Malformed input yields an empty
// string rather than an error; callers log the degradation where it matters.
func Decode(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t', ' ':
			return -1
		}
		return r
	}, s)

	decoded, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return ""
	}
	return string(decoded)
}
