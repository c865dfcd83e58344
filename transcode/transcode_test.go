package transcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	original := "package main\n\nfunc main() {}\n"
	assert.Equal(t, original, Decode(Encode(original)))
}

func TestDecode_LineWrappedContent(t *testing.T) {
	// The code host wraps base64 content in newlines.
	wrapped := "cGFja2FnZSBt\nYWluCg==\n"
	assert.Equal(t, "package main\n", Decode(wrapped))
}

func TestDecode_MalformedInputYieldsEmptyString(t *testing.T) {
	assert.Equal(t, "", Decode("!!! not base64 !!!"))
	assert.Equal(t, "", Decode("abc"))
}

func TestDecode_EmptyInput(t *testing.T) {
	assert.Equal(t, "", Decode(""))
}
