package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRepository(t *testing.T) {
	cases := map[string]string{
		"owner/name":                        "owner/name",
		"https://github.com/owner/name":     "owner/name",
		"https://github.com/owner/name/":    "owner/name",
		"http://github.com/owner/name.git":  "owner/name",
		"github.com/owner/name":             "owner/name",
		"  https://github.com/owner/name  ": "owner/name",
		"owner/name/":                       "owner/name",
	}

	for input, expected := range cases {
		assert.Equal(t, expected, NormalizeRepository(input), "input %q", input)
	}
}
