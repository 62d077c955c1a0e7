package link

import (
	"encoding/base64"
	"regexp"
	"strings"
)

// minBase64Length is the shortest cleaned value the base64 heuristic will try.
// Short tokens such as "en" or "1" decode to noise that can accidentally
// parse as a relative URL.
const minBase64Length = 12

// nonBase64 matches every character outside the standard base64 alphabet.
var nonBase64 = regexp.MustCompile(`[^0-9a-zA-Z+/=]`)

// decodeBase64 applies the redirect-parameter heuristic: drop characters
// outside the alphabet, require minBase64Length characters, pad to a
// multiple of four, and decode. It returns "" on any failure.
//
// Design decision: We use encoding/base64 from the standard library. The
// heuristic is a few lines around a strict decoder, and no library in the
// ecosystem offers the "strip, length-gate, pad" behaviour directly.
func decodeBase64(value string) (string, bool) {
	cleaned := nonBase64.ReplaceAllString(value, "")
	if len(cleaned) < minBase64Length {
		return "", false
	}
	if rem := len(cleaned) % 4; rem != 0 {
		cleaned += strings.Repeat("=", 4-rem)
	}

	decoded, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil || len(decoded) == 0 {
		return "", false
	}
	return string(decoded), true
}
