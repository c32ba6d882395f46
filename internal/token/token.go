// Package token issues the opaque identifiers that make invitation URLs
// unguessable, and composes the recipient-facing links around them.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

const tokenBytes = 24

// Issue returns a URL-safe token with 192 bits of entropy. Uniqueness is
// enforced by the store's index; the entropy makes collisions and guessing
// negligible on their own.
func Issue() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// BuildLink composes the canonical invitation URL for a token. Base URLs
// without a protocol get http prefixed, mirroring how operators usually
// configure a bare host name.
func BuildLink(baseURL, route, tok string) string {
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	route = strings.Trim(route, "/")

	return fmt.Sprintf("%s/%s/%s", baseURL, route, tok)
}
