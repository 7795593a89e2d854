// Package sesskey issues and checks the per-session anti-forgery token that
// guards state changing requests (slide deletion, slider deletion).
package sesskey

import (
	"crypto/rand"
	"crypto/subtle"
	"math"
)

const (
	// Length of a token, about 59 bits of entropy.
	Length = 10

	// Param is the form and query parameter carrying the token.
	Param = "sesskey"

	maxByteValue = 255
	byteRange    = 256
)

var chars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

// New returns a fresh random token.
func New() string {
	return string(randomChars(Length, chars))
}

// Valid reports whether got matches the token of the session. An empty
// session token never validates.
func Valid(expected, got string) bool {
	if expected == "" || len(expected) != len(got) {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}

// randomChars draws length characters from set without modulo bias by
// rejecting bytes above the largest multiple of len(set).
func randomChars(length int, set []byte) []byte {
	clen := len(set)
	if clen < 2 || clen > byteRange {
		panic("sesskey: wrong charset length")
	}

	maxRb := maxByteValue - (byteRange % clen)
	bufLen := int(math.Ceil(float64(length) * (maxByteValue / float64(maxRb))))
	buf := make([]byte, bufLen)
	out := make([]byte, 0, length)

	for {
		if _, err := rand.Read(buf); err != nil {
			panic("sesskey: error reading random bytes: " + err.Error())
		}

		for _, rb := range buf {
			if int(rb) > maxRb {
				continue
			}

			out = append(out, set[int(rb)%clen])
			if len(out) == length {
				return out
			}
		}
	}
}
