package password

import "crypto/subtle"

// constantTimeEqual reports whether a and b are equal. Lengths are not secret and are
// checked first; contents are compared without early exit.
func constantTimeEqual(a, b []byte) bool {
	return constantTimeEqualInt(a, b) == 1
}

func constantTimeEqualInt(a, b []byte) int {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	return subtle.ConstantTimeCompare(a, b)
}
