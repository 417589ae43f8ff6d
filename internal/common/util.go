package common

import "strings"

// WipeByteArray overwrites b with zeros. Used for password buffers read
// from the terminal. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Normalize trims surrounding whitespace from a username or password.
// No case folding is applied: "Admin" and "admin" are distinct users.
func Normalize(s string) string {
	return strings.TrimSpace(s)
}
