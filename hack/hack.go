package hack

import (
	"unsafe"
)

// String converts slice to a string without copy.
// Use at your own risk: the string shares the byte slice's memory,
// so the slice must not be modified afterwards.
func String(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// Slice converts a string to a byte slice without copy.
// The returned bytes must not be modified.
func Slice(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
