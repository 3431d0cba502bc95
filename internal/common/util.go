package common

// WipeByteArray zeroes the buffer in place. Used to scrub passwords from
// memory once they have been consumed. Safe to call with nil.
func WipeByteArray(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
