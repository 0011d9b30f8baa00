package domain

// Zero clears every buffer passed to it. Callers defer it on root keys,
// shared secrets and decrypted plaintext once those are no longer needed.
func Zero(bufs ...[]byte) {
	for _, b := range bufs {
		clear(b)
	}
}
