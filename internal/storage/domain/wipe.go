package domain

import (
	"context"
	"crypto/rand"
)

// WipePass identifies one overwrite pass of a destructive delete.
type WipePass int

const (
	// WipeZeros fills the target with 0x00.
	WipeZeros WipePass = iota
	// WipeOnes fills the target with 0xFF.
	WipeOnes
	// WipeRandom fills the target with random bytes.
	WipeRandom
)

// WipePasses is the fixed overwrite order used for secure deletion of stored
// values and key material.
var WipePasses = []WipePass{WipeZeros, WipeOnes, WipeRandom}

// String returns the pass name.
func (p WipePass) String() string {
	switch p {
	case WipeZeros:
		return "zeros"
	case WipeOnes:
		return "ones"
	case WipeRandom:
		return "random"
	default:
		return "unknown"
	}
}

// Fill overwrites b in place according to the pass.
func (p WipePass) Fill(b []byte) {
	switch p {
	case WipeZeros:
		for i := range b {
			b[i] = 0x00
		}
	case WipeOnes:
		for i := range b {
			b[i] = 0xFF
		}
	case WipeRandom:
		_, _ = rand.Read(b)
	}
}

// Pattern returns a new buffer of size n filled for the pass.
func (p WipePass) Pattern(n int) []byte {
	b := make([]byte, n)
	p.Fill(b)
	return b
}

// Shred overwrites key on store with every wipe pass and then deletes it.
// Stores implementing Shredder overwrite in place; the rest receive each pass
// pattern through Write. A missing key counts as shredded.
func Shred(ctx context.Context, store Store, key string) bool {
	if shredder, ok := store.(Shredder); ok {
		return shredder.Shred(ctx, key, WipePasses)
	}
	return ShredByWrite(ctx, store, key, WipePasses)
}

// ShredByWrite writes each pass pattern over key through Write and then
// deletes it. Stores that replace values on write only overwrite the
// replacement, not the bytes it superseded.
func ShredByWrite(ctx context.Context, store Store, key string, passes []WipePass) bool {
	data, outcome := store.Read(ctx, key)
	switch outcome {
	case OutcomeUnavailable:
		return false
	case OutcomeAbsent:
		return store.Delete(ctx, key)
	}

	size := len(data)
	WipeZeros.Fill(data)
	if size == 0 {
		size = 1
	}

	for _, pass := range passes {
		if !store.Write(ctx, key, pass.Pattern(size)) {
			return false
		}
	}
	return store.Delete(ctx, key)
}
