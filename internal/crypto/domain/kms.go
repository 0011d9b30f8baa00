package domain

import (
	"context"
)

// KMSKeeper wraps and unwraps persisted root key records. It is satisfied by
// *secrets.Keeper from gocloud.dev/secrets.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
