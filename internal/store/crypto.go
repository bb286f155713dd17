package store

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keySize          = 32 // AES-256
	saltSize         = 16
	pbkdf2Iterations = 100000

	saltKey = "_salt"
)

// ErrDecrypt is returned when a stored value cannot be opened with the configured passphrase
var ErrDecrypt = errors.New("store: decryption failed: invalid passphrase or corrupted data")

// Encrypted seals every value with AES-256-GCM before handing it to the inner store.
// The key is derived from a passphrase with PBKDF2; the salt lives unencrypted under "_salt".
type Encrypted struct {
	inner Store
	aead  cipher.AEAD
}

// NewEncrypted wraps inner, creating and persisting a salt on first use
func NewEncrypted(ctx context.Context, inner Store, passphrase string) (*Encrypted, error) {
	if passphrase == "" {
		return nil, errors.New("store: empty encryption passphrase")
	}

	salt, err := inner.Get(ctx, saltKey)
	if errors.Is(err, ErrNotFound) {
		salt, err = generateSalt()
		if err != nil {
			return nil, err
		}
		if err := inner.Set(ctx, saltKey, salt); err != nil {
			return nil, fmt.Errorf("failed to save salt: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read salt: %w", err)
	}

	key := pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Encrypted{inner: inner, aead: gcm}, nil
}

func generateSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

func (e *Encrypted) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := e.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	n := e.aead.NonceSize()
	if len(data) < n {
		return nil, ErrDecrypt
	}

	// Key is bound as additional data so values cannot be swapped between slots
	plaintext, err := e.aead.Open(nil, data[:n], data[n:], []byte(key))
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

func (e *Encrypted) Set(ctx context.Context, key string, value []byte) error {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return err
	}

	// Seal appends ciphertext to the nonce
	sealed := e.aead.Seal(nonce, nonce, value, []byte(key))
	return e.inner.Set(ctx, key, sealed)
}

func (e *Encrypted) Delete(ctx context.Context, key string) error {
	return e.inner.Delete(ctx, key)
}

func (e *Encrypted) Close() error {
	return e.inner.Close()
}
