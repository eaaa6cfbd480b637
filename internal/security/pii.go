package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// keyHexLen is the required length of the hex-encoded AES-256 key.
const keyHexLen = 64

// ErrInvalidCiphertext is returned when stored ciphertext is malformed
// or fails authentication. Callers get an explicit failure indicator,
// never silently corrupted plaintext.
var ErrInvalidCiphertext = errors.New("invalid ciphertext")

// Codec encrypts donor personal fields for at-rest storage using
// AES-256-GCM. Each value is sealed with a fresh random nonce encoded
// alongside the ciphertext, so every stored value decrypts on its own.
type Codec struct {
	key []byte
}

// NewCodec builds a codec from a 64-hex-character key. Startup must fail
// loudly on a missing or malformed key rather than run unencrypted.
func NewCodec(hexKey string) (*Codec, error) {
	if len(hexKey) != keyHexLen {
		return nil, fmt.Errorf("encryption key must be %d hex characters, got %d", keyHexLen, len(hexKey))
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid hex: %w", err)
	}
	return &Codec{key: key}, nil
}

// Encrypt seals plaintext into "nonce:ciphertext" (both hex). Empty
// input encrypts to an empty result; this is a documented no-op so
// optional donor fields round-trip cleanly.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	gcm, err := c.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Wrong segment count, bad encoding, a bad
// nonce size or an authentication failure all yield ErrInvalidCiphertext.
func (c *Codec) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	parts := strings.Split(ciphertext, ":")
	if len(parts) != 2 {
		return "", ErrInvalidCiphertext
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	sealed, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	gcm, err := c.aead()
	if err != nil {
		return "", err
	}
	if len(nonce) != gcm.NonceSize() {
		return "", ErrInvalidCiphertext
	}

	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plain), nil
}

func (c *Codec) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}
