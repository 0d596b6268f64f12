// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// crypto.go — the encryption wrapper: AES-256-GCM keyed by a PBKDF2-derived
// passphrase key, applied to the final interchange text. The envelope is
// base64, so an encrypted payload can never parse as the plain grammar.

package gridio

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	kdfIterations = 210_000
	kdfSaltSize   = 16
	keySize       = 32
)

// Encryptor encrypts and decrypts byte payloads. The default implementation
// is AES256GCM; it is an interface so applications can substitute a KMS- or
// hardware-backed scheme.
type Encryptor interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// AES256GCM implements AES-256-GCM authenticated encryption.
type AES256GCM struct {
	block cipher.Block
}

// NewAES256GCM creates an AES-256-GCM encryptor from a 32-byte key.
func NewAES256GCM(key []byte) (*AES256GCM, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("gridio: encryption key must be exactly %d bytes (got %d)", keySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &AES256GCM{block: block}, nil
}

// Encrypt encrypts plaintext with a random nonce.
// Output: nonce (12 bytes) || ciphertext.
func (e *AES256GCM) Encrypt(plaintext []byte) ([]byte, error) {
	gcm, err := cipher.NewGCM(e.block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt decrypts ciphertext produced by Encrypt. An authentication
// failure surfaces as ErrAuthentication.
func (e *AES256GCM) Decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := cipher.NewGCM(e.block)
	if err != nil {
		return nil, err
	}
	nsize := gcm.NonceSize()
	if len(ciphertext) < nsize {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrAuthentication)
	}
	plain, err := gcm.Open(nil, ciphertext[:nsize], ciphertext[nsize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	return plain, nil
}

// DeriveKey derives a 32-byte AES key from a passphrase and salt using
// PBKDF2-SHA256.
func DeriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, kdfIterations, keySize, sha256.New)
}

// EncryptText wraps interchange text in an encrypted envelope:
// base64(salt || nonce || ciphertext) with a fresh random salt per call.
func EncryptText(text, passphrase string) (string, error) {
	salt := make([]byte, kdfSaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}
	enc, err := NewAES256GCM(DeriveKey(passphrase, salt))
	if err != nil {
		return "", err
	}
	ct, err := enc.Encrypt([]byte(text))
	if err != nil {
		return "", err
	}
	envelope := make([]byte, 0, len(salt)+len(ct))
	envelope = append(envelope, salt...)
	envelope = append(envelope, ct...)
	return base64.StdEncoding.EncodeToString(envelope), nil
}

// DecryptText reverses EncryptText. A payload that is not an encrypted
// envelope fails with ErrMalformedPayload; a well-formed envelope whose
// authentication tag does not verify fails with ErrAuthentication — never
// silently returning garbage.
func DecryptText(payload, passphrase string) (string, error) {
	envelope, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(envelope) <= kdfSaltSize {
		return "", fmt.Errorf("%w: not an encrypted envelope", ErrMalformedPayload)
	}
	salt, ct := envelope[:kdfSaltSize], envelope[kdfSaltSize:]
	enc, err := NewAES256GCM(DeriveKey(passphrase, salt))
	if err != nil {
		return "", err
	}
	plain, err := enc.Decrypt(ct)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
