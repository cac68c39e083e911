package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

var keySalt = []byte("smtp-to-kindle/password")

// deriveKey stretches the sender address into an AES-256 key
func deriveKey(sender string) []byte {
	return argon2.IDKey([]byte(sender), keySalt, 1, 64*1024, 4, 32)
}

func newGCM(sender string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(sender))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals the password with a key derived from the sender address.
// An empty password stays empty.
func Encrypt(sender, password string) (string, error) {
	if password == "" {
		return "", nil
	}
	gcm, err := newGCM(sender)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(password), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt
func Decrypt(sender, encrypted string) (string, error) {
	if encrypted == "" {
		return "", nil
	}
	data, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("password is not valid base64: %w", err)
	}
	gcm, err := newGCM(sender)
	if err != nil {
		return "", err
	}
	if len(data) < gcm.NonceSize() {
		return "", fmt.Errorf("encrypted password is too short")
	}
	nonce, sealed := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("password was encrypted for a different sender: %w", err)
	}
	return string(plain), nil
}
