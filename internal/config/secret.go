package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	encryptedPrefix = "enc:v1:"
	saltSize        = 16
)

// Encrypt seals password with a key derived from username so the settings
// file never holds the password in clear text.
func Encrypt(username, password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	aead, err := chacha20poly1305.NewX(deriveKey(username, salt))
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	out := make([]byte, 0, saltSize+len(nonce)+len(password)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, []byte(password), []byte(username))
	return encryptedPrefix + base64.RawStdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. Values without the encrypted prefix are returned
// unchanged so hand-edited files keep working.
func Decrypt(username, stored string) (string, error) {
	encoded, ok := strings.CutPrefix(stored, encryptedPrefix)
	if !ok {
		return stored, nil
	}
	raw, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decoding password: %w", err)
	}
	if len(raw) < saltSize+chacha20poly1305.NonceSizeX {
		return "", errors.New("encrypted password is truncated")
	}
	salt, rest := raw[:saltSize], raw[saltSize:]
	aead, err := chacha20poly1305.NewX(deriveKey(username, salt))
	if err != nil {
		return "", err
	}
	nonce, sealed := rest[:aead.NonceSize()], rest[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, []byte(username))
	if err != nil {
		return "", errors.New("password was encrypted for a different username")
	}
	return string(plain), nil
}

func deriveKey(username string, salt []byte) []byte {
	return argon2.IDKey([]byte(username), salt, 1, 19*1024, 2, chacha20poly1305.KeySize)
}
