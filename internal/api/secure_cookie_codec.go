package api

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const sealedCookieVersion = "v2"

var errInvalidSecureCookieValue = errors.New("invalid secure cookie value")

// secureCookieCodec seals cookie values with AES-GCM. The purpose is bound as
// associated data so a value sealed for one cookie cannot be replayed in
// another.
type secureCookieCodec struct {
	aead cipher.AEAD
}

func newSecureCookieCodec(secretKey []byte) (*secureCookieCodec, error) {
	if len(secretKey) == 0 {
		return nil, errors.New("secure cookie secret key is required")
	}

	key := make([]byte, 32)
	derive := hkdf.New(sha256.New, secretKey, nil, []byte("kgjournal cookie sealing"))
	if _, err := io.ReadFull(derive, key); err != nil {
		return nil, fmt.Errorf("derive secure cookie key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init secure cookie cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init secure cookie aead: %w", err)
	}
	return &secureCookieCodec{aead: aead}, nil
}

func (codec *secureCookieCodec) seal(purpose string, plaintext []byte) (string, error) {
	purpose = strings.TrimSpace(purpose)
	if purpose == "" {
		return "", errors.New("secure cookie purpose is required")
	}

	nonce := make([]byte, codec.aead.NonceSize(), codec.aead.NonceSize()+len(plaintext)+codec.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate secure cookie nonce: %w", err)
	}
	payload := codec.aead.Seal(nonce, nonce, plaintext, []byte(purpose))
	return sealedCookieVersion + "." + base64.RawURLEncoding.EncodeToString(payload), nil
}

func (codec *secureCookieCodec) open(purpose string, value string) ([]byte, error) {
	version, encoded, found := strings.Cut(strings.TrimSpace(value), ".")
	if !found || version != sealedCookieVersion || encoded == "" {
		return nil, errInvalidSecureCookieValue
	}
	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || len(payload) <= codec.aead.NonceSize() {
		return nil, errInvalidSecureCookieValue
	}

	nonce, ciphertext := payload[:codec.aead.NonceSize()], payload[codec.aead.NonceSize():]
	plaintext, err := codec.aead.Open(nil, nonce, ciphertext, []byte(strings.TrimSpace(purpose)))
	if err != nil {
		return nil, errInvalidSecureCookieValue
	}
	return plaintext, nil
}
