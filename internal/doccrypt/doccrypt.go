// Package doccrypt encrypts sensitive documents (ID card photos, medical
// files, vehicle photos) with a key derived from the document owner's
// identifier and a per-document-class salt.
//
// No key is ever stored. The key material is ownerIdentifier + "-" +
// domainSalt; the owner identifier is kept in plaintext next to the
// ciphertext so any holder of it can re-derive the key. Decrypt never
// returns an error: an undecryptable payload comes back as "" and the
// failure is logged.
package doccrypt

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Domain salts, one per document class. Changing a value makes every
// document of that class undecryptable.
const (
	SaltTutorID      = "TUTOR_IMG_V1"
	SaltVehiclePhoto = "VEHICULO_IMG_V1"
	SaltMedicalFile  = "RUTA_SEGURA_V1"
)

var (
	// ErrEmptyOwner is returned by Encrypt when no owner identifier is given.
	ErrEmptyOwner = errors.New("owner identifier is required")
	// ErrInvalidPayload is returned by Encrypt when the payload is not base64.
	ErrInvalidPayload = errors.New("payload is not valid base64")
)

var magic = []byte("FGO1")

const (
	kdfSaltSize = 16
	headerSize  = 4 + 1 + 4 + 1 + kdfSaltSize + chacha20poly1305.NonceSizeX

	maxTime   = 10
	maxMemory = 256 * 1024
)

// Params are the argon2id cost parameters. They are written into every
// ciphertext header, so changing them never breaks existing documents.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultParams follows the OWASP argon2id baseline (19 MiB, 2 passes).
var DefaultParams = Params{Time: 2, Memory: 19 * 1024, Threads: 1}

// Cipher encrypts and decrypts base64 document payloads.
type Cipher struct {
	params Params
	logger *slog.Logger
}

// New returns a Cipher using params for new ciphertexts.
func New(logger *slog.Logger, params Params) *Cipher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cipher{params: params, logger: logger.With("component", "doccrypt")}
}

func keyMaterial(ownerIdentifier, domainSalt string) []byte {
	return []byte(ownerIdentifier + "-" + domainSalt)
}

// Encrypt seals rawBase64 under the key derived from ownerIdentifier and
// domainSalt and returns the serialized ciphertext as standard base64.
func (c *Cipher) Encrypt(rawBase64, ownerIdentifier, domainSalt string) (string, error) {
	if strings.TrimSpace(ownerIdentifier) == "" {
		return "", ErrEmptyOwner
	}
	if !isBase64(rawBase64) {
		return "", ErrInvalidPayload
	}

	header := make([]byte, headerSize)
	copy(header, magic)
	header[4] = byte(c.params.Time)
	binary.BigEndian.PutUint32(header[5:9], c.params.Memory)
	header[9] = c.params.Threads
	if _, err := rand.Read(header[10:]); err != nil {
		return "", fmt.Errorf("reading random salt and nonce: %w", err)
	}
	salt := header[10 : 10+kdfSaltSize]
	nonce := header[10+kdfSaltSize:]

	key := argon2.IDKey(keyMaterial(ownerIdentifier, domainSalt), salt, c.params.Time, c.params.Memory, c.params.Threads, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", fmt.Errorf("creating aead: %w", err)
	}

	// The header is authenticated, so tampering with the cost
	// parameters or the salt fails the open.
	sealed := aead.Seal(header, nonce, []byte(rawBase64), header)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt returns the original base64 payload, or "" when cipherText is
// malformed or was sealed for a different owner or domain salt. Callers
// must treat "" as "no preview available", not as an empty file.
func (c *Cipher) Decrypt(cipherText, ownerIdentifier, domainSalt string) string {
	if cipherText == "" || ownerIdentifier == "" {
		c.logger.Warn("decrypt skipped", "reason", "empty input", "salt", domainSalt)
		return ""
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(cipherText))
	if err != nil {
		c.logger.Warn("decrypt failed", "reason", "ciphertext is not base64", "salt", domainSalt)
		return ""
	}

	var plain []byte
	switch {
	case bytes.HasPrefix(raw, magic):
		plain, err = c.open(raw, ownerIdentifier, domainSalt)
	case bytes.HasPrefix(raw, legacyMagic):
		plain, err = openLegacy(raw, keyMaterial(ownerIdentifier, domainSalt))
	default:
		err = errors.New("unknown ciphertext format")
	}
	if err != nil {
		c.logger.Warn("decrypt failed", "reason", err.Error(), "salt", domainSalt)
		return ""
	}
	if !isBase64(string(plain)) {
		c.logger.Warn("decrypt failed", "reason", "plaintext is not base64", "salt", domainSalt)
		return ""
	}
	return string(plain)
}

func (c *Cipher) open(raw []byte, ownerIdentifier, domainSalt string) ([]byte, error) {
	if len(raw) < headerSize+chacha20poly1305.Overhead {
		return nil, errors.New("ciphertext too short")
	}
	header := raw[:headerSize]
	t := uint32(header[4])
	m := binary.BigEndian.Uint32(header[5:9])
	p := header[9]
	if t == 0 || t > maxTime || m == 0 || m > maxMemory || p == 0 {
		return nil, errors.New("cost parameters out of range")
	}
	salt := header[10 : 10+kdfSaltSize]
	nonce := header[10+kdfSaltSize:]

	key := argon2.IDKey(keyMaterial(ownerIdentifier, domainSalt), salt, t, m, p, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	plain, err := aead.Open(nil, nonce, raw[headerSize:], header)
	if err != nil {
		return nil, errors.New("authentication failed")
	}
	return plain, nil
}

func isBase64(s string) bool {
	if s == "" {
		return false
	}
	if _, err := base64.StdEncoding.DecodeString(s); err == nil {
		return true
	}
	_, err := base64.RawStdEncoding.DecodeString(s)
	return err == nil
}
