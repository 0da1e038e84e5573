package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Encryptor encrypts column values at rest, such as stored provider configuration.
type Encryptor interface {
	Encrypt(plaintext []byte) (string, error)
	Decrypt(ciphertext string) ([]byte, error)
}

// Sealer authenticates and encrypts opaque payloads bound to additional data.
// A payload sealed with one additional-data value cannot be opened with another.
type Sealer interface {
	Seal(plaintext, additionalData []byte) ([]byte, error)
	Open(sealed, additionalData []byte) ([]byte, error)
}

var (
	// ErrCiphertextTooShort is returned when a sealed value cannot hold a nonce.
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	// ErrPlaintextColumn is returned for NoopEncryptor values unless AcceptNoopColumns was called.
	ErrPlaintextColumn = errors.New("column value is not encrypted")
)

const (
	// Versioned prefix to allow future key/algorithm rotations without data migrations.
	columnCipherPrefixV1 = "v1:"
	noopPrefix           = "noop:"
	keySize              = 32
)

// AESGCMEncryptor implements Encryptor and Sealer using AES-256-GCM.
type AESGCMEncryptor struct {
	aead      cipher.AEAD
	allowNoop bool
}

var (
	_ Encryptor = (*AESGCMEncryptor)(nil)
	_ Sealer    = (*AESGCMEncryptor)(nil)
)

// NewAESGCMEncryptor constructs a new AESGCMEncryptor. Key must be 32 bytes (AES-256).
func NewAESGCMEncryptor(key []byte) (*AESGCMEncryptor, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("aes-gcm key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(append([]byte(nil), key...))
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return &AESGCMEncryptor{aead: aead}, nil
}

// KeyFromString turns configured key material into a 32-byte key.
// A 64-character hex string is decoded as is; anything else is hashed with SHA-256.
func KeyFromString(material string) ([]byte, error) {
	if material == "" {
		return nil, errors.New("encryption key is required")
	}
	if decoded, err := hex.DecodeString(material); err == nil && len(decoded) == keySize {
		return decoded, nil
	}
	sum := sha256.Sum256([]byte(material))
	return sum[:], nil
}

// Seal encrypts plaintext with a random nonce and returns nonce||ciphertext.
func (e *AESGCMEncryptor) Seal(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+e.aead.Overhead())
	out = append(out, nonce...)
	return e.aead.Seal(out, nonce, plaintext, additionalData), nil
}

// Open reverses Seal. Any tampering with sealed or a different additionalData fails.
func (e *AESGCMEncryptor) Open(sealed, additionalData []byte) ([]byte, error) {
	nonceSize := e.aead.NonceSize()
	if len(sealed) < nonceSize+e.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	nonce, ct := sealed[:nonceSize], sealed[nonceSize:]
	return e.aead.Open(nil, nonce, ct, additionalData)
}

// AcceptNoopColumns lets Decrypt read values written by NoopEncryptor, so a key
// can be introduced on a development database seeded without one.
func (e *AESGCMEncryptor) AcceptNoopColumns() { e.allowNoop = true }

// Encrypt seals plaintext and returns a versioned base64 string for column storage.
func (e *AESGCMEncryptor) Encrypt(plaintext []byte) (string, error) {
	sealed, err := e.Seal(plaintext, nil)
	if err != nil {
		return "", err
	}
	return columnCipherPrefixV1 + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt decrypts a versioned base64 string created by Encrypt.
// NoopEncryptor values fail with ErrPlaintextColumn unless AcceptNoopColumns was called.
func (e *AESGCMEncryptor) Decrypt(ciphertext string) ([]byte, error) {
	if strings.HasPrefix(ciphertext, noopPrefix) {
		if !e.allowNoop {
			return nil, ErrPlaintextColumn
		}
		return NoopEncryptor{}.Decrypt(ciphertext)
	}
	if !strings.HasPrefix(ciphertext, columnCipherPrefixV1) {
		prefix := ciphertext
		if len(prefix) > 10 {
			prefix = prefix[:10]
		}
		return nil, fmt.Errorf("unknown ciphertext version (prefix: %s)", prefix)
	}
	data, err := base64.StdEncoding.DecodeString(ciphertext[len(columnCipherPrefixV1):])
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	return e.Open(data, nil)
}

// NoopEncryptor stores plaintext with a prefix marker. Intended for tests and local development.
type NoopEncryptor struct{}

func (NoopEncryptor) Encrypt(plaintext []byte) (string, error) {
	return noopPrefix + base64.StdEncoding.EncodeToString(plaintext), nil
}

func (NoopEncryptor) Decrypt(ciphertext string) ([]byte, error) {
	if !strings.HasPrefix(ciphertext, noopPrefix) {
		return nil, errors.New("invalid noop ciphertext")
	}
	decoded, err := base64.StdEncoding.DecodeString(ciphertext[len(noopPrefix):])
	if err != nil {
		return nil, fmt.Errorf("decode noop ciphertext: %w", err)
	}
	return decoded, nil
}
