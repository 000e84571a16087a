package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// EncryptionKeyEnv names the environment variable holding the symmetric key
// material for credential encryption.
const EncryptionKeyEnv = "API_KEY_ENCRYPTION_KEY"

// Cipher encrypts and decrypts short strings with AES-256-GCM.
// Ciphertexts are base64(nonce || sealed).
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher derives a 256-bit key from the given material via SHA-256.
func NewCipher(keyMaterial []byte) (*Cipher, error) {
	key := sha256.Sum256(keyMaterial)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

// FromEnv builds a Cipher from API_KEY_ENCRYPTION_KEY. If the variable is
// unset a random key is generated for this process only: anything encrypted
// under it cannot be decrypted after a restart.
func FromEnv(logger *zap.Logger) (*Cipher, error) {
	material := []byte(os.Getenv(EncryptionKeyEnv))
	if len(material) == 0 {
		material = make([]byte, 32)
		if _, err := rand.Read(material); err != nil {
			return nil, fmt.Errorf("generate encryption key: %w", err)
		}
		logger.Warn("no API_KEY_ENCRYPTION_KEY set, generated a temporary key; stored credentials will not survive a restart")
	}
	return NewCipher(material)
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *Cipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	if len(raw) < c.aead.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plaintext), nil
}
