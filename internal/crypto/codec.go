// internal/crypto/codec.go
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Codec encrypts card data for storage and produces the deterministic
// hash used for uniqueness checks and lookup. Encryption is AES-CBC
// with PKCS#7 padding and a random IV; the hash is HMAC-SHA256 so card
// numbers cannot be brute-forced from the stored digests alone.
type Codec struct {
	key        []byte
	hmacSecret []byte
}

// NewCodec validates the key material and returns a Codec. The AES key
// must be 16, 24 or 32 bytes.
func NewCodec(encryptionKey, hmacSecret string) (*Codec, error) {
	key := []byte(encryptionKey)
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 16, 24, or 32 bytes, got %d", len(key))
	}
	if len(hmacSecret) == 0 {
		return nil, fmt.Errorf("hmac secret must not be empty")
	}
	return &Codec{key: key, hmacSecret: []byte(hmacSecret)}, nil
}

// Hash returns the deterministic hex HMAC-SHA256 digest of a card
// number. Equal inputs always produce equal digests, which is what the
// unique index and the lookup-by-number path rely on.
func (c *Codec) Hash(cardNumber string) string {
	h := hmac.New(sha256.New, c.hmacSecret)
	h.Write([]byte(cardNumber))
	return hex.EncodeToString(h.Sum(nil))
}

// Encrypt encrypts a string and returns hex(IV || ciphertext).
func (c *Codec) Encrypt(data string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("input data is empty")
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	// PKCS#7 padding
	dataBytes := []byte(data)
	padding := aes.BlockSize - len(dataBytes)%aes.BlockSize
	for i := 0; i < padding; i++ {
		dataBytes = append(dataBytes, byte(padding))
	}

	ciphertext := make([]byte, len(dataBytes))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, dataBytes)

	return hex.EncodeToString(append(iv, ciphertext...)), nil
}

// Decrypt reverses Encrypt.
func (c *Codec) Decrypt(encryptedData string) (string, error) {
	if len(encryptedData) == 0 {
		return "", fmt.Errorf("encrypted data is empty")
	}

	data, err := hex.DecodeString(encryptedData)
	if err != nil {
		return "", fmt.Errorf("failed to decode hex: %w", err)
	}
	if len(data) < aes.BlockSize {
		return "", fmt.Errorf("encrypted data too short: %d bytes", len(data))
	}

	iv := data[:aes.BlockSize]
	ciphertext := data[aes.BlockSize:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("invalid ciphertext length: %d bytes", len(ciphertext))
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	padding := int(plaintext[len(plaintext)-1])
	if padding == 0 || padding > aes.BlockSize {
		return "", fmt.Errorf("invalid padding value: %d", padding)
	}
	for i := len(plaintext) - padding; i < len(plaintext); i++ {
		if int(plaintext[i]) != padding {
			return "", fmt.Errorf("invalid padding bytes at position %d", i)
		}
	}

	return string(plaintext[:len(plaintext)-padding]), nil
}
