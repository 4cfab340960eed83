package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/AlexZinkM/multiwallet/internal/metrics"
	"github.com/AlexZinkM/multiwallet/internal/model"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// PBKDF2-HMAC-SHA256 parameters for vault blobs.
	//
	// MinIterations is the floor for new blobs. The count actually used is
	// stored in each blob so raising the configured value never locks out
	// existing secrets.
	MinIterations = 100_000
	keyLen        = 32 // AES-256
	saltLen       = 16
	nonceLen      = 12
)

// deriveKey stretches pin into an AES-256 key.
func deriveKey(pin, salt []byte, iterations int) []byte {
	defer metrics.ObserveKDF(time.Now())
	return pbkdf2.Key(pin, salt, iterations, keyLen, sha256.New)
}

// newGCM creates the AES-GCM AEAD for key.
func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}

// Encrypt seals secret under a key derived from pin with a fresh salt and
// nonce.
// pin must be []byte for security (caller should zero it after use)
func Encrypt(secret, pin []byte, iterations int) (*model.EncryptedBlob, error) {
	if iterations < MinIterations {
		return nil, fmt.Errorf("pbkdf2 iterations %d below minimum %d", iterations, MinIterations)
	}
	if len(pin) == 0 {
		return nil, fmt.Errorf("%w: pin", model.ErrMissingParameter)
	}

	// Generate salt and nonce
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	key := deriveKey(pin, salt, iterations)
	defer clear(key)

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	return &model.EncryptedBlob{
		Ciphertext: aesGCM.Seal(nil, nonce, secret, nil),
		Salt:       salt,
		IV:         nonce,
		Iterations: iterations,
	}, nil
}
