package crypto

import (
	"github.com/AlexZinkM/multiwallet/internal/metrics"
	"github.com/AlexZinkM/multiwallet/internal/model"
)

// Decrypt opens blob with pin. Every failure, malformed blob or wrong PIN
// alike, is reported as model.ErrDecryptionFailed and nothing else.
// The caller owns the returned plaintext and should clear it after use.
func Decrypt(blob *model.EncryptedBlob, pin []byte) ([]byte, error) {
	plaintext, ok := open(blob, pin)
	if !ok {
		metrics.DecryptFailures.Inc()
		return nil, model.ErrDecryptionFailed
	}
	return plaintext, nil
}

func open(blob *model.EncryptedBlob, pin []byte) ([]byte, bool) {
	if blob == nil || len(pin) == 0 || len(blob.IV) != nonceLen || len(blob.Salt) == 0 {
		return nil, false
	}

	iterations := blob.Iterations
	if iterations < MinIterations {
		return nil, false
	}

	key := deriveKey(pin, blob.Salt, iterations)
	defer clear(key)

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, false
	}

	plaintext, err := aesGCM.Open(nil, blob.IV, blob.Ciphertext, nil)
	if err != nil {
		return nil, false
	}
	return plaintext, true
}
