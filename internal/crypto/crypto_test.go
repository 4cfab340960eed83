package crypto

import (
	"encoding/json"
	"testing"

	"github.com/AlexZinkM/multiwallet/internal/model"

	"github.com/stretchr/testify/require"
)

var (
	testSecret = []byte("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about")
	testPIN    = []byte("123456")
)

func TestEncryptDecrypt(t *testing.T) {
	t.Parallel()

	blob, err := Encrypt(testSecret, testPIN, MinIterations)
	require.NoError(t, err)
	require.Len(t, blob.Salt, saltLen)
	require.Len(t, blob.IV, nonceLen)
	require.Equal(t, MinIterations, blob.Iterations)
	require.NotContains(t, string(blob.Ciphertext), "abandon")

	plain, err := Decrypt(blob, testPIN)
	require.NoError(t, err)
	require.Equal(t, testSecret, plain)
}

func TestEncryptFreshSaltAndNonce(t *testing.T) {
	t.Parallel()

	a, err := Encrypt(testSecret, testPIN, MinIterations)
	require.NoError(t, err)
	b, err := Encrypt(testSecret, testPIN, MinIterations)
	require.NoError(t, err)

	require.NotEqual(t, a.Salt, b.Salt)
	require.NotEqual(t, a.IV, b.IV)
	require.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestEncryptRejects(t *testing.T) {
	t.Parallel()

	_, err := Encrypt(testSecret, testPIN, MinIterations-1)
	require.Error(t, err)

	_, err = Encrypt(testSecret, nil, MinIterations)
	require.ErrorIs(t, err, model.ErrMissingParameter)
}

func TestDecryptFailuresAreUniform(t *testing.T) {
	t.Parallel()

	blob, err := Encrypt(testSecret, testPIN, MinIterations)
	require.NoError(t, err)

	tampered := func(mut func(b *model.EncryptedBlob)) *model.EncryptedBlob {
		c := *blob
		c.Ciphertext = append([]byte(nil), blob.Ciphertext...)
		c.Salt = append([]byte(nil), blob.Salt...)
		c.IV = append([]byte(nil), blob.IV...)
		mut(&c)
		return &c
	}

	tests := []struct {
		name string
		blob *model.EncryptedBlob
		pin  []byte
	}{
		{name: "wrong pin", blob: blob, pin: []byte("654321")},
		{name: "empty pin", blob: blob, pin: nil},
		{name: "nil blob", blob: nil, pin: testPIN},
		{name: "flipped ciphertext", blob: tampered(func(b *model.EncryptedBlob) { b.Ciphertext[0] ^= 1 }), pin: testPIN},
		{name: "flipped tag", blob: tampered(func(b *model.EncryptedBlob) { b.Ciphertext[len(b.Ciphertext)-1] ^= 1 }), pin: testPIN},
		{name: "other salt", blob: tampered(func(b *model.EncryptedBlob) { b.Salt[0] ^= 1 }), pin: testPIN},
		{name: "short iv", blob: tampered(func(b *model.EncryptedBlob) { b.IV = b.IV[:8] }), pin: testPIN},
		{name: "iterations changed", blob: tampered(func(b *model.EncryptedBlob) { b.Iterations++ }), pin: testPIN},
		{name: "iterations below floor", blob: tampered(func(b *model.EncryptedBlob) { b.Iterations = 1 }), pin: testPIN},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			plain, err := Decrypt(tc.blob, tc.pin)
			require.Nil(t, plain)
			require.ErrorIs(t, err, model.ErrDecryptionFailed)
			require.Equal(t, model.ErrDecryptionFailed.Error(), err.Error())
		})
	}
}

func TestBlobJSONRoundTrip(t *testing.T) {
	t.Parallel()

	blob, err := Encrypt(testSecret, testPIN, MinIterations+1)
	require.NoError(t, err)

	data, err := json.Marshal(blob)
	require.NoError(t, err)

	var decoded model.EncryptedBlob
	require.NoError(t, json.Unmarshal(data, &decoded))

	plain, err := Decrypt(&decoded, testPIN)
	require.NoError(t, err)
	require.Equal(t, testSecret, plain)
}
