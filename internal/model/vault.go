package model

import (
	"strings"
	"time"
)

// EncryptedBlob is the at-rest form of one secret (a mnemonic or one raw
// private key). Byte fields are base64 encoded in JSON.
type EncryptedBlob struct {
	Ciphertext []byte `json:"ciphertext"`
	Salt       []byte `json:"salt"`
	IV         []byte `json:"iv"`
	Iterations int    `json:"iterations"` // PBKDF2 rounds used for this blob
}

// StoredKeyEntry is the metadata of an imported standalone private key.
type StoredKeyEntry struct {
	Address string    `json:"address"`
	Chain   Chain     `json:"chain"`
	Label   string    `json:"label,omitempty"`
	AddedAt time.Time `json:"addedAt"`
}

// EntryKey identifies a StoredKeyEntry. EVM addresses are case-insensitive
// so they are lower-cased, other chains use the address verbatim.
type EntryKey struct {
	Address string
	Chain   Chain
}

// NewEntryKey builds the normalised key for (address, chain).
func NewEntryKey(address string, chain Chain) EntryKey {
	address = strings.TrimSpace(address)
	if chain == ChainEVM {
		address = strings.ToLower(address)
	}
	return EntryKey{Address: address, Chain: chain}
}

// Key returns the entry's normalised key.
func (e StoredKeyEntry) Key() EntryKey {
	return NewEntryKey(e.Address, e.Chain)
}
