// Package vault keeps the recovery phrase and imported private keys
// encrypted at rest under a PIN.
package vault

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/AlexZinkM/multiwallet/internal/crypto"
	"github.com/AlexZinkM/multiwallet/internal/logger"
	"github.com/AlexZinkM/multiwallet/internal/model"
	"github.com/AlexZinkM/multiwallet/internal/store"

	"go.uber.org/zap"
)

const (
	// StorageKey holds the whole vault document: every entry with its blob
	// and the mnemonic blob. One key means one write per mutation, so
	// metadata and ciphertext can never be observed apart.
	StorageKey = "vault.entries"

	// EventChanged is published after every successful write.
	EventChanged = "vault.changed"
)

// document is the persisted vault.
type document struct {
	Mnemonic *model.EncryptedBlob `json:"mnemonic,omitempty"`
	Keys     []storedKey          `json:"keys"`
}

type storedKey struct {
	Entry model.StoredKeyEntry `json:"entry"`
	Blob  model.EncryptedBlob  `json:"blob"`
}

// Vault is safe for concurrent use within one process. Across processes
// sharing a store the last write wins and subscribers of the notifier are
// told to reload.
type Vault struct {
	store      store.Store
	notifier   store.Notifier
	iterations int
	now        func() time.Time

	lock *sync.Mutex
	log  *zap.Logger
}

// New creates a Vault over s. notifier may be nil. iterations below
// crypto.MinIterations are raised to it.
func New(s store.Store, notifier store.Notifier, iterations int) *Vault {
	if iterations < crypto.MinIterations {
		iterations = crypto.MinIterations
	}
	return &Vault{
		store:      s,
		notifier:   notifier,
		iterations: iterations,
		now:        time.Now,
		lock:       &sync.Mutex{},
		log:        logger.Named("vault"),
	}
}

func (v *Vault) load(ctx context.Context) (*document, error) {
	var doc document
	if err := v.store.Get(ctx, StorageKey, &doc); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return &document{}, nil
		}
		return nil, fmt.Errorf("failed to load vault: %w", err)
	}
	return &doc, nil
}

func (v *Vault) save(ctx context.Context, doc *document) error {
	if err := v.store.Set(ctx, StorageKey, doc); err != nil {
		return fmt.Errorf("failed to save vault: %w", err)
	}
	v.publish(ctx)
	return nil
}

func (v *Vault) publish(ctx context.Context) {
	if v.notifier == nil {
		return
	}
	if err := v.notifier.Publish(ctx, store.Event{Type: EventChanged, Key: StorageKey}); err != nil {
		// the write already succeeded, other instances reload on their next read
		v.log.Warn("failed to publish vault change", zap.Error(err))
	}
}

// update runs fn on the current document and saves the result.
func (v *Vault) update(ctx context.Context, fn func(doc *document) error) error {
	v.lock.Lock()
	defer v.lock.Unlock()

	doc, err := v.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return v.save(ctx, doc)
}

func (d *document) find(key model.EntryKey) int {
	for i := range d.Keys {
		if d.Keys[i].Entry.Key() == key {
			return i
		}
	}
	return -1
}

// ImportKey encrypts secret under pin and stores it with entry. An existing
// entry for the same (address, chain) is overwritten.
func (v *Vault) ImportKey(ctx context.Context, entry model.StoredKeyEntry, secret, pin []byte) error {
	if entry.Address == "" || entry.Chain == "" {
		return fmt.Errorf("%w: entry address and chain", model.ErrMissingParameter)
	}
	if len(secret) == 0 {
		return fmt.Errorf("%w: secret", model.ErrMissingParameter)
	}

	blob, err := crypto.Encrypt(secret, pin, v.iterations)
	if err != nil {
		return fmt.Errorf("failed to encrypt key: %w", err)
	}
	if entry.AddedAt.IsZero() {
		entry.AddedAt = v.now().UTC()
	}

	err = v.update(ctx, func(doc *document) error {
		rec := storedKey{Entry: entry, Blob: *blob}
		if i := doc.find(entry.Key()); i >= 0 {
			doc.Keys[i] = rec
			return nil
		}
		doc.Keys = append(doc.Keys, rec)
		return nil
	})
	if err != nil {
		return err
	}

	v.log.Info("key imported", zap.String("chain", entry.Chain.String()), zap.String("address", entry.Address))
	return nil
}

// Reveal decrypts the private key stored for (address, chain). The caller
// owns the returned bytes and should clear them after use.
func (v *Vault) Reveal(ctx context.Context, address string, chain model.Chain, pin []byte) ([]byte, error) {
	doc, err := v.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	i := doc.find(model.NewEntryKey(address, chain))
	if i < 0 {
		return nil, fmt.Errorf("%w: no key for %s on %s", model.ErrNotFound, address, chain)
	}
	return crypto.Decrypt(&doc.Keys[i].Blob, pin)
}

func (v *Vault) snapshot(ctx context.Context) (*document, error) {
	v.lock.Lock()
	defer v.lock.Unlock()
	return v.load(ctx)
}

// Entries lists metadata of every imported key, oldest first.
func (v *Vault) Entries(ctx context.Context) ([]model.StoredKeyEntry, error) {
	doc, err := v.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.StoredKeyEntry, 0, len(doc.Keys))
	for _, k := range doc.Keys {
		out = append(out, k.Entry)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out, nil
}

// Entry returns the metadata stored for (address, chain).
func (v *Vault) Entry(ctx context.Context, address string, chain model.Chain) (*model.StoredKeyEntry, error) {
	doc, err := v.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	i := doc.find(model.NewEntryKey(address, chain))
	if i < 0 {
		return nil, fmt.Errorf("%w: no key for %s on %s", model.ErrNotFound, address, chain)
	}
	entry := doc.Keys[i].Entry
	return &entry, nil
}

// Delete removes the entry and its ciphertext together. Deleting a missing
// entry returns model.ErrNotFound.
func (v *Vault) Delete(ctx context.Context, address string, chain model.Chain) error {
	key := model.NewEntryKey(address, chain)
	return v.update(ctx, func(doc *document) error {
		i := doc.find(key)
		if i < 0 {
			return fmt.Errorf("%w: no key for %s on %s", model.ErrNotFound, address, chain)
		}
		doc.Keys = append(doc.Keys[:i], doc.Keys[i+1:]...)
		return nil
	})
}

// Clear removes every imported key. The mnemonic is kept.
func (v *Vault) Clear(ctx context.Context) error {
	return v.update(ctx, func(doc *document) error {
		doc.Keys = nil
		return nil
	})
}

// StoreMnemonic encrypts and stores the recovery phrase, replacing any
// previous one.
func (v *Vault) StoreMnemonic(ctx context.Context, mnemonic, pin []byte) error {
	if len(mnemonic) == 0 {
		return fmt.Errorf("%w: mnemonic", model.ErrMissingParameter)
	}

	blob, err := crypto.Encrypt(mnemonic, pin, v.iterations)
	if err != nil {
		return fmt.Errorf("failed to encrypt mnemonic: %w", err)
	}

	return v.update(ctx, func(doc *document) error {
		doc.Mnemonic = blob
		return nil
	})
}

// RevealMnemonic decrypts the recovery phrase.
func (v *Vault) RevealMnemonic(ctx context.Context, pin []byte) ([]byte, error) {
	doc, err := v.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if doc.Mnemonic == nil {
		return nil, fmt.Errorf("%w: no wallet has been created", model.ErrNotFound)
	}
	return crypto.Decrypt(doc.Mnemonic, pin)
}

// HasMnemonic reports whether a recovery phrase is stored.
func (v *Vault) HasMnemonic(ctx context.Context) (bool, error) {
	doc, err := v.snapshot(ctx)
	if err != nil {
		return false, err
	}
	return doc.Mnemonic != nil, nil
}

// VerifyPIN checks pin by decrypting a known blob: the mnemonic if present,
// otherwise the first imported key. An empty vault accepts any PIN.
func (v *Vault) VerifyPIN(ctx context.Context, pin []byte) error {
	doc, err := v.snapshot(ctx)
	if err != nil {
		return err
	}

	var blob *model.EncryptedBlob
	switch {
	case doc.Mnemonic != nil:
		blob = doc.Mnemonic
	case len(doc.Keys) > 0:
		blob = &doc.Keys[0].Blob
	default:
		return nil
	}

	plain, err := crypto.Decrypt(blob, pin)
	if err != nil {
		return err
	}
	clear(plain)
	return nil
}
