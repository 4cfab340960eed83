package vault

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/multiwallet/internal/crypto"
	"github.com/AlexZinkM/multiwallet/internal/model"

	"go.uber.org/zap"
)

// ChangePIN re-encrypts every blob under newPIN with a fresh salt and IV.
// All blobs are decrypted with oldPIN first; if any fails nothing is
// written and the previous ciphertexts stay intact.
func (v *Vault) ChangePIN(ctx context.Context, oldPIN, newPIN []byte) error {
	if len(newPIN) == 0 {
		return fmt.Errorf("%w: new pin", model.ErrMissingParameter)
	}

	var rekeyed int
	err := v.update(ctx, func(doc *document) error {
		// decrypt everything before touching anything
		var mnemonic []byte
		if doc.Mnemonic != nil {
			plain, err := crypto.Decrypt(doc.Mnemonic, oldPIN)
			if err != nil {
				return err
			}
			mnemonic = plain
		}
		defer clear(mnemonic)

		secrets := make([][]byte, len(doc.Keys))
		defer func() {
			for _, s := range secrets {
				clear(s)
			}
		}()
		for i := range doc.Keys {
			plain, err := crypto.Decrypt(&doc.Keys[i].Blob, oldPIN)
			if err != nil {
				v.log.Warn("pin change aborted",
					zap.String("chain", doc.Keys[i].Entry.Chain.String()),
					zap.String("address", doc.Keys[i].Entry.Address))
				return err
			}
			secrets[i] = plain
		}

		// re-encrypt into a fresh document so a failure leaves doc unused
		next := document{Keys: make([]storedKey, len(doc.Keys))}
		if mnemonic != nil {
			blob, err := crypto.Encrypt(mnemonic, newPIN, v.iterations)
			if err != nil {
				return fmt.Errorf("failed to encrypt mnemonic: %w", err)
			}
			next.Mnemonic = blob
		}
		for i := range doc.Keys {
			blob, err := crypto.Encrypt(secrets[i], newPIN, v.iterations)
			if err != nil {
				return fmt.Errorf("failed to encrypt key %s: %w", doc.Keys[i].Entry.Address, err)
			}
			next.Keys[i] = storedKey{Entry: doc.Keys[i].Entry, Blob: *blob}
		}

		*doc = next
		rekeyed = len(next.Keys)
		return nil
	})
	if err != nil {
		return err
	}

	v.log.Info("pin changed", zap.Int("keys", rekeyed))
	return nil
}
