package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/AlexZinkM/multiwallet/internal/address"
	"github.com/AlexZinkM/multiwallet/internal/model"
)

func secp256k1Address(priv *ecdsa.PrivateKey, chain model.Chain) string {
	if chain == model.ChainTron {
		return address.TronAddress(&priv.PublicKey)
	}
	return address.EVMAddress(&priv.PublicKey)
}

func (s *Service) signSecp256k1(ctx context.Context, chain model.Chain, key *ecdsa.PrivateKey, params model.TransferParams) (*model.SignedTransaction, error) {
	switch chain {
	case model.ChainEVM:
		if s.evm == nil {
			return nil, notConfigured(chain)
		}
		return s.evm.BuildAndSign(ctx, key, params)
	case model.ChainTron:
		if s.tron == nil {
			return nil, notConfigured(chain)
		}
		return s.tron.BuildAndSign(ctx, key, params)
	}
	return nil, fmt.Errorf("%w: %s does not use secp256k1", model.ErrInvalidKey, chain)
}
