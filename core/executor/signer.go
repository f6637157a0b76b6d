package executor

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Signer signs outgoing transactions with the engine wallet key.
type Signer interface {
	PublicKey() solana.PublicKey
	Sign(tx *solana.Transaction) error
}

type walletSigner struct {
	key solana.PrivateKey
}

func NewWalletSigner(base58Key string) (Signer, error) {
	key, err := solana.PrivateKeyFromBase58(base58Key)
	if err != nil {
		return nil, fmt.Errorf("parse wallet key failed, %v", err)
	}

	return &walletSigner{key: key}, nil
}

func (s *walletSigner) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}

func (s *walletSigner) Sign(tx *solana.Transaction) error {
	_, err := tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(s.key.PublicKey()) {
			return &s.key
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sign transaction failed, %v", err)
	}

	return nil
}
