package session

import (
	"crypto/rand"
	"crypto/rsa"

	"github.com/google/uuid"
)

// KeySet holds the RSA key pair used to sign and verify session tokens.
type KeySet struct {
	privateKey *rsa.PrivateKey
	kid        string
}

// NewKeySet generates a fresh 2048-bit signing key. Sessions do not survive
// a restart; the console simply asks staff to log in again.
func NewKeySet() (*KeySet, error) {
	pk, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}

	return &KeySet{
		privateKey: pk,
		kid:        uuid.NewString(),
	}, nil
}

func (ks *KeySet) PrivateKey() *rsa.PrivateKey { return ks.privateKey }

func (ks *KeySet) PublicKey() *rsa.PublicKey {
	if ks.privateKey == nil {
		return nil
	}
	return &ks.privateKey.PublicKey
}

func (ks *KeySet) KeyID() string { return ks.kid }
