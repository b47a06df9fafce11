package identity

import (
	"fmt"

	"github.com/multiformats/go-multibase"
)

// Signer signs on behalf of one author.
type Signer interface {
	Address() string
	Sign(msg []byte) (string, error)
}

// Verifier checks a signature against an author address.
type Verifier interface {
	Verify(address string, msg []byte, signature string) error
}

type keySigner struct {
	address string
	scheme  scheme
	secret  []byte
}

func (k *keySigner) Address() string { return k.address }

func (k *keySigner) Sign(msg []byte) (string, error) {
	sig, err := k.scheme.sign(k.secret, msg)
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}
	return multibase.Encode(multibase.Base32, sig)
}

type addressVerifier struct{}

// DefaultVerifier verifies signatures for every built-in scheme, picking the
// scheme from the address.
var DefaultVerifier Verifier = addressVerifier{}

func (addressVerifier) Verify(address string, msg []byte, signature string) error {
	author, err := ParseAddress(address)
	if err != nil {
		return err
	}
	s, err := lookupScheme(author.Scheme)
	if err != nil {
		return err
	}
	enc, sig, err := multibase.Decode(signature)
	if err != nil || enc != multibase.Base32 {
		return fmt.Errorf("%w: malformed signature encoding", ErrBadSignature)
	}
	if !s.verify(author.PublicKey, msg, sig) {
		return ErrBadSignature
	}
	return nil
}
