package identity

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

// Scheme names a signature algorithm.
type Scheme string

const (
	SchemeEd25519    Scheme = "ed25519"
	SchemeDilithium3 Scheme = "dilithium3"
)

// scheme is the primitive behind a Scheme. Messages are digested before
// signing so both algorithms sign fixed-size input.
type scheme interface {
	tag() string
	generate(rand io.Reader) (pub, secret []byte, err error)
	public(secret []byte) ([]byte, error)
	sign(secret, msg []byte) ([]byte, error)
	verify(pub, msg, sig []byte) bool
}

func lookupScheme(s Scheme) (scheme, error) {
	switch s {
	case SchemeEd25519, "":
		return ed25519Scheme{}, nil
	case SchemeDilithium3:
		return dilithium3Scheme{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, s)
	}
}

// schemeForTag maps the key-segment tag back to a Scheme.
func schemeForTag(tag string) (Scheme, scheme) {
	if tag == "d" {
		return SchemeDilithium3, dilithium3Scheme{}
	}
	return SchemeEd25519, ed25519Scheme{}
}

type ed25519Scheme struct{}

func (ed25519Scheme) tag() string { return "" }

func (ed25519Scheme) generate(rand io.Reader) ([]byte, []byte, error) {
	pub, priv, err := ed25519.GenerateKey(rand)
	if err != nil {
		return nil, nil, err
	}
	return pub, priv.Seed(), nil
}

func (ed25519Scheme) public(secret []byte) ([]byte, error) {
	if len(secret) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: ed25519 seed must be %d bytes", ErrInvalidSecret, ed25519.SeedSize)
	}
	priv := ed25519.NewKeyFromSeed(secret)
	return priv.Public().(ed25519.PublicKey), nil
}

func (ed25519Scheme) sign(secret, msg []byte) ([]byte, error) {
	if len(secret) != ed25519.SeedSize {
		return nil, ErrInvalidSecret
	}
	digest := sha256.Sum256(msg)
	return ed25519.Sign(ed25519.NewKeyFromSeed(secret), digest[:]), nil
}

func (ed25519Scheme) verify(pub, msg, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	digest := sha256.Sum256(msg)
	return ed25519.Verify(ed25519.PublicKey(pub), digest[:], sig)
}

type dilithium3Scheme struct{}

func (dilithium3Scheme) tag() string { return "d" }

func (dilithium3Scheme) generate(rand io.Reader) ([]byte, []byte, error) {
	pk, sk, err := mode3.GenerateKey(rand)
	if err != nil {
		return nil, nil, err
	}
	pub, err := pk.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	secret, err := sk.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	return pub, secret, nil
}

func (dilithium3Scheme) privateKey(secret []byte) (*mode3.PrivateKey, error) {
	var sk mode3.PrivateKey
	if err := sk.UnmarshalBinary(secret); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	return &sk, nil
}

func (s dilithium3Scheme) public(secret []byte) ([]byte, error) {
	sk, err := s.privateKey(secret)
	if err != nil {
		return nil, err
	}
	pk, ok := sk.Public().(*mode3.PublicKey)
	if !ok {
		return nil, ErrInvalidSecret
	}
	return pk.MarshalBinary()
}

func (s dilithium3Scheme) sign(secret, msg []byte) ([]byte, error) {
	sk, err := s.privateKey(secret)
	if err != nil {
		return nil, err
	}
	digest := sha3.Sum256(msg)
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(sk, digest[:], sig)
	return sig, nil
}

func (dilithium3Scheme) verify(pub, msg, sig []byte) bool {
	if len(sig) != mode3.SignatureSize {
		return false
	}
	var pk mode3.PublicKey
	if err := pk.UnmarshalBinary(pub); err != nil {
		return false
	}
	digest := sha3.Sum256(msg)
	return mode3.Verify(&pk, digest[:], sig)
}
