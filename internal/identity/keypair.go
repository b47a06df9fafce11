package identity

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"github.com/multiformats/go-multibase"
)

// Keypair is an author's public address and private secret, in their
// printable forms.
type Keypair struct {
	Address string `yaml:"address" json:"address"`
	Secret  string `yaml:"secret" json:"secret"`
}

// Author is a parsed author address.
type Author struct {
	Shortname string
	Scheme    Scheme
	PublicKey []byte
}

// String re-encodes the author as an address.
func (a Author) String() string {
	s, err := lookupScheme(a.Scheme)
	if err != nil {
		return ""
	}
	key, err := encodeKey(s.tag(), a.PublicKey)
	if err != nil {
		return ""
	}
	return "@" + a.Shortname + "." + key
}

// ParseAddress validates an address and extracts its public key.
func ParseAddress(address string) (Author, error) {
	rest, ok := strings.CutPrefix(address, "@")
	if !ok {
		return Author{}, fmt.Errorf("%w: %q must start with @", ErrInvalidAddress, address)
	}
	short, key, ok := strings.Cut(rest, ".")
	if !ok {
		return Author{}, fmt.Errorf("%w: %q has no key segment", ErrInvalidAddress, address)
	}
	if err := validateShortname(short); err != nil {
		return Author{}, err
	}
	name, _, pub, err := decodeKey(key)
	if err != nil {
		return Author{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return Author{Shortname: short, Scheme: name, PublicKey: pub}, nil
}

// ParseKeypair checks that the secret belongs to the address and returns
// a Signer for it.
func ParseKeypair(kp Keypair) (Signer, error) {
	author, err := ParseAddress(kp.Address)
	if err != nil {
		return nil, err
	}
	name, s, secret, err := decodeKey(kp.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	if name != author.Scheme {
		return nil, fmt.Errorf("%w: secret is %s, address is %s", ErrKeyMismatch, name, author.Scheme)
	}
	pub, err := s.public(secret)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(pub, author.PublicKey) {
		return nil, ErrKeyMismatch
	}
	return &keySigner{address: kp.Address, scheme: s, secret: secret}, nil
}

// Generate mints a new keypair. It is only called when a user explicitly
// asks for a new identity.
func Generate(shortname string, name Scheme) (Keypair, error) {
	return generate(rand.Reader, shortname, name)
}

func generate(r io.Reader, shortname string, name Scheme) (Keypair, error) {
	if err := validateShortname(shortname); err != nil {
		return Keypair{}, err
	}
	s, err := lookupScheme(name)
	if err != nil {
		return Keypair{}, err
	}
	pub, secret, err := s.generate(r)
	if err != nil {
		return Keypair{}, fmt.Errorf("generate keypair: %w", err)
	}
	key, err := encodeKey(s.tag(), pub)
	if err != nil {
		return Keypair{}, err
	}
	sec, err := encodeKey(s.tag(), secret)
	if err != nil {
		return Keypair{}, err
	}
	return Keypair{Address: "@" + shortname + "." + key, Secret: sec}, nil
}

func validateShortname(short string) error {
	if len(short) != 4 {
		return fmt.Errorf("%w: shortname %q must be 4 characters", ErrInvalidAddress, short)
	}
	for i, c := range short {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return fmt.Errorf("%w: shortname %q must be lowercase letters and digits, starting with a letter", ErrInvalidAddress, short)
		}
	}
	return nil
}

func encodeKey(tag string, raw []byte) (string, error) {
	enc, err := multibase.Encode(multibase.Base32, raw)
	if err != nil {
		return "", err
	}
	return tag + enc, nil
}

func decodeKey(key string) (Scheme, scheme, []byte, error) {
	tag := ""
	if strings.HasPrefix(key, "d") {
		tag, key = "d", key[1:]
	}
	enc, raw, err := multibase.Decode(key)
	if err != nil {
		return "", nil, nil, err
	}
	if enc != multibase.Base32 {
		return "", nil, nil, fmt.Errorf("key must be base32 multibase, got %q", key[:1])
	}
	if len(raw) == 0 {
		return "", nil, nil, fmt.Errorf("empty key")
	}
	name, s := schemeForTag(tag)
	return name, s, raw, nil
}
