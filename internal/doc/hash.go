package doc

import (
	"crypto/sha256"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// DomainDocument separates document signing digests from any other use of
// SHA-256 over the same bytes. The version suffix leaves room to migrate.
const DomainDocument = "slimecats/doc/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) []byte {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return h.Sum(nil)
}

// ContentHash returns the CIDv1 (raw codec, sha2-256) of the content bytes.
func ContentHash(content string) (string, error) {
	sum, err := multihash.Sum([]byte(content), multihash.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("content hash: %w", err)
	}
	return cid.NewCidV1(cid.Raw, sum).String(), nil
}

// SigningBytes is the digest an author signs: every field except the
// signature, canonically encoded and domain-hashed.
func (d Document) SigningBytes() ([]byte, error) {
	canonical, err := marshalCanonical([]field{
		{"format", d.Format},
		{"workspace", d.Workspace},
		{"path", d.Path},
		{"contentHash", d.ContentHash},
		{"content", d.Content},
		{"author", d.Author},
		{"timestamp", d.Timestamp},
	})
	if err != nil {
		return nil, fmt.Errorf("signing bytes: %w", err)
	}
	return hashWithDomain(DomainDocument, canonical), nil
}
