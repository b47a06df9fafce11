package doc

import (
	"fmt"

	"github.com/roach88/slimecats/internal/identity"
)

// New builds and signs a document. Content is NFC normalised first.
func New(signer identity.Signer, workspace, path, content string, timestamp int64) (Document, error) {
	if err := ValidateWorkspace(workspace); err != nil {
		return Document{}, err
	}
	if err := ValidatePath(path); err != nil {
		return Document{}, err
	}
	content = NormalizeContent(content)
	hash, err := ContentHash(content)
	if err != nil {
		return Document{}, err
	}
	d := Document{
		Format:      Format,
		Workspace:   workspace,
		Path:        path,
		ContentHash: hash,
		Content:     content,
		Author:      signer.Address(),
		Timestamp:   timestamp,
	}
	msg, err := d.SigningBytes()
	if err != nil {
		return Document{}, err
	}
	d.Signature, err = signer.Sign(msg)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return d, nil
}

// Verify checks the fields and the author's signature. now bounds the
// timestamp; pass NowMicros() outside of tests.
func Verify(v identity.Verifier, d Document, now int64) error {
	if err := d.CheckFields(now); err != nil {
		return err
	}
	msg, err := d.SigningBytes()
	if err != nil {
		return err
	}
	if err := v.Verify(d.Author, msg, d.Signature); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSignature, d.Path, err)
	}
	return nil
}
