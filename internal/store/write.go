package store

import (
	"context"
	"fmt"

	"github.com/roach88/slimecats/internal/doc"
	"github.com/roach88/slimecats/internal/identity"
)

// Put signs content as a new document at path and applies it under
// last-write-wins.
//
// The timestamp is the current time, bumped to one microsecond past the
// document being replaced when the clock has not moved past it, so a local
// overwrite always wins against what the writer last saw.
//
// Fails with ErrInvalidWrite for a malformed path, malformed content, a
// timestamp Merge would refuse, or a signing failure. Nothing is stored in
// that case.
func (s *Store) Put(ctx context.Context, signer identity.Signer, path, content string) (doc.Document, error) {
	release, err := s.acquire("put")
	if err != nil {
		return doc.Document{}, err
	}
	defer release()

	if err := doc.ValidatePath(path); err != nil {
		return doc.Document{}, fmt.Errorf("%w: %w", ErrInvalidWrite, err)
	}

	ts := s.now()
	cur, ok, err := s.backend.Get(ctx, s.workspace, path)
	if err != nil {
		return doc.Document{}, fmt.Errorf("put %s: %w", path, err)
	}
	if ok && cur.Timestamp >= ts {
		ts = cur.Timestamp + 1
	}

	d, err := doc.New(signer, s.workspace, path, content, ts)
	if err != nil {
		return doc.Document{}, fmt.Errorf("%w: %w", ErrInvalidWrite, err)
	}
	if err := d.CheckFields(s.now()); err != nil {
		return doc.Document{}, fmt.Errorf("%w: %w", ErrInvalidWrite, err)
	}

	applied, err := s.backend.Upsert(ctx, d)
	if err != nil {
		return doc.Document{}, fmt.Errorf("put %s: %w", path, err)
	}
	if !applied {
		// A concurrent writer got a later document in first.
		s.logger.Debug("put superseded", "path", path, "timestamp", ts)
	}
	return d, nil
}

// Merge verifies an incoming document and applies it under last-write-wins.
// It reports whether the document replaced the current one.
//
// A document that fails verification, or belongs to another workspace, is
// discarded and ErrInvalidSignature is returned. Batch callers should count
// the failure and carry on.
func (s *Store) Merge(ctx context.Context, d doc.Document) (bool, error) {
	release, err := s.acquire("merge")
	if err != nil {
		return false, err
	}
	defer release()

	if d.Workspace != s.workspace {
		return false, fmt.Errorf("%w: document for workspace %q", ErrInvalidSignature, d.Workspace)
	}
	if err := doc.Verify(s.verifier, d, s.now()); err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	applied, err := s.backend.Upsert(ctx, d)
	if err != nil {
		return false, fmt.Errorf("merge %s: %w", d.Path, err)
	}
	return applied, nil
}
