// Package doc defines the signed document, the atomic unit of storage and
// sync.
//
// A document is a (path, content) pair stamped with its author, a microsecond
// timestamp and a signature. Two documents at the same path are ordered by
// Compare: timestamp first, then content hash, then signature. The greater
// one wins (last-write-wins), and the ordering is total so every replica picks
// the same winner regardless of the order it saw the writes in.
//
// This package imports nothing internal except identity.
package doc
