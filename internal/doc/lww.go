package doc

import "strings"

// Compare orders two documents for the same path under last-write-wins.
// It returns +1 if a wins over b, -1 if b wins, and 0 only for identical
// documents.
//
// Timestamp decides first. Ties fall back to the content hash and then the
// signature, so the ordering is total and every replica converges on the same
// winner.
func Compare(a, b Document) int {
	switch {
	case a.Timestamp > b.Timestamp:
		return 1
	case a.Timestamp < b.Timestamp:
		return -1
	}
	if c := strings.Compare(a.ContentHash, b.ContentHash); c != 0 {
		return c
	}
	return strings.Compare(a.Signature, b.Signature)
}

// Newer returns whichever of a and b wins under Compare.
func Newer(a, b Document) Document {
	if Compare(a, b) >= 0 {
		return a
	}
	return b
}
