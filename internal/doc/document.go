package doc

import (
	"fmt"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Format is the only document format this package produces and accepts.
const Format = "es.4"

const (
	// MinTimestamp rejects timestamps that are plainly milliseconds or seconds.
	MinTimestamp int64 = 10_000_000_000_000

	// FutureCutoff is how far ahead of the local clock a timestamp may be.
	FutureCutoff = 10 * time.Minute
)

// Document is a signed, timestamped (path, content) record.
type Document struct {
	Format      string `json:"format"`
	Workspace   string `json:"workspace"`
	Path        string `json:"path"`
	ContentHash string `json:"contentHash"`
	Content     string `json:"content"`
	Author      string `json:"author"`
	Timestamp   int64  `json:"timestamp"`
	Signature   string `json:"signature"`
}

// NowMicros returns the current time in microseconds since the epoch.
func NowMicros() int64 {
	return time.Now().UnixMicro()
}

// NormalizeContent puts content into NFC so equal text hashes equally.
func NormalizeContent(content string) string {
	return norm.NFC.String(content)
}

// CheckFields validates everything except the signature. now is the local
// clock in microseconds and bounds the timestamp from above.
func (d Document) CheckFields(now int64) error {
	if d.Format != Format {
		return fmt.Errorf("%w: unsupported format %q", ErrInvalidDocument, d.Format)
	}
	if err := ValidateWorkspace(d.Workspace); err != nil {
		return err
	}
	if err := ValidatePath(d.Path); err != nil {
		return err
	}
	if d.Author == "" {
		return fmt.Errorf("%w: missing author", ErrInvalidDocument)
	}
	if d.Signature == "" {
		return fmt.Errorf("%w: missing signature", ErrInvalidDocument)
	}
	if d.Timestamp < MinTimestamp {
		return fmt.Errorf("%w: timestamp %d is not in microseconds", ErrInvalidDocument, d.Timestamp)
	}
	if d.Timestamp > now+FutureCutoff.Microseconds() {
		return fmt.Errorf("%w: %d", ErrTimestampInFuture, d.Timestamp)
	}
	if !utf8.ValidString(d.Content) {
		return fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidDocument)
	}
	if !norm.NFC.IsNormalString(d.Content) {
		return fmt.Errorf("%w: content is not NFC normalized", ErrInvalidDocument)
	}
	hash, err := ContentHash(d.Content)
	if err != nil {
		return err
	}
	if hash != d.ContentHash {
		return fmt.Errorf("%w: content hash mismatch", ErrInvalidDocument)
	}
	return nil
}
