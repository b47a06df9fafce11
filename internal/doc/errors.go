package doc

import "errors"

var (
	ErrInvalidPath       = errors.New("doc: invalid path")
	ErrInvalidWorkspace  = errors.New("doc: invalid workspace")
	ErrInvalidDocument   = errors.New("doc: invalid document")
	ErrTimestampInFuture = errors.New("doc: timestamp too far in the future")
	ErrInvalidSignature  = errors.New("doc: invalid signature")
)
