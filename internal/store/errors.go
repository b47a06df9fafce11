package store

import "errors"

var (
	ErrNotFound         = errors.New("store: not found")
	ErrStoreClosed      = errors.New("store: closed")
	ErrInvalidWrite     = errors.New("store: invalid write")
	ErrInvalidSignature = errors.New("store: invalid signature")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
