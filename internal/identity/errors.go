package identity

import "errors"

var (
	ErrInvalidAddress = errors.New("identity: invalid author address")
	ErrInvalidSecret  = errors.New("identity: invalid author secret")
	ErrKeyMismatch    = errors.New("identity: secret does not match address")
	ErrBadSignature   = errors.New("identity: signature does not verify")
	ErrUnknownScheme  = errors.New("identity: unknown signature scheme")
)
