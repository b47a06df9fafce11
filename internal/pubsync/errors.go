package pubsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/slimecats/internal/store"
)

var (
	// ErrPeerUnreachable means the pub could not be contacted.
	ErrPeerUnreachable = errors.New("pubsync: peer unreachable")

	// ErrPeerTimeout means the pub did not answer before the cycle deadline.
	ErrPeerTimeout = errors.New("pubsync: peer timed out")

	// ErrMalformedResponse means the pub answered with something that is not
	// a valid reply.
	ErrMalformedResponse = errors.New("pubsync: malformed response")

	// ErrSyncInProgress means a cycle against the same pub is still running.
	ErrSyncInProgress = errors.New("pubsync: sync already in progress")

	// ErrUnsupportedPeer means a peer URL names no known transport.
	ErrUnsupportedPeer = errors.New("pubsync: unsupported peer url")
)

// classify maps a transport failure onto the sync error taxonomy. Errors
// already carrying a pubsync sentinel pass through unchanged, as do local
// store failures, which are not the peer's fault.
func classify(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrPeerTimeout),
		errors.Is(err, ErrPeerUnreachable),
		errors.Is(err, ErrMalformedResponse),
		errors.Is(err, ErrSyncInProgress),
		errors.Is(err, store.ErrStoreClosed),
		errors.Is(err, store.ErrInvalidWrite):
		return err
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrPeerTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrPeerUnreachable, err)
	}
}
