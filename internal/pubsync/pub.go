package pubsync

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/roach88/slimecats/internal/doc"
)

// Pub is a remote replica speaking the sync protocol.
//
// ListDocuments returns the pub's current documents under prefix, ordered by
// path. SubmitDocuments offers documents and returns how many the pub
// applied; resubmitting a document the pub already holds is not an error.
type Pub interface {
	URL() string
	ListDocuments(ctx context.Context, workspace, prefix string) ([]doc.Document, error)
	SubmitDocuments(ctx context.Context, workspace string, docs []doc.Document) (int, error)
	Close() error
}

// Dialer turns peer URLs into Pubs.
type Dialer struct {
	// HTTPClient is used for http and https peers. Nil means a client with
	// no overall timeout; the sync cycle deadline bounds each request.
	HTTPClient *http.Client

	// GRPCOptions are appended to the default insecure transport options.
	GRPCOptions []grpc.DialOption

	mu    sync.Mutex
	local map[string]Pub
}

// RegisterLocal makes p reachable as "local:name".
func (d *Dialer) RegisterLocal(name string, p Pub) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.local == nil {
		d.local = make(map[string]Pub)
	}
	d.local[name] = p
}

// Dial returns a Pub for peerURL. No network traffic happens until the Pub
// is used, so an unreachable peer surfaces on the first sync, not here.
func (d *Dialer) Dial(peerURL string) (Pub, error) {
	u, err := url.Parse(peerURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnsupportedPeer, peerURL, err)
	}

	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return nil, fmt.Errorf("%w: %q has no host", ErrUnsupportedPeer, peerURL)
		}
		client := d.HTTPClient
		if client == nil {
			client = &http.Client{}
		}
		return NewHTTPPub(peerURL, client), nil

	case "grpc":
		if u.Host == "" {
			return nil, fmt.Errorf("%w: %q has no host", ErrUnsupportedPeer, peerURL)
		}
		opts := append([]grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		}, d.GRPCOptions...)
		cc, err := grpc.NewClient(u.Host, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrUnsupportedPeer, peerURL, err)
		}
		return newGRPCPub(peerURL, cc, cc.Close), nil

	case "local":
		name := u.Opaque
		if name == "" {
			name = u.Host
		}
		d.mu.Lock()
		p, ok := d.local[name]
		d.mu.Unlock()
		if !ok {
			return nil, fmt.Errorf("%w: no local pub %q", ErrUnsupportedPeer, name)
		}
		return p, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPeer, peerURL)
	}
}

// Dial uses a zero Dialer.
func Dial(peerURL string) (Pub, error) {
	var d Dialer
	return d.Dial(peerURL)
}

// DialAll dials every peer, closing the ones already dialed on failure.
func (d *Dialer) DialAll(peerURLs []string) ([]Pub, error) {
	pubs := make([]Pub, 0, len(peerURLs))
	for _, peer := range peerURLs {
		p, err := d.Dial(peer)
		if err != nil {
			CloseAll(pubs)
			return nil, err
		}
		pubs = append(pubs, p)
	}
	return pubs, nil
}

// CloseAll closes every pub, ignoring errors.
func CloseAll(pubs []Pub) {
	for _, p := range pubs {
		_ = p.Close()
	}
}
