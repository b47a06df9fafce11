package pubsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/roach88/slimecats/internal/doc"
	"github.com/roach88/slimecats/internal/pubwire"
)

// maxResponseBytes caps how much of a pub response is read.
const maxResponseBytes = 64 << 20

// HTTPPub talks to a pub over its JSON HTTP API.
type HTTPPub struct {
	base   string
	client *http.Client
}

// NewHTTPPub creates a client for the pub rooted at base.
func NewHTTPPub(base string, client *http.Client) *HTTPPub {
	return &HTTPPub{base: strings.TrimSuffix(base, "/"), client: client}
}

func (p *HTTPPub) URL() string { return p.base }

func (p *HTTPPub) ListDocuments(ctx context.Context, workspace, prefix string) ([]doc.Document, error) {
	endpoint := p.base + pubwire.DocumentsPath(workspace)
	if prefix != "" {
		endpoint += "?" + url.Values{"prefix": {prefix}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", p.base, err)
	}

	var docs []doc.Document
	if err := p.do(req, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (p *HTTPPub) SubmitDocuments(ctx context.Context, workspace string, docs []doc.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	body, err := json.Marshal(docs)
	if err != nil {
		return 0, fmt.Errorf("submit %s: %w", p.base, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base+pubwire.DocumentsPath(workspace), bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("submit %s: %w", p.base, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp pubwire.IngestResponse
	if err := p.do(req, &resp); err != nil {
		return 0, err
	}
	return resp.NumIngested, nil
}

func (p *HTTPPub) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func (p *HTTPPub) do(req *http.Request, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return classify(req.Context(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return classify(req.Context(), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e pubwire.ErrorResponse
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("%w: %s %s: %d %s", ErrMalformedResponse, req.Method, req.URL.Path, resp.StatusCode, e.Error)
		}
		return fmt.Errorf("%w: %s %s: status %d", ErrMalformedResponse, req.Method, req.URL.Path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrMalformedResponse, req.Method, req.URL.Path, err)
	}
	return nil
}
