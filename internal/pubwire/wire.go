// Package pubwire defines the request and response shapes shared by pub
// servers and the sync engine's pub clients.
//
// Both transports carry the same JSON bodies. HTTP sends them as request and
// response bodies; gRPC wraps them in protobuf well-known wrapper types.
package pubwire

import (
	"net/url"

	"github.com/roach88/slimecats/internal/doc"
)

// APIPrefix is the root of the pub HTTP API.
const APIPrefix = "/earthstar-api/v1"

// ListRequest asks for the documents of a workspace under a path prefix.
type ListRequest struct {
	Workspace string `json:"workspace"`
	Prefix    string `json:"prefix,omitempty"`
}

// SubmitRequest offers documents to a pub.
type SubmitRequest struct {
	Workspace string         `json:"workspace"`
	Documents []doc.Document `json:"documents"`
}

// IngestResponse reports how many submitted documents the pub applied.
type IngestResponse struct {
	NumIngested int `json:"numIngested"`
}

// ErrorResponse is the body of a failed HTTP request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DocumentsPath is the HTTP path listing and accepting documents.
func DocumentsPath(workspace string) string {
	return APIPrefix + "/" + url.PathEscape(workspace) + "/documents"
}

// PathsPath is the HTTP path listing document paths.
func PathsPath(workspace string) string {
	return APIPrefix + "/" + url.PathEscape(workspace) + "/paths"
}
