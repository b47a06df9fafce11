// Package pub serves workspaces to syncing peers.
//
// A pub is a replica with no author of its own. It holds one document store
// per workspace, accepts any validly signed document under last-write-wins,
// and lists what it holds. The same Service is exposed over JSON HTTP and
// over gRPC.
package pub
