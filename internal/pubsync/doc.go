// Package pubsync reconciles a local document store against remote pubs.
//
// A sync cycle against one pub lists the pub's documents, merges each into
// the local store, then pushes every local document the pub is missing or
// holds an older version of. Conflicts are resolved entirely by the store's
// last-write-wins rule; pubsync never looks inside document content.
//
// SyncAll fans out to every configured pub concurrently. A failing or slow
// pub produces a failed Result for itself only. A Scheduler repeats SyncAll
// on an interval until stopped.
//
// Pubs are reached through the Pub interface. Dial picks an implementation
// from the peer URL:
//
//	http://host:port, https://host   JSON over HTTP
//	grpc://host:port                 gRPC
//	local:name                       an in-process store registered on the Dialer
package pubsync
