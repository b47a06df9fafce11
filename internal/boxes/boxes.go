// Package boxes tracks what has been put in the slimecat's cardboard boxes.
//
// The whole label -> count mapping is one JSON document. Increment is a
// read-modify-write with no compare-and-swap, so two concurrent increments can
// lose one: last write wins for the whole document, not per label.
package boxes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/slimecats/internal/identity"
	"github.com/roach88/slimecats/internal/store"
)

// Path holds the counter document.
const Path = "/slimecatsdo/boxes.json"

// DefaultLabel is used when no label is given.
const DefaultLabel = "treat"

// ErrBoxesFull means every available box already holds something.
var ErrBoxesFull = errors.New("boxes: all boxes are full")

// Counter reads and writes the boxes document.
type Counter struct {
	store  *store.Store
	signer identity.Signer
}

// NewCounter creates a counter writing as signer.
func NewCounter(s *store.Store, signer identity.Signer) *Counter {
	return &Counter{store: s, signer: signer}
}

// Read returns the current counts. A missing document is an empty mapping.
func (c *Counter) Read(ctx context.Context) (map[string]int, error) {
	content, ok, err := c.store.Content(ctx, Path)
	if err != nil {
		return nil, fmt.Errorf("read boxes: %w", err)
	}
	counts := map[string]int{}
	if !ok || content == "" {
		return counts, nil
	}
	if err := json.Unmarshal([]byte(content), &counts); err != nil {
		return nil, fmt.Errorf("read boxes: malformed %s: %w", Path, err)
	}
	return counts, nil
}

// Increment adds one to label, creating it at 1.
func (c *Counter) Increment(ctx context.Context, label string) error {
	if label == "" {
		label = DefaultLabel
	}
	counts, err := c.Read(ctx)
	if err != nil {
		return err
	}
	counts[label]++

	// encoding/json sorts map keys, so equal counts give equal content.
	data, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("increment %s: %w", label, err)
	}
	if _, err := c.store.Put(ctx, c.signer, Path, string(data)); err != nil {
		return fmt.Errorf("increment %s: %w", label, err)
	}
	return nil
}

// Total is the sum of all counts.
func (c *Counter) Total(ctx context.Context) (int, error) {
	counts, err := c.Read(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}

// Put increments label only while fewer than capacity things are boxed.
func (c *Counter) Put(ctx context.Context, label string, capacity int) error {
	total, err := c.Total(ctx)
	if err != nil {
		return err
	}
	if total >= capacity {
		return fmt.Errorf("%w: %d of %d filled", ErrBoxesFull, total, capacity)
	}
	return c.Increment(ctx, label)
}

// Labels returns the labels in sorted order.
func Labels(counts map[string]int) []string {
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}
