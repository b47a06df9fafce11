// Package todo projects Todo records onto pairs of documents.
//
// Each field lives in its own document so two replicas can edit text and
// done-ness independently:
//
//	/todo/{id}/text.txt     the text
//	/todo/{id}/isDone.json  "true" or "false"
//
// The two documents sync independently, so a reader may see one without the
// other. Lookup applies the absence rule: no text means no todo; no isDone
// means not done.
package todo

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/roach88/slimecats/internal/doc"
	"github.com/roach88/slimecats/internal/identity"
	"github.com/roach88/slimecats/internal/store"
)

// Prefix is the path prefix shared by every todo document.
const Prefix = "/todo/"

const (
	textFile   = "text.txt"
	isDoneFile = "isDone.json"
)

// ErrAbsent means no todo exists for an id (its text document is missing).
var ErrAbsent = errors.New("todo: absent")

// Todo is the logical record. It is never stored as one unit.
type Todo struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	IsDone bool   `json:"isDone"`
}

// Scope filters ListIDs.
type Scope int

const (
	All Scope = iota
	Done
	Undone
)

func (s Scope) String() string {
	switch s {
	case Done:
		return "done"
	case Undone:
		return "undone"
	default:
		return "all"
	}
}

// TextPath is the path of the text document for id.
func TextPath(id string) string { return Prefix + id + "/" + textFile }

// IsDonePath is the path of the isDone document for id.
func IsDonePath(id string) string { return Prefix + id + "/" + isDoneFile }

// Codec reads and writes todos through a document store.
type Codec struct {
	store  *store.Store
	signer identity.Signer
	now    func() int64
	salt   func() int
}

// Option configures a Codec.
type Option func(*Codec)

// WithIDSource overrides the clock and salt used by MakeNew.
func WithIDSource(now func() int64, salt func() int) Option {
	return func(c *Codec) {
		c.now = now
		c.salt = salt
	}
}

// NewCodec creates a codec writing as signer.
func NewCodec(s *store.Store, signer identity.Signer, opts ...Option) *Codec {
	c := &Codec{
		store:  s,
		signer: signer,
		now:    doc.NowMicros,
		salt:   func() int { return 1_000_000 + rand.IntN(9_000_000) },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MakeNew returns an unsaved, not-done todo with a fresh id of the form
// {microseconds}-{7 digit salt}. The timestamp prefix makes ids sort in
// creation order; the salt keeps concurrent authors from colliding.
func (c *Codec) MakeNew(text string) Todo {
	return Todo{
		ID:   fmt.Sprintf("%d-%07d", c.now(), c.salt()),
		Text: text,
	}
}

// Save writes the text and isDone documents. The two writes are not atomic;
// a reader in between sees a mix of old and new fields, which the absence
// rule already tolerates. Both errors are reported.
func (c *Codec) Save(ctx context.Context, t Todo) error {
	if err := validateID(t.ID); err != nil {
		return err
	}
	_, textErr := c.store.Put(ctx, c.signer, TextPath(t.ID), t.Text)
	_, doneErr := c.store.Put(ctx, c.signer, IsDonePath(t.ID), fmt.Sprint(t.IsDone))
	if err := errors.Join(textErr, doneErr); err != nil {
		return fmt.Errorf("save todo %s: %w", t.ID, err)
	}
	return nil
}

// Lookup reconstructs the todo for id, or returns ErrAbsent.
func (c *Codec) Lookup(ctx context.Context, id string) (Todo, error) {
	text, ok, err := c.store.Content(ctx, TextPath(id))
	if err != nil {
		return Todo{}, fmt.Errorf("lookup todo %s: %w", id, err)
	}
	if !ok {
		return Todo{}, fmt.Errorf("lookup todo %s: %w", id, ErrAbsent)
	}

	isDone, ok, err := c.store.Content(ctx, IsDonePath(id))
	if err != nil {
		return Todo{}, fmt.Errorf("lookup todo %s: %w", id, err)
	}
	return Todo{ID: id, Text: text, IsDone: ok && isDone == "true"}, nil
}

// ListIDs returns todo ids in path order, which is creation order. Done and
// Undone reconstruct every candidate, so the cost is linear in the total
// number of todos whatever the scope.
func (c *Codec) ListIDs(ctx context.Context, scope Scope) ([]string, error) {
	paths, err := c.store.Query(ctx, Prefix)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	ids := []string{}
	for _, p := range paths {
		id, ok := idFromTextPath(p)
		if !ok {
			continue
		}
		if scope == All {
			ids = append(ids, id)
			continue
		}
		t, err := c.Lookup(ctx, id)
		if errors.Is(err, ErrAbsent) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if t.IsDone == (scope == Done) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Nth returns the n-th (1-based) todo of a listing.
func (c *Codec) Nth(ctx context.Context, scope Scope, n int) (Todo, error) {
	ids, err := c.ListIDs(ctx, scope)
	if err != nil {
		return Todo{}, err
	}
	if n < 1 || n > len(ids) {
		return Todo{}, fmt.Errorf("todo #%d of %d %s: %w", n, len(ids), scope, ErrAbsent)
	}
	return c.Lookup(ctx, ids[n-1])
}

// List reconstructs every todo in scope, in listing order. A record whose
// text vanishes between listing and lookup is skipped.
func (c *Codec) List(ctx context.Context, scope Scope) ([]Todo, error) {
	ids, err := c.ListIDs(ctx, scope)
	if err != nil {
		return nil, err
	}
	todos := make([]Todo, 0, len(ids))
	for _, id := range ids {
		t, err := c.Lookup(ctx, id)
		if errors.Is(err, ErrAbsent) {
			continue
		}
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, nil
}

// MarkDone sets isDone on an existing todo.
func (c *Codec) MarkDone(ctx context.Context, id string) (Todo, error) {
	t, err := c.Lookup(ctx, id)
	if err != nil {
		return Todo{}, err
	}
	t.IsDone = true
	if err := c.Save(ctx, t); err != nil {
		return Todo{}, err
	}
	return t, nil
}

// idFromTextPath extracts {id} from /todo/{id}/text.txt.
func idFromTextPath(p string) (string, bool) {
	rest, ok := strings.CutPrefix(p, Prefix)
	if !ok {
		return "", false
	}
	id, file, ok := strings.Cut(rest, "/")
	if !ok || file != textFile || id == "" {
		return "", false
	}
	return id, true
}

func validateID(id string) error {
	if id == "" || strings.Contains(id, "/") {
		return fmt.Errorf("%w: todo id %q", store.ErrInvalidWrite, id)
	}
	return nil
}
