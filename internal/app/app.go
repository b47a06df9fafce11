// Package app builds the objects one slimecats process works with.
//
// An App is constructed once at startup from a Config and passed to whatever
// needs it. It owns the store and the dialed pubs, and Close releases both.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/slimecats/internal/boxes"
	"github.com/roach88/slimecats/internal/config"
	"github.com/roach88/slimecats/internal/identity"
	"github.com/roach88/slimecats/internal/pubsync"
	"github.com/roach88/slimecats/internal/store"
	"github.com/roach88/slimecats/internal/todo"
)

// App is the process-wide context: one workspace, one author, one peer list.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Store  *store.Store
	Todos  *todo.Codec
	Boxes  *boxes.Counter
	Syncer *pubsync.Syncer
	Pubs   []pubsync.Pub

	signer identity.Signer
}

type options struct {
	logger    *slog.Logger
	dialer    *pubsync.Dialer
	storeOpts []store.Option
	todoOpts  []todo.Option
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger passed to every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDialer sets the dialer used for configured peers.
func WithDialer(d *pubsync.Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithStoreOptions passes options through to the store.
func WithStoreOptions(opts ...store.Option) Option {
	return func(o *options) { o.storeOpts = append(o.storeOpts, opts...) }
}

// WithTodoOptions passes options through to the todo codec.
func WithTodoOptions(opts ...todo.Option) Option {
	return func(o *options) { o.todoOpts = append(o.todoOpts, opts...) }
}

// New opens the store, parses the author keypair when one is configured, and
// dials the peers. Without a keypair the App can read and sync but every
// write fails with config.ErrNoAuthor.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	o := options{logger: slog.Default(), dialer: &pubsync.Dialer{}}
	for _, opt := range opts {
		opt(&o)
	}

	var signer identity.Signer = noAuthor{}
	if cfg.HasAuthor() {
		s, err := identity.ParseKeypair(identity.Keypair{Address: cfg.Author.Address, Secret: cfg.Author.Secret})
		if err != nil {
			return nil, fmt.Errorf("author keypair: %w", err)
		}
		signer = s
	}

	storeOpts := append([]store.Option{store.WithLogger(o.logger)}, o.storeOpts...)
	st, err := store.Open(cfg.Database, cfg.Workspace, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	pubs, err := o.dialer.DialAll(cfg.Peers)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("dial peers: %w", err)
	}

	a := &App{
		Config: cfg,
		Logger: o.logger,
		Store:  st,
		Todos:  todo.NewCodec(st, signer, o.todoOpts...),
		Boxes:  boxes.NewCounter(st, signer),
		Syncer: pubsync.NewSyncer(st,
			pubsync.WithTimeout(cfg.Sync.Timeout),
			pubsync.WithLogger(o.logger)),
		Pubs:   pubs,
		signer: signer,
	}
	o.logger.Debug("app ready",
		"workspace", cfg.Workspace,
		"database", cfg.Database,
		"author", signer.Address(),
		"peers", len(pubs))
	return a, nil
}

// Author is the configured author address, empty when there is none.
func (a *App) Author() string {
	return a.signer.Address()
}

// RequireAuthor fails with config.ErrNoAuthor when no keypair is configured.
func (a *App) RequireAuthor() error {
	if _, ok := a.signer.(noAuthor); ok {
		return config.ErrNoAuthor
	}
	return nil
}

// SyncAll syncs with every configured peer.
func (a *App) SyncAll(ctx context.Context) []pubsync.Result {
	return a.Syncer.SyncAll(ctx, a.Pubs)
}

// Scheduler returns a stopped scheduler over the configured peers.
func (a *App) Scheduler(opts ...pubsync.SchedulerOption) *pubsync.Scheduler {
	return pubsync.NewScheduler(a.Syncer, a.Pubs, a.Config.Sync.Interval, opts...)
}

// Close closes the pubs and then the store.
func (a *App) Close() error {
	var errs []error
	for _, p := range a.Pubs {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", p.URL(), err))
		}
	}
	if err := a.Store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// noAuthor stands in for a missing keypair.
type noAuthor struct{}

func (noAuthor) Address() string { return "" }

func (noAuthor) Sign([]byte) (string, error) { return "", config.ErrNoAuthor }
