package pub

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/slimecats/internal/doc"
	"github.com/roach88/slimecats/internal/store"
)

// Service implements the sync protocol over a Registry.
type Service struct {
	registry *Registry
	logger   *slog.Logger
}

// NewService creates a Service. A nil logger means slog.Default().
func NewService(r *Registry, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{registry: r, logger: logger}
}

// List returns the documents under prefix, ordered by path.
func (s *Service) List(ctx context.Context, workspace, prefix string) ([]doc.Document, error) {
	st, err := s.registry.Store(workspace)
	if err != nil {
		return nil, err
	}
	return st.Documents(ctx, prefix)
}

// Paths returns the document paths under prefix.
func (s *Service) Paths(ctx context.Context, workspace, prefix string) ([]string, error) {
	st, err := s.registry.Store(workspace)
	if err != nil {
		return nil, err
	}
	return st.Query(ctx, prefix)
}

// Ingest merges docs and returns how many replaced what the pub held.
// Documents failing verification are skipped; the rest of the batch is
// still applied.
func (s *Service) Ingest(ctx context.Context, workspace string, docs []doc.Document) (int, error) {
	st, err := s.registry.Store(workspace)
	if err != nil {
		return 0, err
	}

	n, rejected := 0, 0
	for _, d := range docs {
		applied, err := st.Merge(ctx, d)
		if errors.Is(err, store.ErrInvalidSignature) {
			rejected++
			s.logger.Debug("rejected document", "workspace", workspace, "path", d.Path, "error", err)
			continue
		}
		if err != nil {
			return n, err
		}
		if applied {
			n++
		}
	}
	if rejected > 0 {
		s.logger.Info("ingest rejected documents", "workspace", workspace, "rejected", rejected)
	}
	return n, nil
}
