package exports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/labeler/internal/evidences"
	"github.com/JaimeStill/labeler/internal/relations"
	"github.com/JaimeStill/labeler/pkg/formatting"
	"github.com/JaimeStill/labeler/pkg/storage"
)

type exporter struct {
	relations   RelationSource
	evidences   EvidenceSource
	store       storage.System
	logger      *slog.Logger
	concurrency int
}

// New creates an export system. concurrency bounds ExportAll; values below 1 run one export at a time.
func New(rels RelationSource, evs EvidenceSource, store storage.System, logger *slog.Logger, concurrency int) System {
	return &exporter{
		relations:   rels,
		evidences:   evs,
		store:       store,
		logger:      logger.With("system", "exports"),
		concurrency: max(concurrency, 1),
	}
}

func (e *exporter) Handler() *Handler {
	return NewHandler(e, e.logger)
}

func (e *exporter) Export(ctx context.Context, relationID int64) (*Export, error) {
	rel, err := e.relations.Find(ctx, relationID)
	if err != nil {
		return nil, err
	}
	return e.write(ctx, rel)
}

func (e *exporter) ExportAll(ctx context.Context) ([]Export, error) {
	all, err := e.relations.All(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Export, len(all))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range all {
		g.Go(func() error {
			exp, err := e.write(gctx, &all[i])
			if err != nil {
				return err
			}
			out[i] = *exp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// write streams the relation's records into the upload through a pipe.
func (e *exporter) write(ctx context.Context, rel *relations.Relation) (*Export, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate export id: %w", err)
	}

	exp := &Export{
		ID:         id,
		RelationID: rel.ID,
		Relation:   rel.Name,
		Key:        Key(rel.ID, id),
		CreatedAt:  time.Now().UTC(),
	}

	pr, pw := io.Pipe()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		enc := json.NewEncoder(&countingWriter{w: pw, n: &exp.Size})
		err := e.evidences.EachLabeled(gctx, rel.ID, func(ev evidences.Evidence) error {
			exp.Records++
			return enc.Encode(NewRecord(rel, ev))
		})
		pw.CloseWithError(err)
		return err
	})

	g.Go(func() error {
		err := e.store.Upload(gctx, exp.Key, pr, ContentType)
		pr.CloseWithError(err)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("export relation %d: %w", rel.ID, err)
	}

	e.logger.Info(
		"export written",
		"relation_id", rel.ID,
		"key", exp.Key,
		"records", exp.Records,
		"size", formatting.FormatBytes(exp.Size, 1),
	)
	return exp, nil
}

type countingWriter struct {
	w io.Writer
	n *int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	*c.n += int64(n)
	return n, err
}
