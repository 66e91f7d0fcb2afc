package ingest

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dbsmedya/relgraph/internal/config"
	"github.com/dbsmedya/relgraph/internal/extract"
	"github.com/dbsmedya/relgraph/internal/logger"
	"github.com/dbsmedya/relgraph/internal/store"
	"github.com/dbsmedya/relgraph/internal/types"
)

// MaxRecordedFailures caps the per-record failures kept in Stats.
const MaxRecordedFailures = 100

// Failure describes one skipped record.
type Failure struct {
	Line   int    `json:"line"`
	Record int64  `json:"record,omitempty"`
	Error  string `json:"error"`
}

// Stats summarizes a load.
type Stats struct {
	Records   int64         `json:"records"`
	Edges     int64         `json:"edges"`
	Entities  int64         `json:"entities"`
	Batches   int64         `json:"batches"`
	Malformed int64         `json:"malformed"`
	Failures  []Failure     `json:"failures,omitempty"`
	Duration  time.Duration `json:"duration"`
}

type counters struct {
	records, edges, entities, batches, malformed atomic.Int64

	mu       sync.Mutex
	failures []Failure
}

func (c *counters) fail(f Failure) {
	c.malformed.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.failures) < MaxRecordedFailures {
		c.failures = append(c.failures, f)
	}
}

func (c *counters) stats(start time.Time) *Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &Stats{
		Records:   c.records.Load(),
		Edges:     c.edges.Load(),
		Entities:  c.entities.Load(),
		Batches:   c.batches.Load(),
		Malformed: c.malformed.Load(),
		Failures:  c.failures,
		Duration:  time.Since(start),
	}
}

// Loader runs a fixed pool of workers that extract records from a bounded
// queue and write their edges to the store in batches.
type Loader struct {
	extractor *extract.Extractor
	store     store.Writer
	workers   int
	batchSize int
	queueSize int
	logger    *logger.Logger
}

// NewLoader creates a loader writing to w.
func NewLoader(x *extract.Extractor, w store.Writer, cfg *config.IngestConfig, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.NewNop()
	}
	return &Loader{
		extractor: x,
		store:     w,
		workers:   max(1, cfg.Workers),
		batchSize: max(1, cfg.BatchSize),
		queueSize: max(0, cfg.QueueSize),
		logger:    log,
	}
}

// LoadReleases extracts and stores every release of feed. Malformed releases
// are counted and skipped; a store error stops the load.
func (l *Loader) LoadReleases(ctx context.Context, feed *Feed[types.ReleaseRecord]) (*Stats, error) {
	return run(ctx, l, feed, "release", func(rec *types.ReleaseRecord) (int64, []types.RelationEdge, []types.Entity, error) {
		edges, err := l.extractor.Extract(rec)
		if err != nil {
			return rec.ID, nil, nil, err
		}
		return rec.ID, edges, extract.Entities(rec), nil
	})
}

// LoadEntities stores artist and label records and their structural edges.
func (l *Loader) LoadEntities(ctx context.Context, feed *Feed[types.EntityRecord]) (*Stats, error) {
	return run(ctx, l, feed, "entity", func(rec *types.EntityRecord) (int64, []types.RelationEdge, []types.Entity, error) {
		edges, err := l.extractor.ExtractEntity(rec)
		if err != nil {
			return rec.ID, nil, nil, err
		}
		return rec.ID, edges, []types.Entity{rec.Entity()}, nil
	})
}

type job[T any] struct {
	line int
	rec  *T
}

type handler[T any] func(rec *T) (id int64, edges []types.RelationEdge, entities []types.Entity, err error)

// batch accumulates one worker's pending writes.
type batch struct {
	edges    []types.RelationEdge
	entities []types.Entity
}

func isMalformed(err error) bool {
	return errors.Is(err, extract.ErrMalformedRelease) || errors.Is(err, extract.ErrMalformedEntity)
}

func run[T any](ctx context.Context, l *Loader, feed *Feed[T], kind string, handle handler[T]) (*Stats, error) {
	start := time.Now()
	c := &counters{}
	queue := make(chan job[T], l.queueSize)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers + 1)

	l.logger.Infow("Load started", "kind", kind, "workers", l.workers, "batch_size", l.batchSize)

	g.Go(func() error {
		defer close(queue)
		for {
			rec, err := feed.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			var decodeErr *DecodeError
			if errors.As(err, &decodeErr) {
				c.fail(Failure{Line: decodeErr.Line, Error: decodeErr.Err.Error()})
				l.logger.Warnw("Skipping undecodable record", "kind", kind, "line", decodeErr.Line, "error", decodeErr.Err)
				continue
			}
			if err != nil {
				return err
			}
			select {
			case queue <- job[T]{line: feed.Line(), rec: rec}:
			case <-gCtx.Done():
				return gCtx.Err()
			}
		}
	})

	for w := 1; w <= l.workers; w++ {
		log := l.logger.WithWorker(w)
		g.Go(func() error {
			b := &batch{}
			for j := range queue {
				if err := gCtx.Err(); err != nil {
					return err
				}
				id, edges, entities, err := handle(j.rec)
				if err != nil {
					if !isMalformed(err) {
						return err
					}
					c.fail(Failure{Line: j.line, Record: id, Error: err.Error()})
					log.Warnw("Skipping malformed record", "kind", kind, "line", j.line, "id", id, "error", err)
					continue
				}
				c.records.Add(1)
				b.edges = append(b.edges, edges...)
				b.entities = append(b.entities, entities...)
				if len(b.edges)+len(b.entities) >= l.batchSize {
					if err := l.flush(gCtx, b, c, log); err != nil {
						return err
					}
				}
			}
			return l.flush(gCtx, b, c, log)
		})
	}

	err := g.Wait()
	stats := c.stats(start)
	if err != nil {
		l.logger.Errorw("Load failed", "kind", kind, "records", stats.Records, "error", err)
		return stats, err
	}
	l.logger.Infow("Load finished",
		"kind", kind,
		"records", stats.Records,
		"edges", stats.Edges,
		"malformed", stats.Malformed,
		"duration", stats.Duration.String())
	return stats, nil
}

// flush writes and clears a worker's batch.
func (l *Loader) flush(ctx context.Context, b *batch, c *counters, log *logger.Logger) error {
	if len(b.edges) == 0 && len(b.entities) == 0 {
		return nil
	}
	if len(b.entities) > 0 {
		if err := l.store.PutEntities(ctx, b.entities); err != nil {
			return err
		}
	}
	if len(b.edges) > 0 {
		if err := l.store.PutEdges(ctx, b.edges); err != nil {
			return err
		}
	}
	c.edges.Add(int64(len(b.edges)))
	c.entities.Add(int64(len(b.entities)))
	batches := c.batches.Add(1)
	log.Debugw("Batch flushed", "edges", len(b.edges), "entities", len(b.entities), "batch", batches)

	b.edges = b.edges[:0]
	b.entities = b.entities[:0]
	return nil
}
