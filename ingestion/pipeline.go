package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"

	"github.com/poiesic/packvault/ai"
	"github.com/poiesic/packvault/catalog"
	"github.com/poiesic/packvault/compose"
	"github.com/poiesic/packvault/core"
	"github.com/poiesic/packvault/manifest"
	"github.com/poiesic/packvault/storage"
)

const (
	// DefaultPoolSize keeps concurrent catalog and embedding calls polite.
	DefaultPoolSize = 5

	// DefaultSnapshotLimit caps the dedup snapshot query.
	DefaultSnapshotLimit = 10000
)

// Pipeline fetches, composes, embeds and publishes the components of a pack,
// skipping documents the store already holds.
type Pipeline struct {
	fetcher   *catalog.Fetcher
	publisher *Publisher
	store     storage.VectorStore
	pool      *ants.Pool

	poolSize         int
	dispatchInterval time.Duration
	snapshotFilter   storage.Filter
	snapshotLimit    int
	overrideLimit    int
	referenceLimit   int
	progress         func(RunStats)
	logger           *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the number of references processed concurrently.
// Default is DefaultPoolSize; sizes below 1 become 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.poolSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithDispatchInterval spaces out dispatches to the pool by at least d,
// independent of pool size. Zero disables throttling.
func WithDispatchInterval(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d < 0 {
			return fmt.Errorf("dispatch interval cannot be negative: %s", d)
		}
		p.dispatchInterval = d
		return nil
	}
}

// WithSnapshotLimit caps how many stored documents the dedup snapshot reads.
func WithSnapshotLimit(limit int) Option {
	return func(p *Pipeline) error {
		if limit < 1 {
			return fmt.Errorf("snapshot limit must be positive: %d", limit)
		}
		p.snapshotLimit = limit
		return nil
	}
}

// WithSnapshotFilter restricts the dedup snapshot to matching documents.
func WithSnapshotFilter(filter storage.Filter) Option {
	return func(p *Pipeline) error {
		p.snapshotFilter = filter
		return nil
	}
}

// WithProgress registers fn to receive a stats snapshot after every
// completed reference. Calls are serialized.
func WithProgress(fn func(RunStats)) Option {
	return func(p *Pipeline) error {
		p.progress = fn
		return nil
	}
}

// WithOverrideLimit caps the override scripts RunPack publishes.
// Zero publishes all of them; a negative limit skips overrides.
func WithOverrideLimit(limit int) Option {
	return func(p *Pipeline) error {
		p.overrideLimit = limit
		return nil
	}
}

// WithReferenceLimit makes RunPack process only the first limit references
// of a manifest. The pack overview is still composed from the whole
// manifest. Zero or less processes every reference.
func WithReferenceLimit(limit int) Option {
	return func(p *Pipeline) error {
		p.referenceLimit = limit
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	fetcher *catalog.Fetcher,
	embedder ai.Embedder,
	store storage.VectorStore,
	opts ...Option,
) (*Pipeline, error) {
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	p := &Pipeline{
		fetcher:       fetcher,
		store:         store,
		poolSize:      DefaultPoolSize,
		snapshotLimit: DefaultSnapshotLimit,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	publisher, err := NewPublisher(embedder, store, p.logger)
	if err != nil {
		return nil, err
	}
	p.publisher = publisher

	// Workers recover their own panics; the handler only catches what escapes them.
	pool, err := ants.NewPool(p.poolSize,
		ants.WithPanicHandler(func(r any) {
			p.logger.Error("worker panic escaped reference handling", "panic", r)
		}),
		ants.WithLogger(antsLogger{p.logger}),
	)
	if err != nil {
		return nil, err
	}
	p.pool = pool

	return p, nil
}

// Run snapshots the store once, then processes every reference on the pool
// and returns when all of them reached a terminal state. The returned stats
// always account for every reference. Run fails only when the pool refuses work.
func (p *Pipeline) Run(ctx context.Context, refs []core.ComponentReference, pack core.PackContext) (RunStats, error) {
	start := time.Now()
	index := p.snapshot(ctx)

	rs, err := p.run(ctx, refs, pack, index)
	rs.Duration = time.Since(start)
	return rs, err
}

// RunPack runs the manifest's references, then publishes the pack overview
// and, when archive is not nil, its KubeJS overrides. All three phases share
// one dedup snapshot.
func (p *Pipeline) RunPack(ctx context.Context, m *core.Manifest, archive *manifest.Archive) (RunStats, error) {
	if m == nil {
		return RunStats{}, ErrManifestRequired
	}
	start := time.Now()
	pack := m.Pack()
	index := p.snapshot(ctx)

	refs := m.References
	if p.referenceLimit > 0 && p.referenceLimit < len(refs) {
		refs = refs[:p.referenceLimit]
	}
	rs, err := p.run(ctx, refs, pack, index)
	if err != nil {
		rs.Duration = time.Since(start)
		return rs, err
	}

	proc := p.newProcessor(index, nil)
	rs.PackDocuments.record(proc.processDocument(ctx, compose.PackOverview(m)))

	if archive != nil && p.overrideLimit >= 0 {
		overrides, err := archive.Overrides(p.overrideLimit)
		if err != nil {
			p.logger.Warn("some override scripts could not be read", "err", err)
		}
		for _, o := range overrides {
			rs.OverrideDocuments.record(proc.processDocument(ctx, compose.Override(pack, o)))
		}
	}

	rs.Duration = time.Since(start)
	p.logger.Info("pack ingested", "pack", pack.Name, "version", pack.Version, "stats", rs.String(),
		"pack_documents", rs.PackDocuments.String(), "overrides", rs.OverrideDocuments.String())
	return rs, nil
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// snapshot never fails the run: without an index every document is
// republished, which upsert-by-id tolerates.
func (p *Pipeline) snapshot(ctx context.Context) *DedupIndex {
	index, err := Snapshot(ctx, p.store, p.snapshotFilter, p.snapshotLimit, p.logger)
	if err != nil {
		p.logger.Error("dedup snapshot failed, continuing with an empty index", "err", err)
		return NewDedupIndex()
	}
	return index
}

func (p *Pipeline) newProcessor(index *DedupIndex, order []string) *processor {
	return &processor{
		fetcher:   p.fetcher,
		publisher: p.publisher,
		index:     index,
		order:     order,
		logger:    p.logger,
	}
}

func (p *Pipeline) run(ctx context.Context, refs []core.ComponentReference, pack core.PackContext, index *DedupIndex) (RunStats, error) {
	var (
		stats      Stats
		wg         sync.WaitGroup
		progressMu sync.Mutex
	)

	proc := p.newProcessor(index, p.fetcher.Order(pack.Origin))

	var limiter *rate.Limiter
	if p.dispatchInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(p.dispatchInterval), 1)
	}

	p.logger.Info("processing references", "references", len(refs), "workers", p.poolSize, "known_documents", index.Len())

	for i, ref := range refs {
		if limiter != nil {
			// A canceled context stops throttling; workers then fail fast.
			_ = limiter.Wait(ctx)
		}

		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			stats.record(proc.process(ctx, ref))
			if p.progress != nil {
				progressMu.Lock()
				p.progress(stats.Snapshot())
				progressMu.Unlock()
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return stats.Snapshot(), fmt.Errorf("dispatching reference %d of %d: %w", i+1, len(refs), err)
		}
	}

	wg.Wait()
	rs := stats.Snapshot()
	p.logger.Info("references processed", "stats", rs.String())
	return rs, nil
}

// antsLogger routes ants' internal messages through slog.
type antsLogger struct {
	logger *slog.Logger
}

func (l antsLogger) Printf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...), "source", "ants")
}

var _ ants.Logger = antsLogger{}

