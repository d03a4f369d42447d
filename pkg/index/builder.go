// ABOUTME: Index builder with bounded worker pool and transactional batches
// ABOUTME: Builds into a fresh location and swaps atomically on success

package index

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blevesearch/bleve/v2"

	"github.com/nainya/helpindex/internal/logger"
	"github.com/nainya/helpindex/internal/metrics"
	"github.com/nainya/helpindex/pkg/doctree"
	"github.com/nainya/helpindex/pkg/extract"
)

var (
	// ErrRebuildInProgress indicates a concurrent rebuild was rejected
	ErrRebuildInProgress = errors.New("index: rebuild already in progress")
)

// Default orchestration parameters
const (
	DefaultWorkers       = 8
	DefaultBatchSize     = 1000
	DefaultProgressEvery = 5000
)

// Builder performs full index rebuilds. Extraction of page HTML runs under a
// bounded worker pool; documents are ingested in fixed-size batches into a
// fresh index location which replaces the live one only on full success, so
// an aborted build leaves the previous good index in place.
type Builder struct {
	indexPath string
	log       *logger.Logger
	metrics   *metrics.Metrics

	Workers       int
	BatchSize     int
	ProgressEvery int

	building atomic.Bool
}

// NewBuilder creates a builder targeting the given index path.
// The metrics argument may be nil.
func NewBuilder(indexPath string, log *logger.Logger, m *metrics.Metrics) *Builder {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Builder{
		indexPath:     indexPath,
		log:           log.IndexLogger("rebuild"),
		metrics:       m,
		Workers:       DefaultWorkers,
		BatchSize:     DefaultBatchSize,
		ProgressEvery: DefaultProgressEvery,
	}
}

// IndexPath returns the live index location
func (b *Builder) IndexPath() string {
	return b.indexPath
}

// entry pairs a document with its identity for batch ingestion
type entry struct {
	id  string
	doc Document
}

// Build rebuilds the index from the tree and persists metadata on success.
// Returns the number of indexed documents. Only one build may run at a time;
// a second caller gets ErrRebuildInProgress.
func (b *Builder) Build(tree *doctree.Tree, ex *extract.Extractor, decision Decision, metaPath string) (int, error) {
	if !b.building.CompareAndSwap(false, true) {
		return 0, ErrRebuildInProgress
	}
	defer b.building.Store(false)

	start := time.Now()
	b.log.LogRebuildStart(decision.Reason.String(), b.indexPath)

	count, err := b.buildFresh(tree, ex)
	if err != nil {
		if b.metrics != nil {
			b.metrics.RecordRebuild(decision.Reason.String(), "error", time.Since(start), 0)
		}
		b.log.LogRebuildComplete(0, time.Since(start), err)
		return 0, err
	}

	meta := &Metadata{
		SourceFingerprint: decision.SourceFingerprint,
		SchemaVersion:     SchemaVersion,
		BuiltAt:           time.Now().UTC(),
		DocumentCount:     count,
	}
	if err := meta.Store(metaPath); err != nil {
		b.log.LogRebuildComplete(count, time.Since(start), err)
		return 0, err
	}

	if b.metrics != nil {
		b.metrics.RecordRebuild(decision.Reason.String(), "success", time.Since(start), count)
	}
	b.log.LogRebuildComplete(count, time.Since(start), nil)
	return count, nil
}

// buildFresh creates the new index next to the live one and swaps it in
func (b *Builder) buildFresh(tree *doctree.Tree, ex *extract.Extractor) (int, error) {
	buildPath := b.indexPath + ".building"
	if err := os.RemoveAll(buildPath); err != nil {
		return 0, fmt.Errorf("index: clear build location: %w", err)
	}

	indexMapping, err := BuildIndexMapping()
	if err != nil {
		return 0, fmt.Errorf("index: build mapping: %w", err)
	}

	idx, err := bleve.New(buildPath, indexMapping)
	if err != nil {
		return 0, fmt.Errorf("index: create index at %s: %w", buildPath, err)
	}

	count, err := b.ingest(idx, tree, ex)

	if cerr := idx.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("index: close new index: %w", cerr)
	}
	if err != nil {
		os.RemoveAll(buildPath)
		return 0, err
	}

	if err := b.swap(buildPath); err != nil {
		os.RemoveAll(buildPath)
		return 0, err
	}
	return count, nil
}

// ingest runs the worker pool over all tree nodes and batches documents into
// the index. Sections contribute title-only entries; pages get extracted body
// text.
func (b *Builder) ingest(idx bleve.Index, tree *doctree.Tree, ex *extract.Extractor) (int, error) {
	nodes := tree.All()

	jobs := make(chan *doctree.Node)
	results := make(chan entry, b.BatchSize)

	var wg sync.WaitGroup
	for i := 0; i < b.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for node := range jobs {
				results <- entry{id: node.ID, doc: b.document(tree, ex, node)}
			}
		}()
	}

	go func() {
		for _, node := range nodes {
			jobs <- node
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	count := 0
	batch := idx.NewBatch()
	var buildErr error

	for en := range results {
		if buildErr != nil {
			continue // drain workers after a failure
		}

		if err := batch.Index(en.id, en.doc); err != nil {
			buildErr = fmt.Errorf("index: batch document %s: %w", en.id, err)
			continue
		}
		count++

		if b.ProgressEvery > 0 && count%b.ProgressEvery == 0 {
			b.log.Info("rebuild progress").
				Int("documents", count).
				Int("total", len(nodes)).Send()
		}

		if batch.Size() >= b.BatchSize {
			if err := idx.Batch(batch); err != nil {
				buildErr = fmt.Errorf("index: commit batch: %w", err)
				continue
			}
			batch = idx.NewBatch()
		}
	}

	if buildErr != nil {
		return 0, buildErr
	}

	if batch.Size() > 0 {
		if err := idx.Batch(batch); err != nil {
			return 0, fmt.Errorf("index: commit final batch: %w", err)
		}
	}
	return count, nil
}

// document converts one tree node into its indexed representation
func (b *Builder) document(tree *doctree.Tree, ex *extract.Extractor, node *doctree.Node) Document {
	body := ""
	if !node.IsSection {
		body = ex.Text(node)
	}

	helpID := ""
	if len(node.HelpIDs) > 0 {
		helpID = node.HelpIDs[0]
	}

	return Document{
		Title:      node.Title,
		Body:       body,
		Breadcrumb: tree.BreadcrumbString(node.ID),
		Category:   tree.Category(node.ID),
		HelpID:     helpID,
		File:       node.File,
	}
}

// swap replaces the live index with the freshly built one. The old index is
// moved aside first so a failed rename can roll back.
func (b *Builder) swap(buildPath string) error {
	oldPath := b.indexPath + ".old"

	if _, err := os.Stat(b.indexPath); err == nil {
		if err := os.RemoveAll(oldPath); err != nil {
			return fmt.Errorf("index: clear previous index backup: %w", err)
		}
		if err := os.Rename(b.indexPath, oldPath); err != nil {
			return fmt.Errorf("index: move live index aside: %w", err)
		}
	}

	if err := os.Rename(buildPath, b.indexPath); err != nil {
		// Try to restore the previous index before giving up
		if _, statErr := os.Stat(oldPath); statErr == nil {
			os.Rename(oldPath, b.indexPath)
		}
		return fmt.Errorf("index: activate new index: %w", err)
	}

	os.RemoveAll(oldPath)
	return nil
}
