// ABOUTME: Ranked query layer over the persisted text-search index
// ABOUTME: Field weighting, prefix matching, category filter and pagination

package search

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/nainya/helpindex/internal/logger"
	"github.com/nainya/helpindex/internal/metrics"
)

// Field weights: a title hit is worth an order of magnitude more than the
// same term buried in body text; breadcrumb hits sit in between.
const (
	titleBoost      = 10.0
	breadcrumbBoost = 3.0
	bodyBoost       = 1.0
)

// Pagination bounds
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Options controls one search call
type Options struct {
	Offset   int    // result offset, clamped to >= 0
	Size     int    // page size, clamped to MaxPageSize
	Prefix   bool   // treat the final token as a word prefix
	Category string // restrict to one top-level category, empty for all
}

// Result is one ranked hit
type Result struct {
	ID         string
	Title      string
	HelpID     string
	Category   string
	Breadcrumb string
	File       string
	Score      float64
}

// Page is one page of ranked results with the total match count
type Page struct {
	Results []Result
	Total   uint64
	Offset  int
}

// Engine serves ranked queries from the persisted index. The index handle is
// guarded so Reopen can swap it after a rebuild while readers keep serving
// the prior index until the swap.
type Engine struct {
	mu      sync.RWMutex
	index   bleve.Index
	path    string
	log     *logger.Logger
	metrics *metrics.Metrics
}

// OpenEngine opens the persisted index at path.
// The metrics argument may be nil.
func OpenEngine(path string, log *logger.Logger, m *metrics.Metrics) (*Engine, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	idx, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("search: open index %s: %w", path, err)
	}

	return &Engine{
		index:   idx,
		path:    path,
		log:     log.SearchLogger(),
		metrics: m,
	}, nil
}

// Reopen swaps to the index currently at the engine's path. Called after a
// rebuild replaced the on-disk index; queries in flight finish against the
// old handle.
func (e *Engine) Reopen() error {
	idx, err := bleve.Open(e.path)
	if err != nil {
		return fmt.Errorf("search: reopen index %s: %w", e.path, err)
	}

	e.mu.Lock()
	old := e.index
	e.index = idx
	e.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

// Close releases the index handle
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.index == nil {
		return nil
	}
	err := e.index.Close()
	e.index = nil
	return err
}

// DocCount returns the number of documents in the index
func (e *Engine) DocCount() (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.index == nil {
		return 0, nil
	}
	return e.index.DocCount()
}

// Search runs a sanitized, weighted, paginated query. Degenerate input that
// sanitizes to nothing returns an empty page, never an error.
func (e *Engine) Search(raw string, opts Options) (*Page, error) {
	opts = clampOptions(opts)

	cleaned := Sanitize(raw)
	if cleaned == "" {
		return &Page{Offset: opts.Offset}, nil
	}

	q := buildQuery(cleaned, opts)

	req := bleve.NewSearchRequestOptions(q, opts.Size, opts.Offset, false)
	req.Fields = []string{"title", "help_id", "category", "breadcrumb", "file"}

	start := time.Now()

	e.mu.RLock()
	idx := e.index
	e.mu.RUnlock()
	if idx == nil {
		return &Page{Offset: opts.Offset}, nil
	}

	res, err := idx.Search(req)
	if err != nil {
		e.log.LogSearch(cleaned, 0, time.Since(start), err)
		return nil, fmt.Errorf("search: query failed: %w", err)
	}

	page := &Page{
		Results: make([]Result, 0, len(res.Hits)),
		Total:   res.Total,
		Offset:  opts.Offset,
	}
	for _, hit := range res.Hits {
		page.Results = append(page.Results, Result{
			ID:         hit.ID,
			Title:      stringField(hit.Fields, "title"),
			HelpID:     stringField(hit.Fields, "help_id"),
			Category:   stringField(hit.Fields, "category"),
			Breadcrumb: stringField(hit.Fields, "breadcrumb"),
			File:       stringField(hit.Fields, "file"),
			Score:      hit.Score,
		})
	}

	if e.metrics != nil {
		e.metrics.RecordSearch(time.Since(start), len(page.Results))
	}
	e.log.LogSearch(cleaned, res.Total, time.Since(start), nil)

	return page, nil
}

// buildQuery assembles the weighted disjunction across title, breadcrumb and
// body, optionally with prefix expansion of the final token and a category
// restriction.
func buildQuery(cleaned string, opts Options) query.Query {
	titleQ := bleve.NewMatchQuery(cleaned)
	titleQ.SetField("title")
	titleQ.SetBoost(titleBoost)

	crumbQ := bleve.NewMatchQuery(cleaned)
	crumbQ.SetField("breadcrumb")
	crumbQ.SetBoost(breadcrumbBoost)

	bodyQ := bleve.NewMatchQuery(cleaned)
	bodyQ.SetField("body")
	bodyQ.SetBoost(bodyBoost)

	dis := bleve.NewDisjunctionQuery(titleQ, crumbQ, bodyQ)

	if opts.Prefix {
		tokens := strings.Fields(cleaned)
		last := strings.ToLower(tokens[len(tokens)-1])

		titleP := bleve.NewPrefixQuery(last)
		titleP.SetField("title")
		titleP.SetBoost(titleBoost)

		bodyP := bleve.NewPrefixQuery(last)
		bodyP.SetField("body")
		bodyP.SetBoost(bodyBoost)

		dis.AddQuery(titleP, bodyP)
	}

	if opts.Category == "" {
		return dis
	}

	catQ := bleve.NewTermQuery(opts.Category)
	catQ.SetField("category")
	return bleve.NewConjunctionQuery(dis, catQ)
}

// clampOptions enforces pagination bounds
func clampOptions(opts Options) Options {
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	if opts.Size <= 0 {
		opts.Size = DefaultPageSize
	}
	if opts.Size > MaxPageSize {
		opts.Size = MaxPageSize
	}
	return opts
}

// stringField reads a stored string field from a hit
func stringField(fields map[string]interface{}, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}
