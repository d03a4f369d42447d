// ABOUTME: HTML content extraction with per-node memoization
// ABOUTME: Strips script/style elements and collapses whitespace

package extract

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nainya/helpindex/internal/logger"
	"github.com/nainya/helpindex/internal/metrics"
	"github.com/nainya/helpindex/pkg/doctree"
)

// Extractor converts referenced HTML content files into plain text. Results
// are memoized by node identity: extraction is deterministic, so a racing
// first write settles on the same value and later readers hit the cache.
// Safe for concurrent use.
type Extractor struct {
	root    string
	log     *logger.Logger
	metrics *metrics.Metrics
	cache   sync.Map // node ID -> string
}

// NewExtractor creates an extractor rooted at the help content directory.
// The metrics argument may be nil.
func NewExtractor(root string, log *logger.Logger, m *metrics.Metrics) *Extractor {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Extractor{
		root:    root,
		log:     log.ExtractLogger(),
		metrics: m,
	}
}

// Text returns the extracted plain text for a node, computing and caching it
// on first access. A node without a content file, or with a missing or
// unparseable one, yields empty text; a single bad file never fails a build.
func (e *Extractor) Text(node *doctree.Node) string {
	if node == nil || node.File == "" {
		return ""
	}

	if cached, ok := e.cache.Load(node.ID); ok {
		return cached.(string)
	}

	start := time.Now()
	text, err := e.extract(node.File)
	if e.metrics != nil {
		e.metrics.RecordExtraction(time.Since(start), err != nil)
	}
	if err != nil {
		e.log.Warn("content extraction failed, indexing empty text").
			Str("node", node.ID).
			Str("file", node.File).
			Err(err).Send()
		text = ""
	}

	actual, _ := e.cache.LoadOrStore(node.ID, text)
	return actual.(string)
}

// extract loads and converts one HTML file
func (e *Extractor) extract(relPath string) (string, error) {
	path := filepath.Join(e.root, filepath.FromSlash(relPath))

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", err
	}

	doc.Find("script, style").Remove()

	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}

	return CollapseWhitespace(text), nil
}

// CollapseWhitespace normalizes all runs of whitespace to single spaces
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
