// Package service implements the exposed help-content operations
package service

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/nainya/helpindex/internal/logger"
	"github.com/nainya/helpindex/internal/metrics"
	"github.com/nainya/helpindex/pkg/doctree"
	"github.com/nainya/helpindex/pkg/extract"
	"github.com/nainya/helpindex/pkg/index"
	"github.com/nainya/helpindex/pkg/search"
	"github.com/nainya/helpindex/pkg/structure"
)

// DefaultSourceName is the structure document filename under the help root
const DefaultSourceName = "brhelpcontent.xml"

// Config holds the configuration consumed from the outer process
type Config struct {
	HelpRoot          string // root of the help content tree
	IndexPath         string // optional override, default <HelpRoot>/help.bleve
	MetaPath          string // optional override, default <IndexPath>.meta.json
	SourceName        string // optional override of the structure document name
	ForceRebuild      bool
	OnlineHelpBaseURL string // optional base for online page links

	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

// PageContent is the fully resolved content of one help page
type PageContent struct {
	ID             string
	Title          string
	PlainText      string
	HelpID         string
	File           string
	Breadcrumb     []string
	BreadcrumbPath string
	OnlineURL      string
}

// Statistics describes the current index and corpus
type Statistics struct {
	DocumentCount     uint64
	BuiltAt           time.Time
	SourceFingerprint string
	SchemaVersion     string
	Nodes             int
	Pages             int
	IndexPath         string
}

// Service wires the document tree, extractor, index builder and query engine
// behind the operation surface consumed by the protocol layer. Each parsed
// tree is immutable; the handle is guarded so a source-change rebuild can
// publish a freshly parsed tree while readers keep resolving against the
// prior one. All operations are safe for concurrent use.
type Service struct {
	cfg       Config
	extractor *extract.Extractor
	builder   *index.Builder
	engine    *search.Engine

	mu   sync.RWMutex
	tree *doctree.Tree

	log     *logger.Logger
	metrics *metrics.Metrics
}

// New parses the structure document, rebuilds the index when the change
// detector requires it, and opens the query engine. Unrecoverable syntax
// errors in the structure document abort startup.
func New(cfg Config) (*Service, error) {
	if cfg.Logger == nil {
		cfg.Logger = logger.GetGlobalLogger()
	}
	if cfg.SourceName == "" {
		cfg.SourceName = DefaultSourceName
	}
	if cfg.IndexPath == "" {
		cfg.IndexPath = filepath.Join(cfg.HelpRoot, "help.bleve")
	}
	if cfg.MetaPath == "" {
		cfg.MetaPath = cfg.IndexPath + ".meta.json"
	}

	s := &Service{
		cfg:     cfg,
		log:     cfg.Logger,
		metrics: cfg.Metrics,
	}

	if err := s.parse(); err != nil {
		return nil, err
	}

	s.extractor = extract.NewExtractor(cfg.HelpRoot, cfg.Logger, cfg.Metrics)
	s.builder = index.NewBuilder(cfg.IndexPath, cfg.Logger, cfg.Metrics)

	if _, err := s.ensureIndex(cfg.ForceRebuild); err != nil {
		return nil, err
	}

	engine, err := search.OpenEngine(cfg.IndexPath, cfg.Logger, cfg.Metrics)
	if err != nil {
		return nil, err
	}
	s.engine = engine

	return s, nil
}

// parse loads the structure document and publishes the new tree. The tree is
// built fully before it replaces the current one, so readers only ever see a
// complete tree.
func (s *Service) parse() error {
	sourcePath := s.sourcePath()
	parser := structure.NewParser(s.log)

	start := time.Now()
	tree, err := parser.ParseFile(sourcePath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.tree = tree
	s.mu.Unlock()

	stats := parser.Stats()
	s.log.LogParseComplete(sourcePath, stats.Nodes, stats.Pages, stats.Reattached, time.Since(start))
	if s.metrics != nil {
		s.metrics.RecordParse(time.Since(start), stats.Nodes, stats.Pages, stats.Reattached)
	}
	return nil
}

// ensureIndex rebuilds when the change detector says so, or when the index
// store itself has gone missing underneath valid metadata
func (s *Service) ensureIndex(force bool) (index.Decision, error) {
	decision, err := index.Detect(s.sourcePath(), s.cfg.MetaPath, force)
	if err != nil {
		return decision, err
	}

	if !decision.Rebuild {
		if _, err := os.Stat(s.cfg.IndexPath); os.IsNotExist(err) {
			decision.Rebuild = true
			decision.Reason = index.ReasonFirstBuild
		}
	}

	if decision.Rebuild {
		if _, err := s.builder.Build(s.currentTree(), s.extractor, decision, s.cfg.MetaPath); err != nil {
			return decision, err
		}
	}
	return decision, nil
}

func (s *Service) sourcePath() string {
	return filepath.Join(s.cfg.HelpRoot, s.cfg.SourceName)
}

// currentTree returns the published tree. Operations take one snapshot and
// resolve every lookup against it, so a rebuild mid-call cannot mix trees.
func (s *Service) currentTree() *doctree.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

// Close releases the query engine
func (s *Service) Close() error {
	if s.engine == nil {
		return nil
	}
	return s.engine.Close()
}

// ========== Tree Operations ==========

// Tree returns the currently published document tree
func (s *Service) Tree() *doctree.Tree {
	return s.currentTree()
}

// Breadcrumb resolves the root-to-node path for a node ID
func (s *Service) Breadcrumb(id string) ([]doctree.Crumb, bool) {
	if s.metrics != nil {
		s.metrics.BreadcrumbLookupsTotal.Inc()
	}
	tree := s.currentTree()
	if _, ok := tree.Get(id); !ok {
		return nil, false
	}
	return tree.Breadcrumb(id), true
}

// LookupHelpID returns the node bound to a stable help identifier
func (s *Service) LookupHelpID(helpID string) (*doctree.Node, bool) {
	if s.metrics != nil {
		s.metrics.HelpIDLookupsTotal.Inc()
	}
	return s.currentTree().GetByHelpID(helpID)
}

// Categories returns the top-level sections in document order
func (s *Service) Categories() []*doctree.Node {
	var categories []*doctree.Node
	for _, n := range s.currentTree().Roots() {
		if n.IsSection {
			categories = append(categories, n)
		}
	}
	return categories
}

// Browse returns the direct children of a section. The second return is
// false for an unknown ID.
func (s *Service) Browse(sectionID string) ([]*doctree.Node, bool) {
	tree := s.currentTree()
	if _, ok := tree.Get(sectionID); !ok {
		return nil, false
	}
	return tree.Children(sectionID), true
}

// Page resolves a node into displayable content, extracting its plain text
// on demand. Returns false for an unknown ID.
func (s *Service) Page(id string) (*PageContent, bool) {
	tree := s.currentTree()
	node, ok := tree.Get(id)
	if !ok {
		return nil, false
	}

	crumbs := tree.Breadcrumb(id)
	titles := make([]string, len(crumbs))
	for i, c := range crumbs {
		titles[i] = c.Title
	}

	helpID := ""
	if len(node.HelpIDs) > 0 {
		helpID = node.HelpIDs[0]
	}

	return &PageContent{
		ID:             node.ID,
		Title:          node.Title,
		PlainText:      s.extractor.Text(node),
		HelpID:         helpID,
		File:           node.File,
		Breadcrumb:     titles,
		BreadcrumbPath: tree.BreadcrumbString(id),
		OnlineURL:      s.onlineURL(node),
	}, true
}

// onlineURL derives the online help link for a node's content file
func (s *Service) onlineURL(node *doctree.Node) string {
	if s.cfg.OnlineHelpBaseURL == "" || node.File == "" {
		return ""
	}
	return s.cfg.OnlineHelpBaseURL + path.Clean(filepath.ToSlash(node.File))
}

// ========== Index Operations ==========

// NeedsRebuild reports the current rebuild decision without side effects
func (s *Service) NeedsRebuild() (index.Decision, error) {
	return index.Detect(s.sourcePath(), s.cfg.MetaPath, false)
}

// Rebuild re-runs the change detection and rebuilds when required (or when
// forced), then reopens the query engine on the fresh index. Returns the
// indexed document count, or the previous count when no rebuild was needed.
func (s *Service) Rebuild(force bool) (int, error) {
	decision, err := index.Detect(s.sourcePath(), s.cfg.MetaPath, force)
	if err != nil {
		return 0, err
	}

	if !decision.Rebuild {
		if decision.Metadata != nil {
			return decision.Metadata.DocumentCount, nil
		}
		return 0, nil
	}

	// The structure document may have changed since startup
	if decision.Reason == index.ReasonSourceChanged {
		if err := s.parse(); err != nil {
			return 0, err
		}
	}

	count, err := s.builder.Build(s.currentTree(), s.extractor, decision, s.cfg.MetaPath)
	if err != nil {
		return 0, err
	}

	if s.engine != nil {
		if err := s.engine.Reopen(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// ========== Search Operations ==========

// Search runs a ranked, paginated query against the index
func (s *Service) Search(query string, opts search.Options) (*search.Page, error) {
	return s.engine.Search(query, opts)
}

// Statistics reports index and corpus state
func (s *Service) Statistics() (*Statistics, error) {
	tree := s.currentTree()
	stats := &Statistics{
		Nodes:     tree.Len(),
		Pages:     tree.PageCount(),
		IndexPath: s.cfg.IndexPath,
	}

	meta, err := index.LoadMetadata(s.cfg.MetaPath)
	if err != nil {
		return nil, err
	}
	if meta != nil {
		stats.BuiltAt = meta.BuiltAt
		stats.SourceFingerprint = meta.SourceFingerprint
		stats.SchemaVersion = meta.SchemaVersion
	}

	count, err := s.engine.DocCount()
	if err != nil {
		return nil, fmt.Errorf("service: document count: %w", err)
	}
	stats.DocumentCount = count

	return stats, nil
}
