// ABOUTME: Parser for the hierarchical help structure document
// ABOUTME: Normalizes long and abbreviated tag spellings into one node model

package structure

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nainya/helpindex/internal/logger"
	"github.com/nainya/helpindex/pkg/doctree"
)

var (
	// ErrSyntax indicates an unrecoverable syntax error in the source document
	ErrSyntax = errors.New("structure: syntax error")
)

// Canonical element kinds. The source format spells every element two ways;
// both spellings collapse to one kind here and nothing downstream ever sees
// which spelling was used.
const (
	kindSection     = "section"
	kindPage        = "page"
	kindIdentifiers = "identifiers"
	kindHelpID      = "helpid"
	kindOther       = "other"
)

var elementKinds = map[string]string{
	"Section":     kindSection,
	"S":           kindSection,
	"Page":        kindPage,
	"P":           kindPage,
	"Identifiers": kindIdentifiers,
	"I":           kindIdentifiers,
	"HelpID":      kindHelpID,
	"H":           kindHelpID,
}

// Stats reports what a parse produced
type Stats struct {
	Nodes      int // all nodes
	Pages      int // leaf pages
	Reattached int // children rescued from malformed nesting
}

// Parser builds a document tree from the structure description. A Parser is
// not safe for concurrent use; parsing happens once at startup.
type Parser struct {
	log   *logger.Logger
	seq   int
	stats Stats
}

// NewParser creates a parser logging through the given logger
func NewParser(log *logger.Logger) *Parser {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Parser{log: log.ParserLogger()}
}

// Stats returns the statistics of the most recent parse
func (p *Parser) Stats() Stats {
	return p.stats
}

// ParseFile parses the structure document at the given path
func (p *Parser) ParseFile(path string) (*doctree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("structure: open %s: %w", path, err)
	}
	defer f.Close()

	return p.Parse(f)
}

// frame is one open element on the parse stack
type frame struct {
	kind string
	node *doctree.Node // set for section and page frames
}

// Parse reads the structure document and produces the document tree.
// Schema deviations (missing attributes, pages claiming children) are
// recovered; only malformed XML aborts the parse, reporting its location.
func (p *Parser) Parse(r io.Reader) (*doctree.Tree, error) {
	p.seq = 0
	p.stats = Stats{}

	tree := doctree.NewTree()
	dec := xml.NewDecoder(r)

	var stack []*frame

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, p.syntaxError(dec, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, p.startElement(tree, stack, t))
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	p.stats.Nodes = tree.Len()
	p.stats.Pages = tree.PageCount()
	return tree, nil
}

// startElement handles one opening tag and returns its stack frame
func (p *Parser) startElement(tree *doctree.Tree, stack []*frame, se xml.StartElement) *frame {
	kind, known := elementKinds[se.Name.Local]
	if !known {
		// Document root and anything unrecognized are transparent containers
		return &frame{kind: kindOther}
	}

	switch kind {
	case kindSection, kindPage:
		node := p.newNode(tree, se, kind == kindSection)
		parentID := p.resolveParent(stack, node)
		tree.Add(node, parentID)
		return &frame{kind: kind, node: node}

	case kindHelpID:
		if owner := nearestNode(stack); owner != nil {
			if value := attrValue(se, "Value", "v"); value != "" {
				tree.RegisterHelpID(value, owner.ID)
			}
		}
		return &frame{kind: kind}

	default: // identifiers wrapper
		return &frame{kind: kind}
	}
}

// newNode builds a node from element attributes, generating an identity when
// the source omits one or reuses one already taken.
func (p *Parser) newNode(tree *doctree.Tree, se xml.StartElement, isSection bool) *doctree.Node {
	id := attrValue(se, "Id", "id")
	if id == "" || tree.Contains(id) {
		if id != "" {
			p.log.Warn("duplicate node identity, assigning generated one").
				Str("id", id).Send()
		}
		p.seq++
		id = fmt.Sprintf("node-%d", p.seq)
	}

	return &doctree.Node{
		ID:        id,
		Title:     attrValue(se, "Text", "t"),
		File:      attrValue(se, "File", "p"),
		IsSection: isSection,
	}
}

// resolveParent finds the nearest section ancestor on the stack. A page
// claiming structural children is a recoverable inconsistency: the children
// are attached to the nearest valid ancestor instead.
func (p *Parser) resolveParent(stack []*frame, child *doctree.Node) string {
	sawPage := false
	for i := len(stack) - 1; i >= 0; i-- {
		f := stack[i]
		if f.node == nil {
			continue
		}
		if f.kind == kindPage {
			sawPage = true
			continue
		}
		if sawPage {
			p.stats.Reattached++
			p.log.Warn("node nested under a page, reattaching to nearest section").
				Str("id", child.ID).
				Str("section", f.node.ID).Send()
		}
		return f.node.ID
	}

	if sawPage {
		p.stats.Reattached++
		p.log.Warn("node nested under a root page, promoting to root").
			Str("id", child.ID).Send()
	}
	return ""
}

// nearestNode returns the innermost section or page frame on the stack
func nearestNode(stack []*frame) *doctree.Node {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].node != nil {
			return stack[i].node
		}
	}
	return nil
}

// attrValue returns the first attribute matching either spelling
func attrValue(se xml.StartElement, long, abbreviated string) string {
	for _, a := range se.Attr {
		if a.Name.Local == long || a.Name.Local == abbreviated {
			return a.Value
		}
	}
	return ""
}

// syntaxError wraps a decoder error with the failing location
func (p *Parser) syntaxError(dec *xml.Decoder, err error) error {
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		return fmt.Errorf("%w: line %d: %s", ErrSyntax, syn.Line, syn.Msg)
	}
	return fmt.Errorf("%w: offset %d: %v", ErrSyntax, dec.InputOffset(), err)
}
