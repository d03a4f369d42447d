// ABOUTME: Data model for the hierarchical help content tree
// ABOUTME: Defines Node and Crumb structures with identity-based links

package doctree

// Node represents one structural unit of the help content: a section
// (container) or a page (leaf). Parent and child links are node IDs resolved
// through the owning Tree, never direct references, so malformed source data
// can at worst produce a broken graph, not a broken process.
type Node struct {
	ID        string   // Unique node identifier (from source or generated)
	Title     string   // Display title
	File      string   // Relative path to the HTML content file, may be empty
	HelpIDs   []string // Externally assigned stable identifiers
	IsSection bool     // Container vs. leaf page
	ParentID  string   // Parent node ID, empty for roots
	ChildIDs  []string // Ordered child node IDs
}

// Crumb is one entry of a breadcrumb path
type Crumb struct {
	ID    string
	Title string
}

// MaxDepth caps ancestry walks. A legitimate hierarchy never gets close;
// exceeding it means the source data is malformed and the walk returns the
// partial path accumulated so far.
const MaxDepth = 100
