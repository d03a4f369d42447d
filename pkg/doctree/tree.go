// ABOUTME: Document tree owning all nodes with identity and help-ID lookup
// ABOUTME: Built once by the structure parser, read-only afterwards

package doctree

// Tree owns all nodes of one parsed structure document. It is mutated only
// during parsing; after construction it is treated as immutable and may be
// read concurrently without synchronization.
type Tree struct {
	nodes   map[string]*Node
	order   []string          // insertion order, for deterministic iteration
	rootIDs []string          // ordered root node IDs
	helpIDs map[string]string // stable help ID -> node ID, last occurrence wins
}

// NewTree creates an empty document tree
func NewTree() *Tree {
	return &Tree{
		nodes:   make(map[string]*Node),
		helpIDs: make(map[string]string),
	}
}

// Add registers a node under the given parent ID. An empty parentID makes the
// node a root. Help IDs carried by the node are registered in the stable
// identifier map; an identifier seen on multiple nodes keeps the last one.
func (t *Tree) Add(n *Node, parentID string) {
	n.ParentID = parentID

	t.nodes[n.ID] = n
	t.order = append(t.order, n.ID)

	if parentID == "" {
		t.rootIDs = append(t.rootIDs, n.ID)
	} else if parent, ok := t.nodes[parentID]; ok {
		parent.ChildIDs = append(parent.ChildIDs, n.ID)
	}

	for _, hid := range n.HelpIDs {
		t.helpIDs[hid] = n.ID
	}
}

// RegisterHelpID binds a stable help identifier to a node after the node has
// been added. An identifier bound more than once keeps the last binding.
func (t *Tree) RegisterHelpID(helpID, nodeID string) {
	if n, ok := t.nodes[nodeID]; ok {
		n.HelpIDs = append(n.HelpIDs, helpID)
		t.helpIDs[helpID] = nodeID
	}
}

// Contains reports whether a node with the given ID is already registered
func (t *Tree) Contains(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// Get returns the node with the given ID
func (t *Tree) Get(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// GetByHelpID returns the node registered for a stable help identifier
func (t *Tree) GetByHelpID(helpID string) (*Node, bool) {
	id, ok := t.helpIDs[helpID]
	if !ok {
		return nil, false
	}
	return t.Get(id)
}

// Roots returns the root nodes in document order
func (t *Tree) Roots() []*Node {
	roots := make([]*Node, 0, len(t.rootIDs))
	for _, id := range t.rootIDs {
		if n, ok := t.nodes[id]; ok {
			roots = append(roots, n)
		}
	}
	return roots
}

// Children returns the direct children of a node in document order.
// Returns nil for an unknown ID.
func (t *Tree) Children(id string) []*Node {
	parent, ok := t.nodes[id]
	if !ok {
		return nil
	}

	children := make([]*Node, 0, len(parent.ChildIDs))
	for _, cid := range parent.ChildIDs {
		if n, ok := t.nodes[cid]; ok {
			children = append(children, n)
		}
	}
	return children
}

// All returns every node in insertion order
func (t *Tree) All() []*Node {
	all := make([]*Node, 0, len(t.order))
	for _, id := range t.order {
		if n, ok := t.nodes[id]; ok {
			all = append(all, n)
		}
	}
	return all
}

// Pages returns the leaf page nodes in insertion order
func (t *Tree) Pages() []*Node {
	var pages []*Node
	for _, n := range t.All() {
		if !n.IsSection {
			pages = append(pages, n)
		}
	}
	return pages
}

// Len returns the total node count
func (t *Tree) Len() int {
	return len(t.nodes)
}

// PageCount returns the number of leaf pages
func (t *Tree) PageCount() int {
	count := 0
	for _, n := range t.nodes {
		if !n.IsSection {
			count++
		}
	}
	return count
}
