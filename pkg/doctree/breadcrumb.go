// ABOUTME: Ancestry resolution from any node up to its root
// ABOUTME: Defends against cycles and pathological depth in untrusted source data

package doctree

import "strings"

// Breadcrumb returns the root-to-node path for the given node, inclusive.
// The walk follows parent IDs with a visited set; a repeated node terminates
// the walk immediately and the depth cap truncates runaway chains. Both cases
// return the partial path accumulated so far rather than an error. The method
// only reads immutable state and is safe for concurrent callers.
func (t *Tree) Breadcrumb(id string) []Crumb {
	node, ok := t.nodes[id]
	if !ok {
		return nil
	}

	visited := make(map[string]bool)
	var reversed []Crumb

	for node != nil {
		if visited[node.ID] || len(reversed) >= MaxDepth {
			break
		}
		visited[node.ID] = true
		reversed = append(reversed, Crumb{ID: node.ID, Title: node.Title})

		if node.ParentID == "" {
			break
		}
		parent, ok := t.nodes[node.ParentID]
		if !ok {
			// Orphaned reference, the accumulated partial path stands
			break
		}
		node = parent
	}

	// Walked leaf-to-root, flip to root-to-leaf
	crumbs := make([]Crumb, len(reversed))
	for i, c := range reversed {
		crumbs[len(reversed)-1-i] = c
	}
	return crumbs
}

// BreadcrumbString renders the breadcrumb as "Root > Section > Page"
func (t *Tree) BreadcrumbString(id string) string {
	crumbs := t.Breadcrumb(id)
	titles := make([]string, len(crumbs))
	for i, c := range crumbs {
		titles[i] = c.Title
	}
	return strings.Join(titles, " > ")
}

// Category returns the title of the node's topmost ancestor, used as the
// coarse navigation category. Empty for unknown IDs.
func (t *Tree) Category(id string) string {
	crumbs := t.Breadcrumb(id)
	if len(crumbs) == 0 {
		return ""
	}
	return crumbs[0].Title
}

// Depth returns the number of ancestry steps from the node to its root,
// subject to the same guards as Breadcrumb.
func (t *Tree) Depth(id string) int {
	crumbs := t.Breadcrumb(id)
	if len(crumbs) == 0 {
		return 0
	}
	return len(crumbs) - 1
}
