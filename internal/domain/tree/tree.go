// Package tree reconstructs the collection hierarchy from the flat
// (id, title, parent-id) records the search index returns for a subtree.
// The input ordering is unstable, so assembly parks children whose parent
// has not been seen yet and resolves them as parents arrive.
package tree

import (
	"sort"

	"github.com/kailas-cloud/metaqual/internal/domain"
)

// Record is one flat collection row from the index.
type Record struct {
	ID       string
	Title    string
	ParentID string
}

// Node is one collection in the reconstructed tree. Children are owned
// exclusively by their parent; ParentID is informational only.
type Node struct {
	id       string
	title    string
	parentID string
	level    int
	children []*Node
}

// ID returns the node id.
func (n *Node) ID() string { return n.id }

// Title returns the display name.
func (n *Node) Title() string { return n.title }

// ParentID returns the parent reference the record carried.
func (n *Node) ParentID() string { return n.parentID }

// Level returns the depth from the query root (root = 0).
func (n *Node) Level() int { return n.level }

// Children returns the ordered child nodes.
func (n *Node) Children() []*Node { return n.children }

// Walk visits the node and all descendants depth-first in child order.
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, c := range n.children {
		c.Walk(visit)
	}
}

// Stats reports records that could not be placed in the tree.
type Stats struct {
	// SkippedUntitled counts records dropped for a blank title.
	SkippedUntitled int
	// Duplicates counts records ignored because their id was already seen.
	Duplicates int
	// Orphaned counts titled records whose parent chain never resolved
	// inside the queried subtree. Children of an untitled node end up
	// here: dropping the untitled node strands them.
	Orphaned int
}

// Build assembles the tree rooted at root from unordered flat records.
// Records with a blank title are skipped entirely; duplicate ids collapse
// to the first occurrence. Returns ErrTreeNotFound when the root itself
// has no title.
//
// The result is insertion-order independent: any permutation of records
// yields the same node set, edges and levels. Children are ordered by
// (title, id) so repeated builds over identical data traverse identically.
func Build(root Record, records []Record) (*Node, Stats, error) {
	var stats Stats
	if root.ID == "" || root.Title == "" {
		return nil, stats, domain.ErrTreeNotFound
	}

	rootNode := &Node{id: root.ID, title: root.Title, level: 0}
	nodes := map[string]*Node{root.ID: rootNode}

	// Phase one: create one node per distinct titled id, park every node
	// under its claimed parent id.
	pending := make(map[string][]*Node)
	for _, rec := range records {
		if rec.Title == "" {
			stats.SkippedUntitled++
			continue
		}
		if rec.ID == "" || rec.ID == root.ID {
			continue
		}
		if _, ok := nodes[rec.ID]; ok {
			stats.Duplicates++
			continue
		}
		n := &Node{id: rec.ID, title: rec.Title, parentID: rec.ParentID}
		nodes[rec.ID] = n
		pending[rec.ParentID] = append(pending[rec.ParentID], n)
	}

	// Phase two: attach parked children to their now-known parents.
	// Buckets whose parent id never materialized stay behind as orphans.
	for parentID, children := range pending {
		parent, ok := nodes[parentID]
		if !ok {
			continue
		}
		parent.children = append(parent.children, children...)
	}

	attached := 0
	rootNode.Walk(func(n *Node) {
		sort.Slice(n.children, func(i, j int) bool {
			a, b := n.children[i], n.children[j]
			if a.title != b.title {
				return a.title < b.title
			}
			return a.id < b.id
		})
		for _, c := range n.children {
			c.level = n.level + 1
		}
		if n != rootNode {
			attached++
		}
	})
	stats.Orphaned = len(nodes) - 1 - attached

	return rootNode, stats, nil
}
