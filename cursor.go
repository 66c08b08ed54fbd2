package arbo

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/

// A Cursor is a movable mark within a syntax tree, intended for navigating
// over nodes without bookkeeping on the client side: the cursor remembers the
// path from its origin down to the current node.
//
// A cursor is bound to the node it has been created at, its origin. It may
// move to any node of the subtree under the origin, but never above it.
// Cursors are cheap to create and are meant to be transient. A single cursor
// must not be shared between goroutines, but any number of cursors may move
// over the same (immutable) tree independently.
type Cursor struct {
	node Node
	path []step
}

// step links a parent node to the child index the cursor descended into.
type step struct {
	parent Node
	index  int
}

// CursorAt creates a cursor with origin n. For a cursor over a complete
// tree, use Tree.Walk.
func CursorAt(n Node) *Cursor {
	if n == nil {
		return nil
	}
	return &Cursor{
		node: n,
		path: make([]step, 0, 32),
	}
}

// Node returns the node the cursor currently is positioned at.
func (c *Cursor) Node() Node {
	if c == nil {
		return nil
	}
	return c.node
}

// Level returns the number of levels between the cursor's origin and the
// current node, 0 for the origin itself.
func (c *Cursor) Level() int {
	if c == nil {
		return 0
	}
	return len(c.path)
}

// Path returns the child indices leading from the cursor's origin down to
// the current node. Nodes have no identity of their own; their position is
// their identity.
func (c *Cursor) Path() []int {
	if c == nil {
		return nil
	}
	indices := make([]int, len(c.path))
	for i, s := range c.path {
		indices[i] = s.index
	}
	return indices
}

// Down moves the cursor down to the first child of the current node, if any.
func (c *Cursor) Down() (Node, bool) {
	if c == nil || c.node == nil || c.node.ChildCount() == 0 {
		return c.Node(), false
	}
	c.path = append(c.path, step{parent: c.node, index: 0})
	c.node = c.node.Child(0)
	return c.node, true
}

// Sibling moves the cursor to the next sibling of the current node, if any.
// The origin of a cursor has no siblings.
func (c *Cursor) Sibling() (Node, bool) {
	if c == nil || len(c.path) == 0 {
		return c.Node(), false
	}
	top := &c.path[len(c.path)-1]
	if top.index+1 >= top.parent.ChildCount() {
		return c.node, false
	}
	top.index++
	c.node = top.parent.Child(top.index)
	return c.node, true
}

// Up moves the cursor up to the parent of the current node. It will not move
// beyond the cursor's origin.
func (c *Cursor) Up() (Node, bool) {
	if c == nil || len(c.path) == 0 {
		return c.Node(), false
	}
	top := c.path[len(c.path)-1]
	c.path = c.path[:len(c.path)-1]
	c.node = top.parent
	return c.node, true
}
