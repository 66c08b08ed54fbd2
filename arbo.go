package arbo

import "fmt"

// --- A general purpose interface for tree nodes ----------------------------

// Node is an element of a syntax tree. Nodes are produced by a parser and
// reflect the syntactic structure of the input text.
//
// Nodes carry a minimal surface: a category tag, the span of input bytes they
// cover, and an ordered list of children. A node without children is a leaf,
// usually corresponding to a token of the input. Child order is the order in
// which the children occur in the input; it is fixed and significant.
//
// An example would be a node for a variable assignment:
//
//    Kind       = "assignment"     // category tag (grammar specific)
//    Span       = 10…21            // covers input bytes 10 to 21
//    ChildCount = 3                // "x", "=", "f(y)"
//
// Trees are immutable. Clients, as well as all traversals of package walk,
// only ever read nodes.
type Node interface {
	Kind() string
	Span() Span
	ChildCount() int
	Child(int) Node
}

// --- Spans ------------------------------------------------------------

// Span is a small type for capturing a run of input bytes. For every node, a
// syntax tree will track which segment of the source text the node covers.
// A span denotes a start position and the position just behind the end.
type Span [2]uint64 // (x…y)

// From returns the start position of a span.
func (s Span) From() uint64 {
	return s[0]
}

// To returns the end position of a span.
func (s Span) To() uint64 {
	return s[1]
}

// Len returns the length of (x…y)
func (s Span) Len() uint64 {
	return s[1] - s[0]
}

func (s Span) IsNull() bool {
	return s == Span{}
}

// Cover returns the smallest span containing both s and other.
// Covering a null span is the identity.
func (s Span) Cover(other Span) Span {
	if s.IsNull() {
		return other
	}
	if other.IsNull() {
		return s
	}
	if other[0] < s[0] {
		s[0] = other[0]
	}
	if other[1] > s[1] {
		s[1] = other[1]
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}

// --- Trees ------------------------------------------------------------

// Tree is a rooted, ordered syntax tree of arbitrary arity. A parser creates
// a tree once; thereafter the tree is immutable and may be read by any number
// of clients concurrently.
type Tree struct {
	root Node
	lang string
	src  []byte
}

// NewTree wraps the root node of a parse into a Tree. The language tag and
// the source text are kept for the convenience of clients; both may be empty.
func NewTree(root Node, language string, source []byte) *Tree {
	return &Tree{
		root: root,
		lang: language,
		src:  source,
	}
}

// Root returns the root node of a tree, nil for an uninitialized tree.
func (t *Tree) Root() Node {
	if t == nil {
		return nil
	}
	return t.root
}

// Language returns the language tag the tree has been parsed for.
func (t *Tree) Language() string {
	if t == nil {
		return ""
	}
	return t.lang
}

// Source returns the source text the tree has been parsed from.
func (t *Tree) Source() []byte {
	if t == nil {
		return nil
	}
	return t.src
}

// Walk creates a cursor with origin at the root of the tree.
// It returns nil for an uninitialized tree.
func (t *Tree) Walk() *Cursor {
	if t == nil || t.root == nil {
		return nil
	}
	return CursorAt(t.root)
}

// --- Default nodes ----------------------------------------------------

// DefaultNode is a very unsophisticated node type with a fixed child list.
// It is used by the built-in tree providers; parser implementations are free
// to implement Node on their own data structures instead.
type DefaultNode struct {
	kind     string
	span     Span
	children []Node
}

var _ Node = (*DefaultNode)(nil)

// MakeNode creates a node from a category tag, a source span and a fixed
// list of children, given in input order.
func MakeNode(kind string, span Span, children ...Node) *DefaultNode {
	return &DefaultNode{
		kind:     kind,
		span:     span,
		children: children,
	}
}

func (n *DefaultNode) Kind() string {
	return n.kind
}

func (n *DefaultNode) Span() Span {
	return n.span
}

func (n *DefaultNode) ChildCount() int {
	return len(n.children)
}

func (n *DefaultNode) Child(i int) Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

func (n *DefaultNode) String() string {
	return fmt.Sprintf("%s%v", n.kind, n.span)
}
