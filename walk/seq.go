package walk

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"github.com/npillmayer/arbo"
)

/*
Note:
=====
Sequences pre-fetch their first node at creation time. For tree walks this
is cheap: producing a node inspects no more than the node itself and its
child count.
*/

// NodeSeq is a lazy sequence over syntax-tree nodes. Clients pull nodes one
// at a time:
//
//     seq, err := walk.Traverse(tree)
//     …
//     for node, S := seq.First(); !S.Done(); node = S.Next() {
//         do something with node
//     }
//
// Pulling is the only work a sequence ever does: a client may stop pulling
// at any point and simply drop the sequence, leaving nothing behind but
// garbage for normal collection.
//
// A NodeSeq value and copies of it share the underlying producer: pulling
// from a copy advances the original, too. Independent enumerations are
// obtained by separate calls to Traverse (or to one of the walkers).
type NodeSeq struct {
	node arbo.Node
	seq  NodeGenerator
}

// NodeGenerator is a function type to produce the successor of a sequence.
type NodeGenerator func() NodeSeq

// Break signals a sequence to stop iterating.
func (seq *NodeSeq) Break() {
	seq.seq = nil
}

// Done returns true if a sequence is exhausted or has been stopped.
func (seq *NodeSeq) Done() bool {
	return seq.seq == nil
}

// First returns the first node of a sequence, together with a sequence
// successor for receiving the remaining nodes.
func (seq NodeSeq) First() (arbo.Node, NodeSeq) {
	return seq.node, seq
}

// Next returns the next node of a sequence, nil if the sequence is
// exhausted.
func (seq *NodeSeq) Next() arbo.Node {
	if seq.Done() {
		return nil
	}
	next := seq.seq()
	seq.node = next.node
	if seq.node == nil {
		seq.seq = nil
	} else {
		seq.seq = next.seq
	}
	return seq.node
}

// List materializes all the nodes of a sequence as a slice, draining the
// sequence.
func (seq NodeSeq) List() []arbo.Node {
	if seq.Done() || seq.node == nil {
		return nil
	}
	var nodes []arbo.Node
	for node, S := seq.First(); !S.Done(); node = S.Next() {
		nodes = append(nodes, node)
	}
	return nodes
}

// --- Filters and mappers ----------------------------------------------

// A NodeFilter decides whether a sequence should produce a given node.
type NodeFilter func(arbo.Node) bool

// IsLeaf is a filter which only accepts leaf nodes.
func IsLeaf() NodeFilter {
	return func(node arbo.Node) bool {
		return node != nil && node.ChildCount() == 0
	}
}

// OfKind is a filter which only accepts nodes with a given category tag.
func OfKind(kind string) NodeFilter {
	return func(node arbo.Node) bool {
		return node != nil && node.Kind() == kind
	}
}

// Where narrows a sequence to the nodes accepted by a filter.
func (seq NodeSeq) Where(filt NodeFilter) NodeSeq {
	inner := seq
	var T NodeGenerator
	T = func() NodeSeq {
		node := inner.Next()
		for !inner.Done() && !filt(node) {
			node = inner.Next()
		}
		if inner.Done() {
			return NodeSeq{}
		}
		return NodeSeq{node, T}
	}
	if inner.Done() || inner.node == nil {
		return NodeSeq{}
	}
	if filt(inner.node) {
		return NodeSeq{inner.node, T}
	}
	return T()
}

// A NodeMapper derives a node from an input node.
type NodeMapper func(arbo.Node) arbo.Node

// Print is a mapper which prints nodes to the tracer and passes them
// through unchanged.
func Print() NodeMapper {
	return func(node arbo.Node) arbo.Node {
		tracer().Debugf("tree node = %v", node)
		return node
	}
}

// Map applies a mapper to all the nodes of a sequence. The mapper must not
// return nil, since a nil node ends the mapped sequence early.
func (seq NodeSeq) Map(mapper NodeMapper) NodeSeq {
	inner := seq
	var T NodeGenerator
	T = func() NodeSeq {
		node := inner.Next()
		if inner.Done() {
			return NodeSeq{}
		}
		return NodeSeq{mapper(node), T}
	}
	if inner.Done() || inner.node == nil {
		return NodeSeq{}
	}
	return NodeSeq{mapper(inner.node), T}
}
