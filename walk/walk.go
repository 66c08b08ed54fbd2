/*
Package walk implements traversal over syntax trees.

A traversal enumerates every node reachable below a tree's root exactly once,
in an order determined by a traversal strategy. Two strategies exist:

■ DepthFirst enumerates nodes in pre-order: a node is produced before any of
its descendants, and a node's subtree is exhausted before the node's next
sibling is considered.

■ BreadthFirst enumerates nodes in level order: all nodes at depth d are
produced before any node at depth d+1, siblings in input order.

Clients receive the enumeration as a lazy sequence of nodes (type NodeSeq).
A sequence produces nodes one at a time, as the client pulls them, and holds
no hidden resources: abandoning a sequence half-way is legal and leaves
nothing behind that would need explicit release.

Traversal never mutates the tree. The auxiliary state of a walk, a path
stack or a node queue, is created fresh for every call to Traverse, so
traversals of the same tree never interfere, not even concurrent ones.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package walk

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/lists/doublylinkedlist"
	"github.com/npillmayer/arbo"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'arbo.walk'.
func tracer() tracing.Trace {
	return tracing.Select("arbo.walk")
}

// --- Traversal strategies ---------------------------------------------

// Strategy selects the order in which a traversal enumerates tree nodes.
type Strategy int

// Nodes are enumerated either depth-first (pre-order) or breadth-first
// (level order).
const (
	DepthFirst Strategy = iota
	BreadthFirst
)

func (strat Strategy) String() string {
	switch strat {
	case DepthFirst:
		return "depth_first"
	case BreadthFirst:
		return "breadth_first"
	}
	return fmt.Sprintf("strategy(%d)", int(strat))
}

// ErrUnsupportedStrategy flags a traversal-strategy selector which is
// neither DepthFirst nor BreadthFirst. Strategy selection is a closed
// choice: an unknown selector is rejected at the boundary, it never falls
// back to a default silently.
var ErrUnsupportedStrategy = errors.New("unsupported traversal strategy")

// StrategyFromString returns the strategy with a given name, either
// "depth_first" or "breadth_first". Any other name, including the empty
// string, results in ErrUnsupportedStrategy.
func StrategyFromString(name string) (Strategy, error) {
	switch name {
	case "depth_first":
		return DepthFirst, nil
	case "breadth_first":
		return BreadthFirst, nil
	}
	return DepthFirst, fmt.Errorf("%w: %q", ErrUnsupportedStrategy, name)
}

// --- Traversal entry point --------------------------------------------

// Option configures a call to Traverse.
type Option func(*traversal)

// traversal collects the configuration of a single Traverse call.
type traversal struct {
	strategy Strategy
	err      error
}

// Method selects the traversal strategy. Default is DepthFirst.
func Method(strat Strategy) Option {
	return func(trav *traversal) {
		trav.strategy, trav.err = strat, nil
		if strat != DepthFirst && strat != BreadthFirst {
			trav.err = fmt.Errorf("%w: %s", ErrUnsupportedStrategy, strat)
		}
	}
}

// MethodName selects the traversal strategy by name, either "depth_first"
// or "breadth_first". Any other name will make Traverse fail with
// ErrUnsupportedStrategy.
func MethodName(name string) Option {
	return func(trav *traversal) {
		trav.strategy, trav.err = StrategyFromString(name)
	}
}

// Traverse enumerates the descendants of a tree's root as a lazy sequence
// of nodes. The root itself is not part of the sequence; it is the handle
// the caller already holds. Without options the enumeration is depth-first;
// pass Method or MethodName to select the strategy explicitly:
//
//     seq, err := walk.Traverse(tree, walk.Method(walk.BreadthFirst))
//
// Traverse sets up fresh traversal state for every call. Sequences obtained
// from separate calls enumerate independently of each other, and a sequence
// is not restartable: to enumerate again, call Traverse again.
//
// An unsupported strategy selector fails with ErrUnsupportedStrategy before
// any node is produced. A nil tree and a tree whose root has no children
// both yield an exhausted sequence.
func Traverse(tree *arbo.Tree, opts ...Option) (NodeSeq, error) {
	trav := traversal{strategy: DepthFirst}
	for _, opt := range opts {
		if opt != nil {
			opt(&trav)
		}
	}
	if trav.err != nil {
		tracer().Errorf("traverse: %v", trav.err)
		return NodeSeq{}, trav.err
	}
	cursor := tree.Walk()
	tracer().Debugf("%s traversal starting at %v", trav.strategy, cursor.Node())
	if trav.strategy == BreadthFirst {
		return BreadthFirstSeq(cursor), nil
	}
	return DepthFirstSeq(cursor), nil
}

// --- Walkers ----------------------------------------------------------

// DepthFirstSeq enumerates the subtree under the cursor's current node in
// pre-order. The walker drives the cursor: descend to a node's first child
// where possible, otherwise move to the next sibling, otherwise climb until
// a sibling is found or the start node is reached again. The pre-order
// recursion of the textbook definition is replaced by the cursor's path
// stack, so auxiliary memory is bounded by the tree's depth and wide or
// deep trees cannot exhaust the call stack.
//
// The node the cursor starts out on is not part of the sequence. The cursor
// is owned by the traversal until the sequence is exhausted.
//
// Clients usually will not call this function directly, but rather get it
// wrapped in a call to Traverse(…).
func DepthFirstSeq(cursor *arbo.Cursor) NodeSeq {
	if cursor == nil || cursor.Node() == nil {
		return NodeSeq{}
	}
	base := cursor.Level()
	done := false // once the walk is over, stale sequence copies must not restart it
	var S NodeGenerator
	S = func() NodeSeq {
		if done {
			return NodeSeq{}
		}
		if _, ok := cursor.Down(); ok {
			return NodeSeq{cursor.Node(), S}
		}
		for {
			if _, ok := cursor.Sibling(); ok {
				return NodeSeq{cursor.Node(), S}
			}
			if _, ok := cursor.Up(); !ok || cursor.Level() <= base {
				done = true
				return NodeSeq{}
			}
		}
	}
	if _, ok := cursor.Down(); !ok {
		return NodeSeq{}
	}
	return NodeSeq{cursor.Node(), S}
}

// BreadthFirstSeq enumerates the subtree under the cursor's current node in
// level order. The walker keeps a FIFO queue of pending nodes, seeded with
// the start node's children. Nodes are drained in waves: the drain count of
// a wave is fixed to the queue length observed at the start of the wave.
// Children enqueued while a wave drains their parents are therefore never
// produced before the next wave begins, which keeps the output in level
// order. The queue empties monotonically across waves, since every node of
// the (finite) tree is enqueued exactly once.
//
// The node the cursor starts out on is not part of the sequence.
//
// Clients usually will not call this function directly, but rather get it
// wrapped in a call to Traverse(…).
func BreadthFirstSeq(cursor *arbo.Cursor) NodeSeq {
	if cursor == nil || cursor.Node() == nil {
		return NodeSeq{}
	}
	queue := doublylinkedlist.New()
	start := cursor.Node()
	for i := 0; i < start.ChildCount(); i++ {
		queue.Add(start.Child(i))
	}
	wave := queue.Size()
	step := func() arbo.Node {
		if wave == 0 {
			if queue.Size() == 0 {
				return nil
			}
			wave = queue.Size()
			tracer().Debugf("next wave drains %d nodes", wave)
		}
		front, ok := queue.Get(0)
		if !ok {
			return nil
		}
		queue.Remove(0)
		wave--
		node := front.(arbo.Node)
		for i := 0; i < node.ChildCount(); i++ {
			queue.Add(node.Child(i))
		}
		return node
	}
	var S NodeGenerator
	S = func() NodeSeq {
		if node := step(); node != nil {
			return NodeSeq{node, S}
		}
		return NodeSeq{}
	}
	if node := step(); node != nil {
		return NodeSeq{node, S}
	}
	return NodeSeq{}
}
