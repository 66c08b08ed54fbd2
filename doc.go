/*
Package arbo is a syntax-tree toolbox.

Arbo strives to be a small and dependable tool for working with syntax
trees as produced by language parsers.
It focusses on complete, deterministic enumeration of tree nodes. Package structure is
as follows:

■ walk: Package walk implements tree traversal, i.e. depth-first and breadth-first
enumeration of nodes, exposed as lazy sequences.

■ lang: Package lang provisions language grammars. It acquires grammar sources,
builds and caches parser artifacts, and connects parser implementations through
a small provider interface.

■ arepl: Package arepl/main is an interactive explorer for syntax trees.

The base package contains data types which are used throughout all the other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package arbo
