/*
Package arepl/main provides an interactive command line tool (AREPL)
for exploring syntax trees. Users load a source file, have it parsed,
and then walk the resulting tree with selectable traversal strategies,
render it, or collect statistics about it. AREPL serves as a sandbox
for experiments during the early stages of tooling built on tree
traversal, and as a quick way to eyeball what a parser makes of a
given input.

Please refer to packages "walk" and "lang".

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'arbo.repl'
func tracer() tracing.Trace {
	return tracing.Select("arbo.repl")
}
