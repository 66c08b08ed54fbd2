/*
Package lang provisions language grammars for parsing source text.

Parsers for the supported languages are not part of this module: grammars
live in external repositories and are compiled into shared parser
libraries. Package lang makes a language name usable. It resolves the name
to a grammar description, acquires the grammar sources, builds the parser
artifact with the system C toolchain, and caches the artifact on disk,
keyed by language name:

    lg, err := lang.Ensure("json")        // acquire + build on first use
    parser, err := lang.NewParser(lg)     // connect a parser implementation
    tree, err := parser.Parse(source)     // parse source text

Parser implementations connect through the Provider interface. A provider
may load the built artifact, or may stand on its own, like the tokenizing
provider in sub-package tokens, which works for any language without a
compiled grammar.

Failures to make a language available are reported as *ProvisionError,
carrying the language name and the provisioning stage which failed.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lang

import (
	"sync"

	"github.com/npillmayer/arbo"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'arbo.lang'.
func tracer() tracing.Trace {
	return tracing.Select("arbo.lang")
}

// Parser turns source text into a syntax tree.
type Parser interface {
	Parse(source []byte) (*arbo.Tree, error)
}

// Provider connects a provisioned language to a parser implementation.
// Open receives a language description, with artifact fields set if the
// language has been provisioned by Ensure, and returns a ready-to-use
// parser for it.
type Provider interface {
	Open(lg *Language) (Parser, error)
}

// --- Provider registry ------------------------------------------------

var providerMutex sync.Mutex // guards providers
var providers = map[string]Provider{}

// Register makes a parser provider available for a language name,
// replacing a previously registered one. Registering under the empty name
// installs a fallback provider, consulted for every language without a
// dedicated one. A nil provider removes the registration.
func Register(name string, p Provider) {
	providerMutex.Lock()
	defer providerMutex.Unlock()
	if p == nil {
		delete(providers, name)
		return
	}
	providers[name] = p
}

func providerFor(name string) Provider {
	providerMutex.Lock()
	defer providerMutex.Unlock()
	if p, ok := providers[name]; ok {
		return p
	}
	return providers[""]
}

// NewParser resolves a language to a parser, using the provider registered
// for the language's name, or the fallback provider if there is none.
// Without any matching provider, NewParser fails with ErrNoProvider.
func NewParser(lg *Language) (Parser, error) {
	if lg == nil || lg.Name == "" {
		return nil, provisionError("", StageLoad, ErrUnknownLanguage)
	}
	p := providerFor(lg.Name)
	if p == nil {
		tracer().Errorf("no parser provider for language %q", lg.Name)
		return nil, provisionError(lg.Name, StageLoad, ErrNoProvider)
	}
	parser, err := p.Open(lg)
	if err != nil {
		tracer().Errorf("provider failed to open language %q: %v", lg.Name, err)
		return nil, provisionError(lg.Name, StageLoad, err)
	}
	return parser, nil
}
