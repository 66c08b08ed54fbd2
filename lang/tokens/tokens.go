/*
Package tokens provides a tokenizing fallback parser.

The parsers served by this provider do not understand any grammar. They
chop source text into a generic stream of tokens (identifiers, numbers,
strings, comments, operators) and wrap the tokens in a flat tree: every
token becomes a leaf below a single root node of kind "source". That is a
poor man's syntax tree, but it lets clients inspect and walk sources of
languages for which no real grammar has been provisioned.

The provider is typically registered as a catch-all:

    lang.Register("", tokens.Provider())

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package tokens

import (
	"fmt"
	"sync"
	"text/scanner"

	"github.com/npillmayer/arbo"
	"github.com/npillmayer/arbo/lang"
	"github.com/npillmayer/schuko/tracing"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// tracer traces with key 'arbo.lang'.
func tracer() tracing.Trace {
	return tracing.Select("arbo.lang")
}

var tokenIds map[string]int  // token kind → lexer token type
var kindNames map[int]string // lexer token type → token kind

var initOnce sync.Once // monitors one-time creation of the token tables

// Token types follow the text/scanner constants where a corresponding
// class exists. Operators get a type of their own.
func initTokenIds() {
	tokenIds = map[string]int{
		"comment": scanner.Comment,
		"ident":   scanner.Ident,
		"number":  scanner.Float,
		"string":  scanner.String,
		"op":      -9,
	}
	kindNames = make(map[int]string, len(tokenIds))
	for kind, id := range tokenIds {
		kindNames[id] = kind
	}
}

// Kind returns the token kind for a lexer token type.
func Kind(id int) string {
	initOnce.Do(initTokenIds)
	if kind, ok := kindNames[id]; ok {
		return kind
	}
	return fmt.Sprintf("token(%d)", id)
}

// ID returns the lexer token type for a token kind, or -1 if no such kind
// exists.
func ID(kind string) int {
	initOnce.Do(initTokenIds)
	if id, ok := tokenIds[kind]; ok {
		return id
	}
	return -1
}

var lexer *lexmachine.Lexer
var lexerErr error
var lexerOnce sync.Once // monitors one-time compilation of the lexer DFA

// Lexer returns the tokenizer automaton, shared by all parser instances.
// Compiling the DFA happens on first use.
func Lexer() (*lexmachine.Lexer, error) {
	lexerOnce.Do(func() {
		initOnce.Do(initTokenIds)
		l := lexmachine.NewLexer()
		l.Add([]byte(`//[^\n]*\n?`), makeToken("comment"))
		l.Add([]byte(`#[^\n]*\n?`), makeToken("comment"))
		l.Add([]byte(`([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_)*`), makeToken("ident"))
		l.Add([]byte(`[0-9]+(\.[0-9]+)?`), makeToken("number"))
		l.Add([]byte(`\"[^"]*\"`), makeToken("string"))
		l.Add([]byte(`'[^']*'`), makeToken("string"))
		l.Add([]byte(`( |\t|\n|\r)+`), skip)
		l.Add([]byte(`.`), makeToken("op"))
		if err := l.Compile(); err != nil {
			lexerErr = fmt.Errorf("cannot compile tokenizer DFA: %w", err)
			return
		}
		lexer = l
	})
	return lexer, lexerErr
}

func makeToken(kind string) lexmachine.Action {
	id := tokenIds[kind]
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// Provider returns a parser provider serving tokenizing parsers.
func Provider() lang.Provider {
	return tokensProvider{}
}

type tokensProvider struct{}

var _ lang.Provider = tokensProvider{}

func (tokensProvider) Open(lg *lang.Language) (lang.Parser, error) {
	l, err := Lexer()
	if err != nil {
		return nil, err
	}
	name := "tokens"
	if lg != nil {
		name = lg.Name
	}
	return &TokenParser{lang: name, lexer: l}, nil
}

// TokenParser is a parser encapsulation producing flat token trees.
type TokenParser struct {
	lang  string
	lexer *lexmachine.Lexer
}

var _ lang.Parser = (*TokenParser)(nil)

// Parse tokenizes source and returns the tokens as children of a single
// root node of kind "source". Input the tokenizer cannot match is skipped.
func (tp *TokenParser) Parse(source []byte) (*arbo.Tree, error) {
	s, err := tp.lexer.Scanner(source)
	if err != nil {
		return nil, err
	}
	var children []arbo.Node
	for tok, err, eof := s.Next(); !eof; tok, err, eof = s.Next() {
		if err != nil {
			if ui, is := err.(*machines.UnconsumedInput); is {
				tracer().Errorf("tokenizer cannot match input at %d, skipping", ui.FailTC)
				s.TC = ui.FailTC
				continue
			}
			return nil, err
		}
		token := tok.(*lexmachine.Token)
		span := arbo.Span{uint64(token.TC), uint64(token.TC + len(token.Lexeme))}
		tracer().Debugf("token %-8s %s %q", Kind(token.Type), span, token.Lexeme)
		children = append(children, arbo.MakeNode(Kind(token.Type), span))
	}
	root := arbo.MakeNode("source", arbo.Span{0, uint64(len(source))}, children...)
	return arbo.NewTree(root, tp.lang, source), nil
}
