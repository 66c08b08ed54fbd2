package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/arbo"
	"github.com/npillmayer/arbo/lang"
	"github.com/npillmayer/arbo/lang/tokens"
	"github.com/npillmayer/arbo/walk"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

// main() starts an interactive CLI ("AREPL"), where users may load source
// files, parse them and explore the resulting syntax trees. Tree walks are
// the focus: both traversal strategies may be exercised on any loaded tree
// and compared.
//
// Without a provisioned grammar, parsing falls back to a tokenizing parser,
// which produces flat trees.
//
func main() {
	// set up logging
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	language := flag.String("lang", "tokens", "Language to parse sources as")
	file := flag.String("file", "", "Source file to load at startup")
	method := flag.String("method", "depth_first", "Traversal strategy [depth_first|breadth_first]")
	manifest := flag.String("manifest", "", "Language manifest (YAML)")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelInfo) // will set the correct level later
	pterm.Info.Println("Welcome to AREPL")    // colored welcome message
	tracer().Infof("Trace level is %s", *tlevel)
	//
	// set up languages: the tokenizing parser serves as catch-all
	lang.Register("", tokens.Provider())
	var m *lang.Manifest
	if *manifest != "" {
		var err error
		if m, err = lang.ReadManifest(*manifest); err != nil {
			tracer().Errorf("%v", err)
			os.Exit(1)
		}
	}
	strategy, err := walk.StrategyFromString(*method)
	if err != nil {
		tracer().Errorf("%v", err)
		os.Exit(1)
	}
	setTraceLevel(traceLevel(*tlevel)) // now set the user supplied level
	//
	// set up REPL
	repl, err := readline.New("arepl> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	popts := []lang.ProvisionOption{}
	if m != nil {
		popts = append(popts, lang.WithManifest(m))
	}
	intp := &Intp{
		repl:      repl,
		language:  *language,
		strategy:  strategy,
		manifest:  m,
		provision: lang.NewProvisioner(lang.DefaultCacheDir(), popts...),
	}
	if *file != "" {
		if err := intp.load(*file); err != nil {
			tracer().Errorf("%v", err)
			os.Exit(2)
		}
		if err := intp.parse(); err != nil {
			tracer().Errorf("%v", err)
			os.Exit(2)
		}
	}
	//
	// start receiving commands
	tracer().Infof("Quit with <ctrl>D, help with 'help'")
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	repl      *readline.Instance
	language  string
	strategy  walk.Strategy
	filename  string
	source    []byte
	tree      *arbo.Tree
	manifest  *lang.Manifest
	provision *lang.Provisioner
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		args := strings.Fields(line)
		quit, err := intp.Execute(args[0], args[1:])
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	println("Good bye!")
}

// Execute runs a single explorer command, given as command word plus
// arguments.
func (intp *Intp) Execute(cmd string, args []string) (bool, error) {
	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		return false, intp.help()
	case "load":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: load <file>")
		}
		return false, intp.load(args[0])
	case "lang":
		if len(args) == 0 {
			pterm.Info.Println("language is " + intp.language)
			return false, nil
		}
		intp.language = args[0]
		intp.tree = nil // tree of the previous language is stale
		return false, nil
	case "ensure":
		return false, intp.ensure()
	case "parse":
		return false, intp.parse()
	case "walk":
		return false, intp.walkTree(args)
	case "show":
		return false, intp.show()
	case "leaves":
		return false, intp.leaves()
	case "kinds":
		return false, intp.kinds()
	}
	return false, fmt.Errorf("no such command: %q", cmd)
}

func (intp *Intp) help() error {
	pterm.Println(`Commands:
  load <file>      read a source file
  lang [<name>]    show or select the language
  ensure           provision a parser for the selected language
  parse            parse the loaded source
  walk [<method>]  enumerate all nodes, method depth_first or breadth_first
  show             render the tree
  leaves           list the leaf nodes
  kinds            count nodes per kind
  quit             leave the explorer`)
	return nil
}

func (intp *Intp) load(filename string) error {
	content, err := ioutil.ReadFile(filename)
	if err != nil {
		return err
	}
	intp.filename = filename
	intp.source = content
	intp.tree = nil // tree of the previous source is stale
	tracer().Infof("loaded %d bytes from %s", len(content), filename)
	return nil
}

// describeLanguage finds the grammar description for the selected
// language, preferring a manifest entry over upstream convention.
func (intp *Intp) describeLanguage() *lang.Language {
	if intp.manifest != nil {
		if lg := intp.manifest.Language(intp.language); lg != nil {
			return lg
		}
	}
	return lang.DeclareLanguage(intp.language)
}

func (intp *Intp) ensure() error {
	lg, err := intp.provision.Ensure(intp.language)
	if err != nil {
		return err
	}
	pterm.Info.Println(fmt.Sprintf("%s is available, artifact %s", lg.Name, lg.Artifact))
	tracer().Infof("description fingerprint is %s", lg.Sum)
	return nil
}

func (intp *Intp) parse() error {
	if intp.source == nil {
		return fmt.Errorf("no source loaded, use 'load <file>'")
	}
	parser, err := lang.NewParser(intp.describeLanguage())
	if err != nil {
		return err
	}
	tree, err := parser.Parse(intp.source)
	if err != nil {
		return err
	}
	intp.tree = tree
	pterm.Info.Println(fmt.Sprintf("parsed %s as %s", intp.filename, tree.Language()))
	return nil
}

var errNoTree = fmt.Errorf("no tree, use 'parse' first")

// walkTree enumerates all nodes of the current tree. An argument selects
// the traversal strategy for this walk, otherwise the startup strategy
// applies.
func (intp *Intp) walkTree(args []string) error {
	if intp.tree == nil {
		return errNoTree
	}
	opt := walk.Method(intp.strategy)
	if len(args) > 0 {
		opt = walk.MethodName(args[0])
	}
	seq, err := walk.Traverse(intp.tree, opt)
	if err != nil {
		return err
	}
	count := 0
	for node, S := seq.First(); !S.Done(); node = S.Next() {
		pterm.Println(fmt.Sprintf("%3d  %s", count, intp.label(node)))
		count++
	}
	pterm.Info.Println(fmt.Sprintf("%d nodes", count))
	return nil
}

func (intp *Intp) show() error {
	if intp.tree == nil {
		return errNoTree
	}
	root := intp.tree.Root()
	if root == nil {
		pterm.Info.Println("tree is empty")
		return nil
	}
	ll := intp.leveled(root, pterm.LeveledList{}, 0)
	tracer().Debugf("|ll| = %d", len(ll))
	pterm.DefaultTree.WithRoot(pterm.NewTreeFromLeveledList(ll)).Render()
	return nil
}

// leveled flattens a subtree into pterm's leveled-list form, which the
// tree printer understands.
func (intp *Intp) leveled(node arbo.Node, ll pterm.LeveledList, level int) pterm.LeveledList {
	ll = append(ll, pterm.LeveledListItem{
		Level: level,
		Text:  intp.label(node),
	})
	for i := 0; i < node.ChildCount(); i++ {
		ll = intp.leveled(node.Child(i), ll, level+1)
	}
	return ll
}

// label renders a node for display. Small leaves show the source bytes
// they cover.
func (intp *Intp) label(node arbo.Node) string {
	span := node.Span()
	if node.ChildCount() == 0 && !span.IsNull() && span.Len() <= 24 &&
		span.To() <= uint64(len(intp.source)) {
		return fmt.Sprintf("%s %q", node.Kind(), intp.source[span.From():span.To()])
	}
	return fmt.Sprintf("%s %s", node.Kind(), span)
}

func (intp *Intp) leaves() error {
	if intp.tree == nil {
		return errNoTree
	}
	seq, err := walk.Traverse(intp.tree, walk.Method(intp.strategy))
	if err != nil {
		return err
	}
	count := 0
	leaves := seq.Where(walk.IsLeaf())
	for node, S := leaves.First(); !S.Done(); node = S.Next() {
		pterm.Println(fmt.Sprintf("%3d  %s", count, intp.label(node)))
		count++
	}
	pterm.Info.Println(fmt.Sprintf("%d leaves", count))
	return nil
}

func (intp *Intp) kinds() error {
	if intp.tree == nil {
		return errNoTree
	}
	seq, err := walk.Traverse(intp.tree, walk.Method(intp.strategy))
	if err != nil {
		return err
	}
	counts := map[string]int{}
	var order []string // report kinds in order of first appearance
	for node, S := seq.First(); !S.Done(); node = S.Next() {
		if counts[node.Kind()] == 0 {
			order = append(order, node.Kind())
		}
		counts[node.Kind()]++
	}
	for _, kind := range order {
		pterm.Println(fmt.Sprintf("%-12s %4d", kind, counts[kind]))
	}
	return nil
}

// setTraceLevel sets the trace level of all tracers of this module.
func setTraceLevel(level tracing.TraceLevel) {
	tracing.Select("arbo.walk").SetTraceLevel(level)
	tracing.Select("arbo.lang").SetTraceLevel(level)
	tracing.Select("arbo.repl").SetTraceLevel(level)
}

func traceLevel(l string) tracing.TraceLevel {
	return tracing.TraceLevelFromString(l)
}
