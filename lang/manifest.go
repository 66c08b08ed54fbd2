package lang

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v3"
)

// Language describes a grammar: where its sources live and how its parser
// artifact is built. Descriptions usually come from a manifest file or from
// the upstream naming conventions (DeclareLanguage).
//
// After provisioning, Artifact points to the built parser library and Sum
// carries the fingerprint of the description the artifact was built from.
type Language struct {
	Name    string   `yaml:"name"`
	Repo    string   `yaml:"repo,omitempty"`
	Archive string   `yaml:"archive,omitempty"`
	Ref     string   `yaml:"ref,omitempty"`
	Sources []string `yaml:"sources,omitempty"`

	Artifact string `yaml:"-"`
	Sum      string `yaml:"-"`
}

// DefaultRepoPattern is the upstream naming convention for grammar
// repositories.
const DefaultRepoPattern = "https://github.com/tree-sitter/tree-sitter-%s"

// DeclareLanguage creates a language description for a name, following the
// upstream conventions: grammar sources live in a repository named
// tree-sitter-<name>, with the parser source at src/parser.c.
func DeclareLanguage(name string) *Language {
	return &Language{
		Name:    name,
		Repo:    fmt.Sprintf(DefaultRepoPattern, name),
		Sources: []string{"src/parser.c"},
	}
}

// A Manifest is a catalog of language descriptions, for grammars living
// somewhere else than the conventional upstream location, or needing more
// sources than src/parser.c. Manifests are YAML documents:
//
//     languages:
//       - name: json
//         repo: https://github.com/tree-sitter/tree-sitter-json
//       - name: go
//         archive: https://example.com/grammars/tree-sitter-go.tar.gz
//         sources: [src/parser.c, src/scanner.c]
//
type Manifest struct {
	Languages []*Language `yaml:"languages"`
}

// ReadManifest reads a language catalog from a YAML file.
func ReadManifest(path string) (*Manifest, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseManifest(data)
}

func parseManifest(data []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, err
	}
	for _, lg := range m.Languages {
		if !validName(lg.Name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, lg.Name)
		}
		if len(lg.Sources) == 0 {
			lg.Sources = []string{"src/parser.c"}
		}
	}
	return m, nil
}

// Language returns the catalog entry for a name, nil if the catalog has
// none.
func (m *Manifest) Language(name string) *Language {
	if m == nil {
		return nil
	}
	for _, lg := range m.Languages {
		if lg.Name == name {
			return lg
		}
	}
	return nil
}

// Language names become path components of the artifact cache, so only a
// conservative character set is allowed.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' && r != '_' {
			return false
		}
	}
	return true
}
